package sankey

import (
	"fmt"
	"math"
)

// DefaultCurvature places the bezier control points halfway between the
// link ends.
const DefaultCurvature = 0.5

// LinkPath holds the anchors of a cubic bezier band drawn from the right edge
// of the source node to the left edge of the target node. Control points
// share the y of the anchor on their side.
type LinkPath struct {
	SourceX, SourceY float64
	TargetX, TargetY float64

	SourceControlX float64
	TargetControlX float64

	// Width is the band thickness, equal to the link's DY.
	Width float64
}

// LinkPaths returns one path per link, in link order. Curvature must lie in
// [0, 1]; 0 gives straight diagonal bands.
func (l *Layout) LinkPaths(curvature float64) ([]LinkPath, error) {
	if math.IsNaN(curvature) || curvature < 0 || curvature > 1 {
		return nil, fmt.Errorf("curvature %v: %w", curvature, ErrInvalidOption)
	}
	paths := make([]LinkPath, len(l.Links))
	for i := range l.Links {
		paths[i] = l.linkPath(&l.Links[i], curvature)
	}
	return paths, nil
}

func (l *Layout) linkPath(link *Link, curvature float64) LinkPath {
	src, dst := &l.Nodes[link.Source], &l.Nodes[link.Target]
	x0 := src.X + src.DX
	x1 := dst.X
	return LinkPath{
		SourceX:        x0,
		SourceY:        src.Y + link.SY + link.DY/2,
		TargetX:        x1,
		TargetY:        dst.Y + link.TY + link.DY/2,
		SourceControlX: lerp(x0, x1, curvature),
		TargetControlX: lerp(x0, x1, 1-curvature),
		Width:          link.DY,
	}
}

func lerp(a, b, t float64) float64 { return a*(1-t) + b*t }
