package io

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sankey/pkg/sankey"
)

type layout struct {
	Width       float64 `json:"width" yaml:"width"`
	Height      float64 `json:"height" yaml:"height"`
	NodeWidth   float64 `json:"node_width" yaml:"node_width"`
	NodePadding float64 `json:"node_padding" yaml:"node_padding"`
	Iterations  int     `json:"iterations" yaml:"iterations"`
	Scale       float64 `json:"scale" yaml:"scale"`
	Columns     int     `json:"columns" yaml:"columns"`

	Nodes []layoutNode `json:"nodes" yaml:"nodes"`
	Links []layoutLink `json:"links" yaml:"links"`
}

type layoutNode struct {
	ID       string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Meta     sankey.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
	Value    float64         `json:"value" yaml:"value"`
	Column   int             `json:"column" yaml:"column"`
	X        float64         `json:"x" yaml:"x"`
	DX       float64         `json:"dx" yaml:"dx"`
	Y        float64         `json:"y" yaml:"y"`
	DY       float64         `json:"dy" yaml:"dy"`
	Outgoing []int           `json:"outgoing" yaml:"outgoing,flow"`
	Incoming []int           `json:"incoming" yaml:"incoming,flow"`
}

type layoutLink struct {
	Source int             `json:"source" yaml:"source"`
	Target int             `json:"target" yaml:"target"`
	Value  float64         `json:"value" yaml:"value"`
	Meta   sankey.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
	DY     float64         `json:"dy" yaml:"dy"`
	SY     float64         `json:"sy" yaml:"sy"`
	TY     float64         `json:"ty" yaml:"ty"`
	Path   *path           `json:"path,omitempty" yaml:"path,omitempty"`
}

type path struct {
	SourceX        float64 `json:"source_x" yaml:"source_x"`
	SourceY        float64 `json:"source_y" yaml:"source_y"`
	TargetX        float64 `json:"target_x" yaml:"target_x"`
	TargetY        float64 `json:"target_y" yaml:"target_y"`
	SourceControlX float64 `json:"source_control_x" yaml:"source_control_x"`
	TargetControlX float64 `json:"target_control_x" yaml:"target_control_x"`
}

// LayoutOption configures layout encoding.
type LayoutOption func(*layoutOptions)

type layoutOptions struct {
	paths     bool
	curvature float64
}

// WithPaths adds each link's bezier anchors computed with curvature to the
// output.
func WithPaths(curvature float64) LayoutOption {
	return func(o *layoutOptions) {
		o.paths = true
		o.curvature = curvature
	}
}

// WriteLayout encodes l in the given format to w.
func WriteLayout(w io.Writer, l *sankey.Layout, format Format, opts ...LayoutOption) error {
	doc, err := fromLayout(l, opts)
	if err != nil {
		return err
	}
	return encode(w, format, doc)
}

// ExportLayout writes l to a file at path, choosing the format from its
// extension.
func ExportLayout(l *sankey.Layout, path string, opts ...LayoutOption) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(f, l, format, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MarshalLayout returns the encoded form of l.
func MarshalLayout(l *sankey.Layout, format Format, opts ...LayoutOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(&buf, l, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes a layout produced by [MarshalLayout]. Link paths,
// if present, are dropped; they can be recomputed with
// [sankey.Layout.LinkPaths].
func UnmarshalLayout(data []byte, format Format) (*sankey.Layout, error) {
	var doc layout
	if err := decode(bytes.NewReader(data), format, &doc); err != nil {
		return nil, err
	}
	return doc.toLayout()
}

func fromLayout(l *sankey.Layout, opts []LayoutOption) (layout, error) {
	var o layoutOptions
	for _, opt := range opts {
		opt(&o)
	}

	doc := layout{
		Width:       l.Width,
		Height:      l.Height,
		NodeWidth:   l.NodeWidth,
		NodePadding: l.NodePadding,
		Iterations:  l.Iterations,
		Scale:       l.Scale,
		Columns:     l.Columns,
		Nodes:       make([]layoutNode, len(l.Nodes)),
		Links:       make([]layoutLink, len(l.Links)),
	}
	for i, n := range l.Nodes {
		doc.Nodes[i] = layoutNode{
			ID: n.ID, Name: n.Name, Meta: n.Meta,
			Value: n.Value, Column: n.Column,
			X: n.X, DX: n.DX, Y: n.Y, DY: n.DY,
			Outgoing: nonNil(n.Outgoing), Incoming: nonNil(n.Incoming),
		}
	}
	for i, lk := range l.Links {
		doc.Links[i] = layoutLink{
			Source: lk.Source, Target: lk.Target,
			Value: lk.Value, Meta: lk.Meta,
			DY: lk.DY, SY: lk.SY, TY: lk.TY,
		}
	}

	if o.paths {
		paths, err := l.LinkPaths(o.curvature)
		if err != nil {
			return layout{}, err
		}
		for i, p := range paths {
			doc.Links[i].Path = &path{
				SourceX: p.SourceX, SourceY: p.SourceY,
				TargetX: p.TargetX, TargetY: p.TargetY,
				SourceControlX: p.SourceControlX, TargetControlX: p.TargetControlX,
			}
		}
	}
	return doc, nil
}

func (doc layout) toLayout() (*sankey.Layout, error) {
	l := &sankey.Layout{
		Width:       doc.Width,
		Height:      doc.Height,
		NodeWidth:   doc.NodeWidth,
		NodePadding: doc.NodePadding,
		Iterations:  doc.Iterations,
		Scale:       doc.Scale,
		Columns:     doc.Columns,
		Nodes:       make([]sankey.Node, len(doc.Nodes)),
		Links:       make([]sankey.Link, len(doc.Links)),
	}
	for i, n := range doc.Nodes {
		if n.Column < 0 || (n.Column >= doc.Columns && doc.Columns > 0) {
			return nil, fmt.Errorf("node %d: column %d out of range", i, n.Column)
		}
		l.Nodes[i] = sankey.Node{
			ID: n.ID, Name: n.Name, Meta: n.Meta,
			Value: n.Value, Column: n.Column,
			X: n.X, DX: n.DX, Y: n.Y, DY: n.DY,
			Outgoing: emptyToNil(n.Outgoing), Incoming: emptyToNil(n.Incoming),
		}
	}
	for i, lk := range doc.Links {
		if lk.Source < 0 || lk.Source >= len(l.Nodes) || lk.Target < 0 || lk.Target >= len(l.Nodes) {
			return nil, fmt.Errorf("link %d: %d->%d: %w", i, lk.Source, lk.Target, sankey.ErrInvalidReference)
		}
		l.Links[i] = sankey.Link{
			Source: lk.Source, Target: lk.Target,
			Value: lk.Value, Meta: lk.Meta,
			DY: lk.DY, SY: lk.SY, TY: lk.TY,
		}
	}
	return l, nil
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

func emptyToNil(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}
