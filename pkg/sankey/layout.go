package sankey

import (
	"fmt"
	"math"
)

// Default layout parameters.
const (
	DefaultNodeWidth   = 10
	DefaultNodePadding = 10
	DefaultIterations  = 32
)

// Option configures [Build].
type Option func(*config)

type config struct {
	nodeWidth   float64
	nodePadding float64
	iterations  int
}

// WithNodeWidth sets the horizontal size of every node rectangle.
func WithNodeWidth(w float64) Option { return func(c *config) { c.nodeWidth = w } }

// WithNodePadding sets the minimum vertical gap between nodes in a column.
func WithNodePadding(p float64) Option { return func(c *config) { c.nodePadding = p } }

// WithIterations sets the number of relaxation rounds. Zero keeps the
// first legal placement.
func WithIterations(n int) Option { return func(c *config) { c.iterations = n } }

// Layout is the result of [Build]. Nodes and Links are arenas: links refer to
// nodes by index and nodes list their links by index.
type Layout struct {
	Nodes []Node
	Links []Link

	Width, Height float64
	NodeWidth     float64
	NodePadding   float64
	Iterations    int

	// Scale is the pixels-per-unit factor shared by every node and link.
	Scale float64
	// Columns is the number of columns; sinks sit in column Columns-1.
	Columns int
}

// Build lays out in inside a width by height area.
//
// Every stage works on a private copy, so in is never modified and Build is
// safe to call concurrently. Identical arguments produce identical layouts.
func Build(in Input, width, height float64, opts ...Option) (*Layout, error) {
	if !positive(width) || !positive(height) {
		return nil, fmt.Errorf("%vx%v: %w", width, height, ErrInvalidSize)
	}

	cfg := config{
		nodeWidth:   DefaultNodeWidth,
		nodePadding: DefaultNodePadding,
		iterations:  DefaultIterations,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(width); err != nil {
		return nil, err
	}

	if err := validateValues(in.Links); err != nil {
		return nil, err
	}
	nodes, links, err := newGraph(in)
	if err != nil {
		return nil, err
	}

	columns, err := assignColumns(nodes, links)
	if err != nil {
		return nil, err
	}
	scaleColumns(nodes, columns, width, cfg.nodeWidth)

	groups := groupByColumn(nodes, columns)
	ky, err := verticalScale(nodes, groups, height, cfg.nodePadding)
	if err != nil {
		return nil, err
	}
	initializeDepths(nodes, links, groups, ky)
	resolveCollisions(nodes, groups, height, cfg.nodePadding)

	r := relaxer{nodes: nodes, links: links, groups: groups, height: height, padding: cfg.nodePadding}
	r.run(cfg.iterations)

	routeLinks(nodes, links)

	return &Layout{
		Nodes:       nodes,
		Links:       links,
		Width:       width,
		Height:      height,
		NodeWidth:   cfg.nodeWidth,
		NodePadding: cfg.nodePadding,
		Iterations:  cfg.iterations,
		Scale:       ky,
		Columns:     columns,
	}, nil
}

func (c config) validate(width float64) error {
	switch {
	case !nonNegative(c.nodeWidth):
		return fmt.Errorf("node width %v: %w", c.nodeWidth, ErrInvalidOption)
	case c.nodeWidth > width:
		return fmt.Errorf("node width %v exceeds width %v: %w", c.nodeWidth, width, ErrInvalidOption)
	case !nonNegative(c.nodePadding):
		return fmt.Errorf("node padding %v: %w", c.nodePadding, ErrInvalidOption)
	case c.iterations < 0:
		return fmt.Errorf("iterations %d: %w", c.iterations, ErrInvalidOption)
	}
	return nil
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

// ColumnNodes returns node indices grouped by column, top to bottom.
// The outer slice has one entry per column, possibly empty.
func (l *Layout) ColumnNodes() [][]int {
	cols := make([][]int, l.Columns)
	for i := range l.Nodes {
		c := l.Nodes[i].Column
		cols[c] = append(cols[c], i)
	}
	for _, c := range cols {
		sortByY(l.Nodes, c)
	}
	return cols
}

// Bounds returns the smallest and largest y covered by any node. An empty
// layout reports 0, 0.
func (l *Layout) Bounds() (top, bottom float64) {
	if len(l.Nodes) == 0 {
		return 0, 0
	}
	top, bottom = math.Inf(1), math.Inf(-1)
	for i := range l.Nodes {
		n := &l.Nodes[i]
		top = min(top, n.Y)
		bottom = max(bottom, n.Y+n.DY)
	}
	return top, bottom
}
