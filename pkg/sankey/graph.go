package sankey

import (
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Metadata stores caller-defined attributes that travel with a node or link
// through the layout untouched.
type Metadata map[string]any

// Ref identifies a link endpoint, either by position in Input.Nodes or by
// NodeInput.ID. The zero value refers to the node at index 0.
type Ref struct {
	index int
	id    string
	byID  bool
}

// At returns a reference to the node at index i of Input.Nodes.
func At(i int) Ref { return Ref{index: i} }

// ByID returns a reference to the node whose ID is id.
func ByID(id string) Ref { return Ref{id: id, byID: true} }

// Index returns the referenced index and true for index references.
func (r Ref) Index() (int, bool) { return r.index, !r.byID }

// ID returns the referenced node ID and true for ID references.
func (r Ref) ID() (string, bool) { return r.id, r.byID }

// String formats the reference as an index or a quoted ID.
func (r Ref) String() string {
	if r.byID {
		return strconv.Quote(r.id)
	}
	return strconv.Itoa(r.index)
}

// NodeInput is a caller-supplied node. All fields are passed through to the
// corresponding [Node].
type NodeInput struct {
	ID   string
	Name string
	Meta Metadata
}

// LinkInput is a caller-supplied flow from Source to Target.
type LinkInput struct {
	Source Ref
	Target Ref
	Value  float64
	Meta   Metadata
}

// Input is the graph handed to [Build].
type Input struct {
	Nodes []NodeInput
	Links []LinkInput
}

// Node is a laid-out node. X/DX and Y/DY are the pixel position and size of
// its rectangle; Outgoing and Incoming hold indices into Layout.Links.
type Node struct {
	ID   string
	Name string
	Meta Metadata

	Value  float64
	Column int

	X, DX float64
	Y, DY float64

	Outgoing []int
	Incoming []int
}

// Center returns the vertical centre of the node's rectangle.
func (n *Node) Center() float64 { return n.Y + n.DY/2 }

// Link is a laid-out flow. Source and Target index Layout.Nodes. DY is the
// band thickness, SY and TY its offsets from the top of the source and
// target rectangles.
type Link struct {
	Source int
	Target int
	Value  float64
	Meta   Metadata

	DY float64
	SY float64
	TY float64
}

// validateValues rejects unusable link values before any stage runs.
func validateValues(links []LinkInput) error {
	for i, l := range links {
		if l.Value < 0 || math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
			return fmt.Errorf("link %d: value %v: %w", i, l.Value, ErrInvalidValue)
		}
	}
	return nil
}

// newGraph copies the input into node and link arenas, resolves every link
// reference to a node index and wires the adjacency lists in link order.
func newGraph(in Input) ([]Node, []Link, error) {
	nodes := make([]Node, len(in.Nodes))
	byID := make(map[string]int, len(in.Nodes))
	for i, n := range in.Nodes {
		if n.ID != "" {
			if _, dup := byID[n.ID]; dup {
				return nil, nil, fmt.Errorf("node %d: %q: %w", i, n.ID, ErrDuplicateNodeID)
			}
			byID[n.ID] = i
		}
		nodes[i] = Node{ID: n.ID, Name: n.Name, Meta: maps.Clone(n.Meta)}
	}

	resolve := func(r Ref) (int, bool) {
		if id, ok := r.ID(); ok {
			i, found := byID[id]
			return i, found
		}
		i, _ := r.Index()
		return i, i >= 0 && i < len(nodes)
	}

	links := make([]Link, len(in.Links))
	for i, l := range in.Links {
		src, ok := resolve(l.Source)
		if !ok {
			return nil, nil, fmt.Errorf("link %d: source %s: %w", i, l.Source, ErrInvalidReference)
		}
		dst, ok := resolve(l.Target)
		if !ok {
			return nil, nil, fmt.Errorf("link %d: target %s: %w", i, l.Target, ErrInvalidReference)
		}
		links[i] = Link{Source: src, Target: dst, Value: l.Value, Meta: maps.Clone(l.Meta)}
		nodes[src].Outgoing = append(nodes[src].Outgoing, i)
		nodes[dst].Incoming = append(nodes[dst].Incoming, i)
	}

	if err := computeNodeValues(nodes, links); err != nil {
		return nil, nil, err
	}
	return nodes, links, nil
}

// computeNodeValues sets each node's value to the larger of its outgoing and
// incoming totals. Finite link values can still sum past the float64 range.
func computeNodeValues(nodes []Node, links []Link) error {
	for i := range nodes {
		n := &nodes[i]
		n.Value = max(sumValues(links, n.Outgoing), sumValues(links, n.Incoming))
		if math.IsInf(n.Value, 0) {
			return fmt.Errorf("node %d: value overflows: %w", i, ErrInvalidValue)
		}
	}
	return nil
}

func sumValues(links []Link, idx []int) float64 {
	var sum float64
	for _, l := range idx {
		sum += links[l].Value
	}
	return sum
}
