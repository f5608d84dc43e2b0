// Package sankey computes the geometry of Sankey diagrams.
//
// # Overview
//
// A Sankey diagram draws a directed, weighted, acyclic graph as columns of
// rectangles (nodes) joined by bands (links) whose thickness is proportional
// to the flow they carry. This package computes everything a renderer needs
// and nothing more: each node's column, horizontal position, vertical
// position and height, and each link's thickness and vertical anchors inside
// its endpoint nodes. Drawing, animation and interaction are left to callers.
//
// # Basic Usage
//
// Describe the graph with an [Input] and call [Build] with the drawing size:
//
//	in := sankey.Input{
//	    Nodes: []sankey.NodeInput{{ID: "coal"}, {ID: "power"}, {ID: "homes"}},
//	    Links: []sankey.LinkInput{
//	        {Source: sankey.ByID("coal"), Target: sankey.ByID("power"), Value: 10},
//	        {Source: sankey.At(1), Target: sankey.At(2), Value: 10},
//	    },
//	}
//	l, err := sankey.Build(in, 960, 500, sankey.WithIterations(32))
//
// Links reference nodes either by position in Input.Nodes ([At]) or by
// NodeInput.ID ([ByID]). The returned [Layout] stores nodes and links in two
// flat slices; links refer to their endpoints by index into Layout.Nodes, and
// nodes list their incident links by index into Layout.Links.
//
// # Pipeline
//
// [Build] runs five stages in order:
//
//  1. Graph model: resolve link references, build per-node outgoing and
//     incoming link lists, and derive node values as the larger of the
//     outgoing and incoming sums.
//  2. Columns: frontier propagation from every node assigns each node the
//     length of the longest path reaching it. Sinks are then pushed to the
//     rightmost column, and columns are scaled to pixel x positions.
//  3. Depth initialization: the most crowded column fixes one global vertical
//     scale. Nodes are seeded at their index within the column and collision
//     resolution turns the seed into a legal layout.
//  4. Relaxation: for a fixed number of iterations, nodes move toward the
//     value-weighted centre of their neighbours, right-to-left then
//     left-to-right, with a step size that decays by 1% per iteration.
//     Collision resolution runs after every pass.
//  5. Link routing: each node's links are ordered by the vertical position of
//     the node at the other end and stacked to produce the sy/ty offsets.
//
// # Determinism
//
// Build is a pure function of its arguments. All sorts are stable, so equal
// inputs always produce identical layouts.
//
// # Concurrency
//
// Build works on a private copy of its input and shares no state, so it can
// be called from many goroutines at once. A returned [Layout] is a plain
// value; callers must synchronize if they mutate it concurrently.
//
// # Cycles
//
// Input graphs must be acyclic. Column assignment gives up with
// [ErrCyclicGraph] once propagation runs longer than any acyclic graph of
// the same size could.
package sankey
