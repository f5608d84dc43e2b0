// Package pkg provides the libraries behind the sankey command.
//
// # Overview
//
// Sankey turns a weighted flow graph into a diagram layout: every node gets
// a column, a vertical position and a height proportional to its flow, and
// every link gets a thickness and offsets at both ends. The pkg directory is
// organized into these areas:
//
//  1. [sankey] - The layout engine (columns, depths, relaxation, routing)
//  2. [io] - JSON and YAML encoding of graphs and layouts
//  3. [pipeline] - Orchestration (validate → cache lookup → layout → store)
//  4. [cache] - File, Redis and null cache backends
//  5. [config] - TOML configuration with hot reload
//  6. [observability] - Hooks for metrics, with a Prometheus implementation
//
// # Architecture
//
// The typical data flow:
//
//	graph.json / graph.yaml
//	         ↓
//	    [io] package (decode nodes and links)
//	         ↓
//	    [pipeline] package (options, cache, logging)
//	         ↓
//	    [sankey] package (Build)
//	         ↓
//	    [io] package (encode layout, optional link paths)
//
// # Quick Start
//
//	in, _ := io.ImportInput("energy.json")
//	l, err := sankey.Build(in, 960, 500, sankey.WithNodePadding(12))
//	if err != nil {
//	    return err
//	}
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y, n.DY)
//	}
//
// [sankey]: github.com/matzehuels/sankey/pkg/sankey
// [io]: github.com/matzehuels/sankey/pkg/io
// [pipeline]: github.com/matzehuels/sankey/pkg/pipeline
// [cache]: github.com/matzehuels/sankey/pkg/cache
// [config]: github.com/matzehuels/sankey/pkg/config
// [observability]: github.com/matzehuels/sankey/pkg/observability
package pkg
