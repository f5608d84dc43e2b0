// Package io reads Sankey graphs and writes computed layouts as JSON or YAML.
//
// # Input Format
//
// An input document has two arrays:
//
//	{
//	  "nodes": [
//	    {"id": "coal"},
//	    {"id": "power", "name": "Power plants"},
//	    {"name": "Homes", "meta": {"color": "#c33"}}
//	  ],
//	  "links": [
//	    {"source": "coal", "target": "power", "value": 30},
//	    {"source": 1, "target": 2, "value": 20}
//	  ]
//	}
//
// A link endpoint is either an integer index into nodes or a string node
// id. The same structure is accepted as YAML:
//
//	nodes:
//	  - id: coal
//	  - id: power
//	links:
//	  - {source: coal, target: power, value: 30}
//
// Use [ImportInput] to read a file (format chosen by extension) or
// [ReadInput] to read from any io.Reader.
//
// # Layout Format
//
// [WriteLayout], [ExportLayout] and [MarshalLayout] encode a
// [sankey.Layout]: the drawing parameters, the vertical scale, and every
// node and link with its computed geometry. Links refer to nodes by index.
// [WithPaths] adds the bezier anchors of each link for renderers that do not
// want to compute them. [UnmarshalLayout] decodes the document back.
//
// [sankey.Layout]: github.com/matzehuels/sankey/pkg/sankey.Layout
package io
