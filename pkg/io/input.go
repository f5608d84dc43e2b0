package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sankey/pkg/sankey"
)

// ErrInvalidRef is returned when a link endpoint is missing, null, or neither
// an integer index nor a string node ID.
var ErrInvalidRef = errors.New("link endpoint must be a node index or a node id")

type input struct {
	Nodes []node `json:"nodes" yaml:"nodes"`
	Links []link `json:"links" yaml:"links"`
}

type node struct {
	ID   string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name string          `json:"name,omitempty" yaml:"name,omitempty"`
	Meta sankey.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type link struct {
	Source ref             `json:"source" yaml:"source"`
	Target ref             `json:"target" yaml:"target"`
	Value  float64         `json:"value" yaml:"value"`
	Meta   sankey.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ref is a link endpoint on the wire: a JSON/YAML integer is an index into
// nodes, a string is a node id. set records that the document carried the
// endpoint, since the zero sankey.Ref points at node 0.
type ref struct {
	sankey.Ref
	set bool
}

func (r ref) MarshalJSON() ([]byte, error) {
	if id, ok := r.ID(); ok {
		return json.Marshal(id)
	}
	i, _ := r.Index()
	return json.Marshal(i)
}

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("null: %w", ErrInvalidRef)
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.Ref, r.set = sankey.ByID(id), true
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("%s: %w", data, ErrInvalidRef)
	}
	r.Ref, r.set = sankey.At(i), true
	return nil
}

func (r ref) MarshalYAML() (any, error) {
	if id, ok := r.ID(); ok {
		return id, nil
	}
	i, _ := r.Index()
	return i, nil
}

func (r *ref) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w", value.Line, ErrInvalidRef)
	}
	switch value.ShortTag() {
	case "!!int":
		var i int
		if err := value.Decode(&i); err != nil {
			return err
		}
		r.Ref = sankey.At(i)
	case "!!str":
		r.Ref = sankey.ByID(value.Value)
	default:
		return fmt.Errorf("line %d: %q: %w", value.Line, value.Value, ErrInvalidRef)
	}
	r.set = true
	return nil
}

// ReadInput decodes a graph in the given format from r.
//
// The document has two arrays:
//
//	{
//	  "nodes": [{"id": "coal"}, {"id": "power", "name": "Power plants"}],
//	  "links": [{"source": "coal", "target": 1, "value": 30}]
//	}
//
// ReadInput only decodes; reference and value checks happen in
// [sankey.Build]. ReadInput does not close r.
func ReadInput(r io.Reader, format Format) (sankey.Input, error) {
	var doc input
	if err := decode(r, format, &doc); err != nil {
		return sankey.Input{}, err
	}
	return doc.toInput()
}

// ImportInput reads the graph stored at path. The format comes from the file
// extension.
func ImportInput(path string) (sankey.Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return sankey.Input{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return sankey.Input{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadInput(f, format)
}

// WriteInput encodes in so that [ReadInput] yields an equal value.
func WriteInput(w io.Writer, in sankey.Input, format Format) error {
	doc := input{
		Nodes: make([]node, len(in.Nodes)),
		Links: make([]link, len(in.Links)),
	}
	for i, n := range in.Nodes {
		doc.Nodes[i] = node{ID: n.ID, Name: n.Name, Meta: n.Meta}
	}
	for i, l := range in.Links {
		doc.Links[i] = link{
			Source: ref{Ref: l.Source, set: true},
			Target: ref{Ref: l.Target, set: true},
			Value:  l.Value,
			Meta:   l.Meta,
		}
	}
	return encode(w, format, doc)
}

func (doc input) toInput() (sankey.Input, error) {
	in := sankey.Input{
		Nodes: make([]sankey.NodeInput, len(doc.Nodes)),
		Links: make([]sankey.LinkInput, len(doc.Links)),
	}
	for i, n := range doc.Nodes {
		meta, err := normalizeMeta(n.Meta)
		if err != nil {
			return sankey.Input{}, fmt.Errorf("node %d: meta: %w", i, err)
		}
		in.Nodes[i] = sankey.NodeInput{ID: n.ID, Name: n.Name, Meta: meta}
	}
	for i, l := range doc.Links {
		switch {
		case !l.Source.set:
			return sankey.Input{}, fmt.Errorf("link %d: missing source: %w", i, ErrInvalidRef)
		case !l.Target.set:
			return sankey.Input{}, fmt.Errorf("link %d: missing target: %w", i, ErrInvalidRef)
		}
		meta, err := normalizeMeta(l.Meta)
		if err != nil {
			return sankey.Input{}, fmt.Errorf("link %d: meta: %w", i, err)
		}
		in.Links[i] = sankey.LinkInput{Source: l.Source.Ref, Target: l.Target.Ref, Value: l.Value, Meta: meta}
	}
	return in, nil
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return nil
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return nil
}

// normalizeMeta converts the map[any]any values YAML produces for mappings
// with non-string keys into map[string]any, so metadata always encodes as
// JSON. Keys that collide once stringified are rejected.
func normalizeMeta(m sankey.Metadata) (sankey.Metadata, error) {
	if m == nil {
		return nil, nil
	}
	out := make(sankey.Metadata, len(m))
	for k, v := range m {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		m, err := normalizeMeta(v)
		return map[string]any(m), err
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("duplicate key %q", key)
			}
			nv, err := normalizeValue(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			nv, err := normalizeValue(val)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	}
	return v, nil
}
