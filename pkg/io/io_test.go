package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/sankey"
)

const jsonInput = `{
  "nodes": [
    {"id": "coal"},
    {"id": "power", "name": "Power plants", "meta": {"color": "red"}},
    {"name": "Homes"}
  ],
  "links": [
    {"source": "coal", "target": "power", "value": 30},
    {"source": 1, "target": 2, "value": 20.5, "meta": {"label": "grid"}}
  ]
}`

const yamlInput = `
nodes:
  - id: coal
  - id: power
    name: Power plants
    meta:
      color: red
  - name: Homes
links:
  - {source: coal, target: power, value: 30}
  - source: 1
    target: 2
    value: 20.5
    meta:
      label: grid
`

func wantInput() sankey.Input {
	return sankey.Input{
		Nodes: []sankey.NodeInput{
			{ID: "coal"},
			{ID: "power", Name: "Power plants", Meta: sankey.Metadata{"color": "red"}},
			{Name: "Homes"},
		},
		Links: []sankey.LinkInput{
			{Source: sankey.ByID("coal"), Target: sankey.ByID("power"), Value: 30},
			{Source: sankey.At(1), Target: sankey.At(2), Value: 20.5, Meta: sankey.Metadata{"label": "grid"}},
		},
	}
}

func TestReadInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", jsonInput, FormatJSON},
		{"yaml", yamlInput, FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadInput(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ReadInput() error = %v", err)
			}
			if want := wantInput(); !reflect.DeepEqual(got, want) {
				t.Errorf("ReadInput() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		target error
	}{
		{"float index", `{"links": [{"source": 1.5, "target": 0}]}`, FormatJSON, ErrInvalidRef},
		{"object ref", `{"links": [{"source": {}, "target": 0}]}`, FormatJSON, ErrInvalidRef},
		{"yaml list ref", "links:\n  - {source: [1], target: 0}\n", FormatYAML, ErrInvalidRef},
		{"yaml float ref", "links:\n  - {source: 1.5, target: 0}\n", FormatYAML, ErrInvalidRef},
		{"missing source", `{"nodes": [{}, {}], "links": [{"target": 1, "value": 5}]}`, FormatJSON, ErrInvalidRef},
		{"missing target", `{"nodes": [{}, {}], "links": [{"source": 1, "value": 5}]}`, FormatJSON, ErrInvalidRef},
		{"null source", `{"nodes": [{}, {}], "links": [{"source": null, "target": 1, "value": 5}]}`, FormatJSON, ErrInvalidRef},
		{"yaml missing source", "links:\n  - {target: b, value: 5}\n", FormatYAML, ErrInvalidRef},
		{"yaml null target", "links:\n  - {source: a, target: null, value: 5}\n", FormatYAML, ErrInvalidRef},
		{"yaml empty target", "links:\n  - source: a\n    target:\n    value: 5\n", FormatYAML, ErrInvalidRef},
		{"unknown format", `{}`, Format("toml"), ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInput(strings.NewReader(tt.data), tt.format)
			if !errors.Is(err, tt.target) {
				t.Errorf("ReadInput() error = %v, want %v", err, tt.target)
			}
		})
	}

	if _, err := ReadInput(strings.NewReader(`{"nodes": [`), FormatJSON); err == nil {
		t.Error("ReadInput(truncated) error = nil, want error")
	}
}

func TestReadInputYAMLMetaKeys(t *testing.T) {
	const doc = `
nodes:
  - id: a
    meta:
      ports: {1: in, 2: out}
      steps:
        - {10: warm}
  - id: b
links:
  - {source: a, target: b, value: 5}
`
	in, err := ReadInput(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}
	want := sankey.Metadata{
		"ports": map[string]any{"1": "in", "2": "out"},
		"steps": []any{map[string]any{"10": "warm"}},
	}
	if got := in.Nodes[0].Meta; !reflect.DeepEqual(got, want) {
		t.Errorf("Meta = %#v, want %#v", got, want)
	}

	var buf bytes.Buffer
	if err := WriteInput(&buf, in, FormatJSON); err != nil {
		t.Fatalf("WriteInput(JSON) error = %v", err)
	}
}

func TestReadInputYAMLMetaKeyCollision(t *testing.T) {
	const doc = `
nodes:
  - meta:
      ports: {1: in, 1.0: out}
`
	if _, err := ReadInput(strings.NewReader(doc), FormatYAML); err == nil {
		t.Error("ReadInput() error = nil, want colliding meta keys rejected")
	}
}

func TestWriteInputRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteInput(&buf, wantInput(), format); err != nil {
				t.Fatalf("WriteInput() error = %v", err)
			}
			got, err := ReadInput(&buf, format)
			if err != nil {
				t.Fatalf("ReadInput() error = %v", err)
			}
			if want := wantInput(); !reflect.DeepEqual(got, want) {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestImportInput(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{"g.json": jsonInput, "g.yml": yamlInput} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := ImportInput(path)
		if err != nil {
			t.Fatalf("ImportInput(%s) error = %v", name, err)
		}
		if len(got.Nodes) != 3 || len(got.Links) != 2 {
			t.Errorf("ImportInput(%s) = %d nodes, %d links, want 3, 2", name, len(got.Nodes), len(got.Links))
		}
	}

	if _, err := ImportInput(filepath.Join(dir, "g.txt")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ImportInput(.txt) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := ImportInput(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ImportInput(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.toml", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if FormatYAML.Ext() != ".yaml" {
		t.Errorf("Ext() = %q, want .yaml", FormatYAML.Ext())
	}
}

func buildLayout(t *testing.T) *sankey.Layout {
	t.Helper()
	l, err := sankey.Build(wantInput(), 600, 300)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return l
}

func TestLayoutRoundTrip(t *testing.T) {
	l := buildLayout(t)
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := MarshalLayout(l, format)
			if err != nil {
				t.Fatalf("MarshalLayout() error = %v", err)
			}
			got, err := UnmarshalLayout(data, format)
			if err != nil {
				t.Fatalf("UnmarshalLayout() error = %v", err)
			}
			if !reflect.DeepEqual(got, l) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, l)
			}
		})
	}
}

func TestWriteLayoutWithPaths(t *testing.T) {
	l := buildLayout(t)

	data, err := MarshalLayout(l, FormatJSON, WithPaths(sankey.DefaultCurvature))
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	if !bytes.Contains(data, []byte(`"source_control_x"`)) {
		t.Errorf("output has no link paths:\n%s", data)
	}

	plain, err := MarshalLayout(l, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(plain, []byte(`"path"`)) {
		t.Error("paths written without WithPaths")
	}

	if _, err := MarshalLayout(l, FormatJSON, WithPaths(2)); !errors.Is(err, sankey.ErrInvalidOption) {
		t.Errorf("MarshalLayout(curvature 2) error = %v, want ErrInvalidOption", err)
	}
}

func TestExportLayout(t *testing.T) {
	l := buildLayout(t)
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := ExportLayout(l, path); err != nil {
		t.Fatalf("ExportLayout() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("node_width: 10")) {
		t.Errorf("unexpected YAML output:\n%s", data)
	}
}

func TestUnmarshalLayoutBadLink(t *testing.T) {
	data := []byte(`{"columns": 1, "nodes": [{"column": 0}], "links": [{"source": 0, "target": 3}]}`)
	if _, err := UnmarshalLayout(data, FormatJSON); !errors.Is(err, sankey.ErrInvalidReference) {
		t.Errorf("UnmarshalLayout() error = %v, want ErrInvalidReference", err)
	}
}
