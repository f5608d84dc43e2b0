package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for formats other than JSON and YAML.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat maps a user-supplied name ("json", "yaml" or "yml") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s: no extension: %w", path, ErrUnknownFormat)
	}
	return ParseFormat(ext)
}

// Ext returns the canonical file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }
