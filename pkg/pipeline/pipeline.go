// Package pipeline runs Sankey layouts for the CLI and the HTTP API.
//
// This package wraps [sankey.Build] with everything an entry point needs
// around it: option defaults and validation, input decoding, a content
// addressed cache, structured logging, observability hooks, and conversion
// of low-level errors into coded [errors.Error] values. By centralizing this
// logic, the CLI and the server behave identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	in, err := pipeline.LoadInput("energy.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := pipeline.DefaultOptions()
//	opts.Width = 1200
//	result, err := runner.Execute(ctx, in, opts)
//	if err != nil {
//	    log.Fatal(errors.UserMessage(err))
//	}
//	fmt.Println(result.Layout.Columns, result.CacheHit)
//
// [sankey.Build]: github.com/matzehuels/sankey/pkg/sankey.Build
// [errors.Error]: github.com/matzehuels/sankey/pkg/errors.Error
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/cache"
	errs "github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/sankey"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default drawing width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default drawing height in pixels.
	DefaultHeight = 500.0

	// DefaultNodeWidth is the default node rectangle width.
	DefaultNodeWidth = float64(sankey.DefaultNodeWidth)

	// DefaultNodePadding is the default vertical gap between nodes.
	DefaultNodePadding = float64(sankey.DefaultNodePadding)

	// DefaultIterations is the default number of relaxation rounds.
	DefaultIterations = sankey.DefaultIterations

	// DefaultCurvature is the default link curvature.
	DefaultCurvature = sankey.DefaultCurvature
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one layout run.
// This struct supports JSON serialization for API requests.
//
// Zero is a legal node padding and iteration count, so start from
// [DefaultOptions] and override fields rather than relying on zero values.
type Options struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	NodeWidth   float64 `json:"node_width"`
	NodePadding float64 `json:"node_padding"`
	Iterations  int     `json:"iterations"`
	// Curvature is used when link paths are included in the output.
	Curvature float64 `json:"curvature"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns options populated with every default.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		NodeWidth:   DefaultNodeWidth,
		NodePadding: DefaultNodePadding,
		Iterations:  DefaultIterations,
		Curvature:   DefaultCurvature,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed (or cached) layout.
	Layout *sankey.Layout

	// InputHash is the SHA-256 of the canonical JSON encoding of the input.
	InputHash string

	// CacheHit reports whether Layout came from the cache.
	CacheHit bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Columns    int
	LayoutTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills the drawing size when it is unset and installs a
// discarding logger. Other fields keep their values since zero is valid for
// them.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every option and returns a coded error for the first
// invalid one.
func (o *Options) Validate() error {
	if err := errs.ValidateSize(o.Width, o.Height); err != nil {
		return err
	}
	switch {
	case !finiteNonNegative(o.NodeWidth):
		return errs.New(errs.ErrCodeInvalidOption, "node width must be a non-negative number, got %v", o.NodeWidth)
	case o.NodeWidth > o.Width:
		return errs.New(errs.ErrCodeInvalidOption, "node width %v exceeds width %v", o.NodeWidth, o.Width)
	case !finiteNonNegative(o.NodePadding):
		return errs.New(errs.ErrCodeInvalidOption, "node padding must be a non-negative number, got %v", o.NodePadding)
	case o.Iterations < 0:
		return errs.New(errs.ErrCodeInvalidOption, "iterations must not be negative, got %d", o.Iterations)
	case math.IsNaN(o.Curvature) || o.Curvature < 0 || o.Curvature > 1:
		return errs.New(errs.ErrCodeInvalidOption, "curvature must be between 0 and 1, got %v", o.Curvature)
	}
	return nil
}

// ValidateForLayout sets defaults and validates.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.Validate()
}

// SankeyOptions converts the options for [sankey.Build].
func (o *Options) SankeyOptions() []sankey.Option {
	return []sankey.Option{
		sankey.WithNodeWidth(o.NodeWidth),
		sankey.WithNodePadding(o.NodePadding),
		sankey.WithIterations(o.Iterations),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
// Curvature is excluded: it does not change the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		NodeWidth:   o.NodeWidth,
		NodePadding: o.NodePadding,
		Iterations:  o.Iterations,
	}
}

func finiteNonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }
