package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/cache"
	errs "github.com/matzehuels/sankey/pkg/errors"
	pkgio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/observability"
	"github.com/matzehuels/sankey/pkg/sankey"
)

// keyTypeLayout labels layout entries in cache hooks.
const keyTypeLayout = "layout"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of stored layouts; zero means cache.TTLLayout.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays out in with caching.
//
// The cache key covers the canonical JSON encoding of in and every option
// that changes the layout. Cache failures are logged and never fail the
// run. All returned errors are coded.
func (r *Runner) Execute(ctx context.Context, in sankey.Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	inputHash, err := HashInput(in)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "input metadata cannot be encoded")
	}
	result := &Result{InputHash: inputHash}
	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if l, ok := r.lookup(ctx, cacheKey, opts.Logger); ok {
			result.Layout = l
			result.CacheHit = true
			result.Stats = statsOf(l, 0)
			opts.Logger.Info("layout from cache",
				"nodes", len(l.Nodes),
				"links", len(l.Links),
				"cache", true)
			return result, nil
		}
	}

	// Compute
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(in.Nodes), len(in.Links))
	start := time.Now()
	l, err := sankey.Build(in, opts.Width, opts.Height, opts.SankeyOptions()...)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, len(in.Nodes), elapsed, err)
	if err != nil {
		return nil, Classify(err)
	}
	result.Layout = l
	result.Stats = statsOf(l, elapsed)

	opts.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"links", len(l.Links),
		"columns", l.Columns,
		"duration", elapsed,
		"cache", false)

	r.store(ctx, cacheKey, l, opts.Logger)
	return result, nil
}

// lookup returns the cached layout for key. Backend errors and undecodable
// entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string, logger *log.Logger) (*sankey.Layout, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache get failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	l, err := pkgio.UnmarshalLayout(data, pkgio.FormatJSON)
	if err != nil {
		// If deserialization fails, fall through to recompute
		logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		hooks.OnCacheMiss(ctx, keyTypeLayout)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyTypeLayout)
	return l, true
}

func (r *Runner) store(ctx context.Context, key string, l *sankey.Layout, logger *log.Logger) {
	data, err := pkgio.MarshalLayout(l, pkgio.FormatJSON)
	if err != nil {
		logger.Debug("cache encode failed", "err", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLLayout
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Debug("cache set failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
}

// HashInput returns the SHA-256 of the canonical JSON encoding of in.
// Map keys are sorted by the encoder, so equal inputs hash equally.
func HashInput(in sankey.Input) (string, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteInput(&buf, in, pkgio.FormatJSON); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

func statsOf(l *sankey.Layout, d time.Duration) Stats {
	return Stats{
		NodeCount:  len(l.Nodes),
		LinkCount:  len(l.Links),
		Columns:    l.Columns,
		LayoutTime: d,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
