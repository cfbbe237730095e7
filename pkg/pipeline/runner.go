package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impred/pkg/cache"
	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/observability"
	"github.com/matzehuels/impred/pkg/quality"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different documents; each run
// builds its own engine.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute lays out doc and renders the requested formats, consulting the
// cache for both stages. On a layout cache miss doc itself is laid out; on a
// hit Result.Document is a fresh document decoded from the cache.
func (r *Runner) Execute(ctx context.Context, doc *io.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Stats: Stats{
			NodeCount:  doc.Graph.NodeCount(),
			EdgeCount:  doc.Graph.EdgeCount(),
			Iterations: opts.Iterations,
			Before:     quality.Measure(doc.Graph),
		},
	}

	layoutStart := time.Now()
	laidOut, hit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Document = laidOut.Document
	result.GraphHash = laidOut.GraphHash
	result.Layout = laidOut.Layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	result.Stats.After = quality.Measure(result.Document.Graph)

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"iterations", opts.Iterations,
		"crossings", result.Stats.After.Crossings,
		"cached", hit,
		"duration", result.Stats.LayoutTime)
	if before, after := result.Stats.Before.Crossings, result.Stats.After.Crossings; before != after {
		r.Logger.Warn("crossing count changed", "before", before, "after", after)
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Document, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutResult is the output of the layout stage.
type LayoutResult struct {
	Document  *io.Document
	GraphHash string
	Layout    []byte
}

// LayoutWithCacheInfo lays out doc with caching and reports whether the
// result came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *io.Document, opts Options) (LayoutResult, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return LayoutResult{}, false, err
	}

	input, err := MarshalDocument(doc)
	if err != nil {
		return LayoutResult{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(input)
	keyOpts, err := opts.LayoutKeyOpts()
	if err != nil {
		return LayoutResult{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, keyOpts)

	hooks := observability.Cache()
	enabled := cache.Enabled(r.Cache)
	if enabled && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := io.ReadJSON(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, keyTypeLayout)
				return LayoutResult{Document: cached, GraphHash: graphHash, Layout: data}, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	if err := ComputeLayout(ctx, doc, opts); err != nil {
		return LayoutResult{}, false, err
	}
	data, err := MarshalDocument(doc)
	if err != nil {
		return LayoutResult{}, false, fmt.Errorf("serialize layout: %w", err)
	}

	if !enabled {
		return LayoutResult{Document: doc, GraphHash: graphHash, Layout: data}, false, nil
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
		r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
	} else {
		hooks.OnCacheSet(ctx, keyTypeLayout, len(data))
	}
	return LayoutResult{Document: doc, GraphHash: graphHash, Layout: data}, false, nil
}

// RenderWithCacheInfo renders every requested format of a laid-out
// document, taking all of them from the cache when possible. layout is the
// document's JSON encoding and keys the artifacts.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *io.Document, layout []byte, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layout)
	hooks := observability.Cache()
	enabled := cache.Enabled(r.Cache)

	if enabled && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
	}

	rendered, err := Render(ctx, doc, opts)
	if err != nil || !enabled {
		return rendered, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
