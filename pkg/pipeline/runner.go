package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/observability"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Runner executes the pipeline with caching. The CLI and the render server
// share it.
//
// A Runner holds no per-run state: every layout uses a fresh engine, so
// multiple goroutines can use one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer, a nil cache
// disables caching and a nil logger means log.Default().
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

// Execute runs layout and render for root.
func (r *Runner) Execute(ctx context.Context, root *tree.Node, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Tree: root}

	// Stage 1: Layout
	layoutStart := time.Now()
	res, mismatches, layoutHit, err := r.LayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Mismatches = mismatches
	result.TreeHash, _ = TreeHash(root)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(res.Nodes)
	result.Stats.EdgeCount = len(res.Edges)
	result.Stats.Height = tree.Height(root)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
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

// LayoutWithCacheInfo validates root and lays it out, reporting parent
// mismatches and whether the layout came from cache.
//
// A cached layout is rebuilt from its serialized form, so its positioned
// nodes reference fresh tree nodes rather than root's.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, root *tree.Node, opts Options) (layout.Result, []tree.Mismatch, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, nil, false, err
	}

	mismatches, err := CheckTree(root, opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeParentMismatch) {
			observability.Pipeline().OnParentMismatch(ctx, len(tree.CheckParents(root)))
		}
		return layout.Result{}, nil, false, err
	}
	if len(mismatches) > 0 {
		observability.Pipeline().OnParentMismatch(ctx, len(mismatches))
		opts.Logger.Warn("parent back-references disagree with containment; using containment",
			"count", len(mismatches),
			"first", mismatches[0].String())
		for _, m := range mismatches {
			opts.Logger.Debug("parent mismatch", "node", m.String())
		}
	}

	treeHash, err := TreeHash(root)
	if err != nil {
		return layout.Result{}, nil, false, fmt.Errorf("hash tree: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := layout.ReadJSON(bytes.NewReader(data)); err == nil {
				if res, err := doc.Result(); err == nil {
					observability.Cache().OnCacheHit(ctx, "layout")
					return res, mismatches, true, nil
				}
			}
			// Undecodable entries fall through and get overwritten.
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, opts.VizType, tree.Count(root))
	start := time.Now()
	res := ComputeLayout(root, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, len(res.Nodes), time.Since(start), nil)

	var buf bytes.Buffer
	if err := layout.WriteJSON(&buf, res.Export()); err == nil {
		r.store(ctx, opts, "layout", cacheKey, buf.Bytes(), cache.TTLLayout)
	}
	return res, mismatches, false, nil
}

// Layout is LayoutWithCacheInfo without the cache and mismatch details.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (layout.Result, error) {
	res, _, _, err := r.LayoutWithCacheInfo(ctx, root, opts)
	return res, err
}

// RenderWithCacheInfo renders every requested format, reporting whether all
// of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := layout.WriteJSON(&buf, res.Export()); err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(buf.Bytes())

	if !opts.Refresh {
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
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(res, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, opts, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache details.
func (r *Runner) Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Failures only cost a recomputation later, so
// they are logged, not returned.
func (r *Runner) store(ctx context.Context, opts Options, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
