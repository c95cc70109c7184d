package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/cache"
	polaio "github.com/matzehuels/polagram/pkg/io"
	"github.com/matzehuels/polagram/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default expiry of cache entries when positive.
	TTL time.Duration

	// OnJobDone is called after each successful Batch job. Jobs run
	// concurrently, so it must be safe for concurrent use.
	OnJobDone func()
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

// Execute runs the complete parse → lens → generate pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	// Stage 1: Parse
	parseStart := time.Now()
	root, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Root = root
	result.Stats.ParseTime = time.Since(parseStart)
	result.CacheInfo.ParseHit = parseHit

	data, err := polaio.EncodeMsgpack(root)
	if err != nil {
		return nil, err
	}
	result.ASTHash = cache.Hash(data)

	logger.Info("parsed diagram",
		"file", opts.Filename,
		"format", opts.Format,
		"participants", len(root.Participants),
		"events", ast.CountEvents(root.Events),
		"cached", parseHit,
		"duration", result.Stats.ParseTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Lens
	lensStart := time.Now()
	view, err := r.ApplyLens(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("lens %s: %w", opts.Lens.Name, err)
	}
	result.View = view
	result.Stats.LensTime = time.Since(lensStart)
	result.Stats.Participants = len(view.Participants)
	result.Stats.Events = ast.CountEvents(view.Events)

	logger.Info("applied lens",
		"lens", opts.Lens.Name,
		"layers", len(opts.Lens.Layers),
		"participants", result.Stats.Participants,
		"events", result.Stats.Events,
		"duration", result.Stats.LensTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Generate
	generateStart := time.Now()
	artifacts, generateHit, err := r.RenderWithCacheInfo(ctx, view, result.ASTHash, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.GenerateTime = time.Since(generateStart)
	result.CacheInfo.GenerateHit = generateHit

	logger.Info("generated outputs",
		"formats", opts.Formats,
		"cached", generateHit,
		"duration", result.Stats.GenerateTime)

	return result, nil
}

// ParseWithCacheInfo parses the source with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*ast.Root, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.ASTKey(string(opts.Format), cache.Hash([]byte(opts.Source)))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			root, err := polaio.DecodeMsgpack(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "ast")
				return root, true, nil // Cache hit
			}
			opts.Logger.Warn("discarding unreadable cache entry", "key", cacheKey, "err", err)
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "ast")
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, string(opts.Format), opts.Filename)
	start := time.Now()
	root, err := Parse(opts)
	if err != nil {
		hooks.OnParseComplete(ctx, string(opts.Format), opts.Filename, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnParseComplete(ctx, string(opts.Format), opts.Filename, ast.CountEvents(root.Events), time.Since(start), nil)

	if data, err := polaio.EncodeMsgpack(root); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLAST)); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "ast", len(data))
		}
	}

	return root, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*ast.Root, error) {
	root, _, err := r.ParseWithCacheInfo(ctx, opts)
	return root, err
}

// ApplyLens runs [ApplyLens] with observability hooks.
func (r *Runner) ApplyLens(ctx context.Context, root *ast.Root, opts Options) (*ast.Root, error) {
	hooks := observability.Pipeline()
	hooks.OnLensStart(ctx, opts.Lens.Name, len(opts.Lens.Layers))
	start := time.Now()
	view, err := ApplyLens(root, opts.Lens)
	if err != nil {
		hooks.OnLensComplete(ctx, opts.Lens.Name, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnLensComplete(ctx, opts.Lens.Name, ast.CountEvents(view.Events), time.Since(start), nil)
	return view, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// astHash identifies the parsed tree the view was derived from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, view *ast.Root, astHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ViewKey(astHash, opts.ViewKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "view")
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, "view")
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderAll(ctx, view, opts)
	hooks.OnGenerateComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ViewKey(astHash, opts.ViewKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLView)); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "view", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
