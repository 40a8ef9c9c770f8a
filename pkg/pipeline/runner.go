package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qmatter/hofstadter/pkg/cache"
	"github.com/qmatter/hofstadter/pkg/catalog"
	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/observability"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// Runner encapsulates pipeline execution with caching and run recording.
//
// The Runner is stateless except for its backends; it doesn't store run
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog catalog.Catalog
	Logger  *log.Logger
	Version string // stamped into bundle metadata

	// TTL overrides the per-kind cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The catalog starts as [catalog.Nop]; set Runner.Catalog to record runs.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: catalog.Nop{},
		Logger:  logger,
	}
}

// Bands runs the complete compute → invariants → render → save pipeline
// for a band structure.
func (r *Runner) Bands(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBands(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	h, err := NewModel(opts)
	if err != nil {
		return nil, err
	}

	b, stats, hit, err := r.ComputeBandsWithCacheInfo(ctx, h, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Bundle: b, Stats: stats}
	res.CacheInfo.ComputeHit = hit

	return r.finish(ctx, res, opts, start)
}

// Butterfly runs the sweep → render → save pipeline for a butterfly.
func (r *Runner) Butterfly(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForButterfly(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	b, stats, hit, err := r.SweepWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Bundle: b, Stats: stats}
	res.CacheInfo.ComputeHit = hit

	return r.finish(ctx, res, opts, start)
}

// finish renders, stamps the elapsed time and saves.
func (r *Runner) finish(ctx context.Context, res *Result, opts Options, start time.Time) (*Result, error) {
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res.Bundle, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheInfo.RenderHit = renderHit
	res.Bundle.Meta.Elapsed = time.Since(start)

	opts.Logger.Info("rendered figures",
		"figures", len(artifacts),
		"formats", opts.Formats,
		"duration", res.Stats.RenderTime)

	if opts.OutDir != "" {
		path, err := r.Save(ctx, res, opts.OutDir)
		if err != nil {
			return nil, err
		}
		res.Path = path
		opts.Logger.Info("saved run", "path", path, "id", res.Bundle.Meta.ID)
	}
	return res, nil
}

// ComputeBandsWithCacheInfo computes the spectrum and invariants of h with
// caching and returns the cache hit info. The cached entry is the whole
// bundle; a hit gets fresh metadata.
func (r *Runner) ComputeBandsWithCacheInfo(ctx context.Context, h *model.Hofstadter, opts Options) (*hio.Bundle, Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBands(); err != nil {
		return nil, Stats{}, false, err
	}

	var stats Stats
	cacheKey := r.Keyer.BandsKey(opts.BandsKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, ok := r.cachedBundle(ctx, cacheKey, "bands"); ok && cached.Data.Field != nil {
			b := bandsBundle(h, opts, cached.Data, r.Version)
			stats.Sets = len(b.Data.Sets)
			opts.Logger.Debug("spectrum from cache", "key", cacheKey)
			return b, stats, true, nil
		}
	}

	// Compute
	points := opts.Samples * opts.Samples
	hooks := observability.Pipeline()
	hooks.OnComputeStart(ctx, string(hio.ProgramBands), points)
	computeStart := time.Now()
	field, path, err := ComputeSpectrum(ctx, h, opts)
	stats.ComputeTime = time.Since(computeStart)
	hooks.OnComputeComplete(ctx, string(hio.ProgramBands), points, stats.ComputeTime, err)
	if err != nil {
		return nil, stats, false, fmt.Errorf("compute: %w", err)
	}
	stats.Points = points
	opts.Logger.Info("computed spectrum",
		"points", points,
		"bands", field.Bands,
		"duration", stats.ComputeTime)

	// Invariants
	hooks.OnInvariantsStart(ctx, len(spectrum.BandGroups(field, opts.GapThreshold)))
	invStart := time.Now()
	sets, err := Invariants(h, field, opts)
	stats.InvariantsTime = time.Since(invStart)
	hooks.OnInvariantsComplete(ctx, len(sets), stats.InvariantsTime, err)
	if err != nil {
		return nil, stats, false, fmt.Errorf("invariants: %w", err)
	}
	stats.Sets = len(sets)
	opts.Logger.Info("computed invariants",
		"sets", len(sets),
		"wilson", opts.Wilson,
		"duration", stats.InvariantsTime)

	b := bandsBundle(h, opts, hio.Data{Field: field, Path: path, Sets: sets}, r.Version)
	r.storeBundle(ctx, cacheKey, "bands", b, r.ttl(cache.TTLSpectrum))
	return b, stats, false, nil
}

// SweepWithCacheInfo runs the butterfly sweep with caching and returns the
// cache hit info.
func (r *Runner) SweepWithCacheInfo(ctx context.Context, opts Options) (*hio.Bundle, Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForButterfly(); err != nil {
		return nil, Stats{}, false, err
	}

	var stats Stats
	cacheKey := r.Keyer.ButterflyKey(opts.ButterflyKeyOpts())

	if !opts.Refresh {
		if cached, ok := r.cachedBundle(ctx, cacheKey, "butterfly"); ok && cached.Data.Butterfly != nil {
			opts.Logger.Debug("butterfly from cache", "key", cacheKey)
			return butterflyBundle(cached.Data.Butterfly, opts, r.Version), stats, true, nil
		}
	}

	columns := opts.Q - 1
	hooks := observability.Pipeline()
	hooks.OnComputeStart(ctx, string(hio.ProgramButterfly), columns)
	start := time.Now()
	bf, err := Sweep(ctx, opts)
	stats.ComputeTime = time.Since(start)
	hooks.OnComputeComplete(ctx, string(hio.ProgramButterfly), columns, stats.ComputeTime, err)
	if err != nil {
		return nil, stats, false, fmt.Errorf("sweep: %w", err)
	}
	stats.Points = len(bf.Columns)
	opts.Logger.Info("swept flux",
		"q", opts.Q,
		"columns", len(bf.Columns),
		"hall_values", len(bf.HallValues()),
		"duration", stats.ComputeTime)

	b := butterflyBundle(bf, opts, r.Version)
	r.storeBundle(ctx, cacheKey, "butterfly", b, r.ttl(cache.TTLButterfly))
	return b, stats, false, nil
}

// RenderWithCacheInfo draws the figures of a bundle with caching and
// returns whether every figure came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *hio.Bundle, opts Options) (map[string][]byte, bool, error) {
	opts.applyArgs(b.Args)
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	figs, err := figures(b, opts)
	if err != nil {
		return nil, false, err
	}
	resultHash := cache.Hash([]byte(r.resultKey(b)))

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	allCached := true
	artifacts := make(map[string][]byte, len(figs)*len(opts.Formats))
	for _, f := range figs {
		// Try to get all formats of this figure from cache
		missing := false
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(f.kind, format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[artifactName(f.kind, format)] = data
				observability.Cache().OnCacheHit(ctx, "artifact")
			} else {
				missing = true
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
		}
		if !missing {
			continue
		}
		allCached = false

		if err := renderFigure(f, opts.Formats, artifacts); err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		// Cache each format
		for _, format := range opts.Formats {
			data := artifacts[artifactName(f.kind, format)]
			key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(f.kind, format))
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached && len(figs) > 0, nil
}

// Paths draws the hopping-path diagram of the model the options describe.
// With opts.OutDir set, each format is written there.
func (r *Runner) Paths(ctx context.Context, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPaths(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	paths, err := HoppingPaths(opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("grouped hopping paths",
		"paths", paths.Len(),
		"nets", len(paths.Groups),
		"doubled", paths.Doubled)

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := RenderPaths(paths, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		for _, format := range opts.Formats {
			name := hio.Name{
				Program: KindPaths,
				Lattice: lattice.Name(opts.Lattice),
				P:       opts.P,
				Q:       opts.Q,
				T:       opts.T,
				Ext:     format,
			}.String()
			path := filepath.Join(opts.OutDir, name)
			if err := os.WriteFile(path, artifacts[artifactName(KindPaths, format)], 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			opts.Logger.Info("saved diagram", "path", path)
		}
	}
	return artifacts, nil
}

// Save writes the bundle and its figures to dir and records the run in
// the catalog. It returns the bundle path. Catalog failures are logged,
// not returned: the files on disk are the source of truth.
func (r *Runner) Save(ctx context.Context, res *Result, dir string) (string, error) {
	path, err := hio.Export(res.Bundle, dir)
	if err != nil {
		return "", err
	}
	for artifact, data := range res.Artifacts {
		p := filepath.Join(dir, ArtifactFileName(res.Bundle, artifact))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", p, err)
		}
	}

	start := time.Now()
	err = r.Catalog.Record(ctx, catalog.RunFromBundle(res.Bundle, path))
	observability.Catalog().OnRecord(ctx, string(res.Bundle.Args.Program), time.Since(start), err)
	if err != nil {
		r.Logger.Warn("catalog record failed", "id", res.Bundle.Meta.ID, "err", err)
	}
	return path, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Catalog != nil {
		if err := r.Catalog.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// resultKey identifies the computed content of a bundle, independent of
// its run metadata, so figures of equal results share cache entries.
func (r *Runner) resultKey(b *hio.Bundle) string {
	m := b.Model
	if b.Args.Program == hio.ProgramButterfly {
		return r.Keyer.ButterflyKey(cache.ButterflyKeyOpts{
			Lattice:      string(m.Lattice),
			Q:            m.Q,
			A0:           m.A0,
			T:            m.T,
			GapThreshold: b.Args.GapThreshold,
		})
	}
	return r.Keyer.BandsKey(cache.BandsKeyOpts{
		Lattice:      string(m.Lattice),
		P:            m.P,
		Q:            m.Q,
		A0:           m.A0,
		T:            m.T,
		Samples:      b.Args.Samples,
		PathPoints:   b.Args.PathPoints,
		GapThreshold: b.Args.GapThreshold,
		Wilson:       b.Args.Wilson,
	})
}

// cachedBundle loads a bundle from the cache. Undecodable entries count as
// misses and are recomputed.
func (r *Runner) cachedBundle(ctx context.Context, key, keyType string) (*hio.Bundle, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	b, err := hio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return b, true
}

func (r *Runner) storeBundle(ctx context.Context, key, keyType string, b *hio.Bundle, ttl time.Duration) {
	var buf bytes.Buffer
	if err := hio.WriteJSON(b, &buf); err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, buf.Len())
	}
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
