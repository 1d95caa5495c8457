package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphimg/pkg/cache"
	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/hexfile"
	"github.com/matzehuels/graphimg/pkg/image"
	"github.com/matzehuels/graphimg/pkg/layout"
	"github.com/matzehuels/graphimg/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Runs with different output directories may share
// a Runner; two runs writing the same directory must not overlap.
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

// Execute runs the complete generate → plan → encode → pack → record pipeline.
//
// params.txt and the manifest entry are written only after the image
// files are in place, so a failed run leaves the previous run's record
// describing the previous run's image.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	opts.Logger = logger

	result := &Result{RunID: runID, Paths: opts.Paths()}

	// Stage 1: Generate
	start := time.Now()
	g, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Graph = g
	result.Stats.GenerateTime = time.Since(start)
	result.CacheInfo.GraphHit = hit

	logger.Info("generated graph",
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Plan
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.Plan(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Params = p

	logger.Info("planned layout",
		"ieaddr", p.IEAddr,
		"waddr0", p.WAddr0,
		"waddr1", p.WAddr1)

	// Stage 3: Encode
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	words, err := r.Encode(ctx, g, p, result.Paths.Hex)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Words = words
	result.Stats.EncodeTime = time.Since(start)

	logger.Info("encoded image",
		"words", words,
		"path", result.Paths.Hex,
		"duration", result.Stats.EncodeTime)

	// Stage 4: Pack
	if !opts.SkipPack {
		if err := r.packStage(ctx, opts, result); err != nil {
			discard(logger, result.Paths.Hex)
			return nil, err
		}
	}

	// Stage 5: Record
	if err := r.Record(ctx, p, opts, runID); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	logger.Info("recorded layout",
		"params", result.Paths.Params,
		"manifest", result.Paths.Manifest)

	if opts.RemoveHex {
		if err := os.Remove(result.Paths.Hex); err != nil {
			logger.Warn("could not remove intermediate file", "path", result.Paths.Hex, "err", err)
		}
	}
	return result, nil
}

func (r *Runner) packStage(ctx context.Context, opts Options, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	stats, err := r.Pack(ctx, result.Paths.Hex, result.Paths.Image)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	result.Image = stats
	result.Stats.PackTime = time.Since(start)

	opts.Logger.Info("packed image",
		"bytes", stats.Bytes,
		"path", result.Paths.Image,
		"duration", result.Stats.PackTime)

	if stats.DiscardedTokens != 0 {
		discard(opts.Logger, result.Paths.Image)
		return errors.New(errors.ErrCodeInternal,
			"packer discarded %d tokens of a freshly encoded image", stats.DiscardedTokens)
	}
	return nil
}

// discard removes an artifact of a run that did not complete.
func discard(logger *log.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not remove partial output", "path", path, "err", err)
	}
}

// GenerateWithCacheInfo builds the graph with caching and returns cache hit info.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}

	source := opts.Source
	observability.Pipeline().OnGenerateStart(ctx, source, opts.Vertices, opts.Edges)
	start := time.Now()
	g, hit, err := r.generate(ctx, opts)
	var edges uint64
	if g != nil {
		edges = g.EdgeCount()
	}
	observability.Pipeline().OnGenerateComplete(ctx, source, edges, time.Since(start), err)
	return g, hit, err
}

func (r *Runner) generate(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	var (
		data      []byte
		inputHash string
	)
	if opts.Source == SourceDIMACS {
		var err error
		if data, err = readInput(opts.Input); err != nil {
			return nil, false, err
		}
		inputHash = cache.Hash(data)
	}
	cacheKey := r.Keyer.GraphKey(opts.GraphKeyOpts(inputHash))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := graph.UnmarshalGraph(cached)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil // Cache hit
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey, "err", err)
		} else if err != nil {
			r.Logger.Debug("cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	var (
		g   *graph.Graph
		err error
	)
	if opts.Source == SourceDIMACS {
		g, err = importDIMACS(data, opts)
	} else {
		g, err = generate(ctx, opts)
	}
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if encoded, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLGraph); err != nil {
			r.Logger.Debug("cache store failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(encoded))
		}
	}

	return g, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return g, err
}

// Plan computes the layout record for g.
func (r *Runner) Plan(ctx context.Context, g *graph.Graph) (layout.Params, error) {
	return layout.Plan(g.VertexCount(), g.EdgeCount())
}

// Record writes p to params.txt and records it in the benchmark manifest
// under opts.Name.
func (r *Runner) Record(ctx context.Context, p layout.Params, opts Options, runID string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	paths := opts.Paths()

	m, err := layout.LoadManifest(paths.Manifest)
	if err != nil {
		return err
	}
	if err := p.WriteTextFile(paths.Params); err != nil {
		return err
	}
	m.Upsert(layout.Entry{Name: opts.Name, RunID: runID, Params: p})
	return m.Save(paths.Manifest)
}

// Encode writes the hexadecimal intermediate form of g to path and returns
// the number of words written.
func (r *Runner) Encode(ctx context.Context, g *graph.Graph, p layout.Params, path string) (uint64, error) {
	observability.Pipeline().OnEncodeStart(ctx, path)
	start := time.Now()
	words, err := hexfile.WriteFile(path, g, p)
	observability.Pipeline().OnEncodeComplete(ctx, path, words, time.Since(start), err)
	return words, err
}

// Pack converts the intermediate form at hexPath into the binary image at
// imagePath.
func (r *Runner) Pack(ctx context.Context, hexPath, imagePath string) (image.Stats, error) {
	observability.Pipeline().OnPackStart(ctx, imagePath)
	start := time.Now()
	stats, err := image.PackFile(hexPath, imagePath)
	observability.Pipeline().OnPackComplete(ctx, imagePath, stats.Bytes, time.Since(start), err)
	return stats, err
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
