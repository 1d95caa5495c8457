// Package cli implements the graphimg command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphimg/pkg/buildinfo"
	"github.com/matzehuels/graphimg/pkg/cache"
	"github.com/matzehuels/graphimg/pkg/observability"
	"github.com/matzehuels/graphimg/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphimg"

	// cacheKeyPrefix namespaces graph entries in shared caches. Bump the
	// version when the graph encoding changes.
	cacheKeyPrefix = "graphimg:v1:"
)

// Environment variables, also read from a .env file in the working directory.
const (
	envConfig   = "GRAPHIMG_CONFIG"    // default --config
	envOutDir   = "GRAPHIMG_OUT_DIR"   // default --out-dir
	envCacheDir = "GRAPHIMG_CACHE_DIR" // overrides the XDG cache location
	envRedisURL = "GRAPHIMG_REDIS_URL" // use a shared Redis cache
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LogEvents reports pipeline stage and cache events through the CLI logger
// at debug level.
func (c *CLI) LogEvents() {
	hooks := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "graphimg generates graph memory images for accelerator benchmarks",
		Long: `graphimg generates synthetic directed graphs and encodes them into the
memory image read by a graph-processing accelerator: a vertex table of
incoming-edge offsets and out-degrees, the incoming-edge array, and two
scratch regions, packed into 4096-byte pages.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadEnv()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, keyer, c.Logger), nil
}

// newCache picks the cache backend: none, Redis when GRAPHIMG_REDIS_URL is
// set, otherwise files under cacheDir. An unreachable Redis falls back to
// the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache {
		return cache.NewNullCache(), nil, nil
	}
	if url := os.Getenv(envRedisURL); url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return rc, cache.NewScopedKeyer(nil, cacheKeyPrefix), nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	return fc, nil, err
}

// =============================================================================
// Paths & Environment
// =============================================================================

// cacheDir returns the cache directory: GRAPHIMG_CACHE_DIR if set, else the
// XDG standard location (~/.cache/graphimg/).
func cacheDir() (string, error) {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment win.
func loadEnv() {
	_ = godotenv.Load()
}
