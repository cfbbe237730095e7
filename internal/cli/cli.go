// Package cli implements the impred command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/buildinfo"
	"github.com/matzehuels/impred/pkg/cache"
	"github.com/matzehuels/impred/pkg/config"
	"github.com/matzehuels/impred/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "impred"

	// cacheDirEnv overrides the layout cache directory.
	cacheDirEnv = "IMPRED_CACHE_DIR"
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

	// Out receives command results. Status lines go to the logger.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "impred lays out graphs while preserving edge crossings",
		Long: `impred improves an existing 2D graph drawing with the ImPrEd force-directed
algorithm. Nodes move to relieve clutter but never cross an edge, so the
crossing structure of the input drawing survives the layout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheOptions selects the cache backing a runner.
type cacheOptions struct {
	disabled  bool
	redisAddr string
	scope     string
}

func (o *cacheOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.disabled, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&o.redisAddr, "redis", "", "cache in Redis at this address instead of on disk")
	cmd.Flags().StringVar(&o.scope, "cache-scope", "", "prefix for cache keys, to share one backend between deployments")
}

func (o cacheOptions) keyer() cache.Keyer {
	if o.scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), o.scope)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, opts cacheOptions) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, opts.keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, opts cacheOptions) (cache.Cache, error) {
	switch {
	case opts.disabled:
		return cache.NewNullCache(), nil
	case opts.redisAddr != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", opts.redisAddr)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns $IMPRED_CACHE_DIR or the per-user cache directory.
func cacheDir() (string, error) {
	if dir := os.Getenv(cacheDirEnv); dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads a TOML configuration, or returns the default preset when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string, def string) ([]string, error) {
	if s == "" {
		return []string{def}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if err := pipeline.ValidateFormat(f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
