package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polagram/pkg/buildinfo"
	"github.com/matzehuels/polagram/pkg/cache"
	"github.com/matzehuels/polagram/pkg/config"
	"github.com/matzehuels/polagram/pkg/observability"
	"github.com/matzehuels/polagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "polagram"

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

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Polagram derives focused views of sequence diagrams",
		Long: `Polagram parses Mermaid and PlantUML sequence diagrams, applies lenses
that hide, focus or resolve parts of them, and writes the resulting views
back as diagrams, JSON trees or participant graphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "project file (default: nearest "+config.FileName+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.lensCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig loads the --config file or the nearest project file, falling
// back to defaults when there is none.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			c.Logger.Debug("no project file, using defaults")
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded project file", "path", path, "lenses", len(cfg.Lenses))
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped by
// build version.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		store, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cache.DefaultRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return store, nil
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/polagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// resolveCacheDir prefers the directory named in the project file.
func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}
