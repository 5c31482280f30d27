// Package cli implements the dynalayout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/buildinfo"
	"github.com/matzehuels/dynalayout/pkg/cache"
	"github.com/matzehuels/dynalayout/pkg/observability"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "dynalayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means the default location.
	configPath string
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
		Short: "dynalayout lays out graphs that change over time",
		Long: `dynalayout computes layouts for dynamic graphs: graphs whose nodes and edges
appear, disappear and change attributes over continuous time.

Graphs are coarsened into a hierarchy of smaller graphs, laid out on the
coarsest level and refined level by level back to the original graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.discretiseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	for _, sub := range root.Commands() {
		registerValueCompletions(sub)
	}
	return root
}

// installHooks routes engine, cache and HTTP events into the CLI logger.
// It runs after the log level is final, since sub-loggers copy the level.
func (c *CLI) installHooks() {
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetLayoutHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// sharedCacheConfig selects the backend the server caches into.
type sharedCacheConfig struct {
	Backend       string // "file", "memory" or "redis"; empty picks redis when Redis is set
	Entries       int
	Redis         string
	RedisPassword string
	RedisDB       int
}

func (sc sharedCacheConfig) backend() string {
	if sc.Backend != "" {
		return sc.Backend
	}
	if sc.Redis != "" {
		return "redis"
	}
	return "file"
}

// newSharedCache builds the server cache. The memory backend is private to
// the process; redis is shared between server instances.
func newSharedCache(ctx context.Context, sc sharedCacheConfig) (cache.Cache, error) {
	switch sc.backend() {
	case "file":
		return newCache(false)
	case "memory":
		return cache.NewMemoryCache(sc.Entries), nil
	case "redis":
		if sc.Redis == "" {
			return nil, fmt.Errorf("cache backend redis needs --redis")
		}
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: sc.Redis, Password: sc.RedisPassword, DB: sc.RedisDB})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, memory or redis)", sc.Backend)
}
