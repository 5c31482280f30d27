package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/internal/api"
	"github.com/matzehuels/dynalayout/pkg/cache"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		sc      sharedCacheConfig
		scope   string
		timeout time.Duration
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/layout
  POST /v1/discretise
  POST /v1/render

With --redis, layouts and artifacts are cached in Redis and shared between
server instances. Otherwise the local file cache is used, or an in-process
LRU with --cache memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("addr") && cfg.Serve.Addr != "" {
				addr = cfg.Serve.Addr
			}
			if !flags.Changed("cache") && cfg.Serve.Cache != "" {
				sc.Backend = cfg.Serve.Cache
			}
			if !flags.Changed("cache-entries") && cfg.Serve.CacheEntries != 0 {
				sc.Entries = cfg.Serve.CacheEntries
			}
			if !flags.Changed("redis") && cfg.Serve.Redis != "" {
				sc.Redis = cfg.Serve.Redis
			}
			if !flags.Changed("redis-password") && cfg.Serve.RedisPassword != "" {
				sc.RedisPassword = cfg.Serve.RedisPassword
			}
			if !flags.Changed("redis-db") && cfg.Serve.RedisDB != 0 {
				sc.RedisDB = cfg.Serve.RedisDB
			}

			ctx := cmd.Context()
			store, err := newSharedCache(ctx, sc)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(store, cache.WithScope(nil, scope), c.Logger)
			defer runner.Close()

			backend := sc.backend()
			switch s := store.(type) {
			case *cache.RedisCache:
				backend += " " + sc.Redis
			case *cache.MemoryCache:
				backend += fmt.Sprintf(" (up to %d entries)", s.Cap())
			}
			printSuccess("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("Cache", backend)
			printKeyValue("Timeout", timeout.String())

			srv := api.New(runner, api.Options{
				Logger:         c.Logger,
				Timeout:        timeout,
				AllowedOrigins: origins,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&sc.Backend, "cache", "", "cache backend: file, memory or redis (default: redis when --redis is set, else file)")
	cmd.Flags().IntVar(&sc.Entries, "cache-entries", cache.DefaultMemoryEntries, "entry limit of the memory cache")
	cmd.Flags().StringVar(&sc.Redis, "redis", "", "Redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&sc.RedisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&sc.RedisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&scope, "cache-scope", "", "prefix for cache keys, to share one Redis between deployments")
	cmd.Flags().DurationVar(&timeout, "timeout", api.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins (default: any)")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
