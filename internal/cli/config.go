package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// configFileName is the config file looked up in the config directory.
const configFileName = "config.toml"

// Config is the TOML config file. Every table is optional; command-line
// flags override file values.
//
//	[layout]
//	placement = "barycenter"
//	iterations = 80
//	seed = 7
//
//	[coarsening]
//	policy = "solar_merger"
//	min_nodes = 10
//
//	[cooling]
//	strategy = "linear"
//	slope = 0.15
//
//	[discretise]
//	snap_times = [0, 5, 10]
//
//	[render]
//	formats = ["svg", "dot"]
//
//	[serve]
//	addr = ":8080"
type Config struct {
	Layout     LayoutConfig     `toml:"layout"`
	Coarsening map[string]any   `toml:"coarsening"`
	Cooling    CoolingConfig    `toml:"cooling"`
	Discretise DiscretiseConfig `toml:"discretise"`
	Render     RenderConfig     `toml:"render"`
	Serve      ServeConfig      `toml:"serve"`
}

// LayoutConfig holds the [layout] table.
type LayoutConfig struct {
	Placement  string  `toml:"placement"`
	Distance   float64 `toml:"distance"`
	Jitter     float64 `toml:"jitter"`
	Iterations int     `toml:"iterations"`
	EdgeLength float64 `toml:"edge_length"`
	MaxMove    float64 `toml:"max_move"`
	Initial    string  `toml:"initial"`
	Seed       uint64  `toml:"seed"`
}

// CoolingConfig holds the [cooling] table.
type CoolingConfig struct {
	Strategy string  `toml:"strategy"`
	Slope    float64 `toml:"slope"`
	Floor    float64 `toml:"floor"`
}

// DiscretiseConfig holds the [discretise] table.
type DiscretiseConfig struct {
	SnapTimes []float64 `toml:"snap_times"`
	Radius    float64   `toml:"radius"`
	Intervals []string  `toml:"intervals"`
}

// RenderConfig holds the [render] table.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Time    float64  `toml:"time"`
	Scale   float64  `toml:"scale"`
}

// ServeConfig holds the [serve] table.
type ServeConfig struct {
	Addr          string `toml:"addr"`
	Cache         string `toml:"cache"`
	CacheEntries  int    `toml:"cache_entries"`
	Redis         string `toml:"redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// loadConfig reads a config file. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// config loads the --config file, or the default file when it exists.
// A missing default file yields an empty config.
func (c *CLI) config() (Config, error) {
	if c.configPath != "" {
		return loadConfig(c.configPath)
	}
	dir, err := configDir()
	if err != nil {
		return Config{}, nil
	}
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	c.Logger.Debug("using config file", "path", path)
	return loadConfig(path)
}

// Options converts the file values to pipeline options.
func (cfg Config) Options() (pipeline.Options, error) {
	opts := pipeline.Options{
		Placement:  cfg.Layout.Placement,
		Distance:   cfg.Layout.Distance,
		Jitter:     cfg.Layout.Jitter,
		Iterations: cfg.Layout.Iterations,
		EdgeLength: cfg.Layout.EdgeLength,
		MaxMove:    cfg.Layout.MaxMove,
		Initial:    cfg.Layout.Initial,
		Seed:       cfg.Layout.Seed,
		Cooling:    cfg.Cooling.Strategy,
		Slope:      cfg.Cooling.Slope,
		Floor:      cfg.Cooling.Floor,
		SnapTimes:  cfg.Discretise.SnapTimes,
		Radius:     cfg.Discretise.Radius,
		Intervals:  cfg.Discretise.Intervals,
		Formats:    cfg.Render.Formats,
		Time:       cfg.Render.Time,
		Scale:      cfg.Render.Scale,
	}
	if err := opts.ApplyCoarsening(cfg.Coarsening); err != nil {
		return pipeline.Options{}, fmt.Errorf("[coarsening]: %w", err)
	}
	return opts, nil
}

// =============================================================================
// Flag Overlay
// =============================================================================

// flagSetters copies one option from the flag-bound struct to the merged
// options. Keyed by flag name.
var flagSetters = map[string]func(dst, src *pipeline.Options){
	"policy":      func(d, s *pipeline.Options) { d.Policy = s.Policy },
	"mass":        func(d, s *pipeline.Options) { d.Mass = s.Mass },
	"min-nodes":   func(d, s *pipeline.Options) { d.MinNodes = s.MinNodes },
	"max-levels":  func(d, s *pipeline.Options) { d.MaxLevels = s.MaxLevels },
	"placement":   func(d, s *pipeline.Options) { d.Placement = s.Placement },
	"distance":    func(d, s *pipeline.Options) { d.Distance = s.Distance },
	"jitter":      func(d, s *pipeline.Options) { d.Jitter = s.Jitter },
	"cooling":     func(d, s *pipeline.Options) { d.Cooling = s.Cooling },
	"slope":       func(d, s *pipeline.Options) { d.Slope = s.Slope },
	"floor":       func(d, s *pipeline.Options) { d.Floor = s.Floor },
	"iterations":  func(d, s *pipeline.Options) { d.Iterations = s.Iterations },
	"edge-length": func(d, s *pipeline.Options) { d.EdgeLength = s.EdgeLength },
	"max-move":    func(d, s *pipeline.Options) { d.MaxMove = s.MaxMove },
	"initial":     func(d, s *pipeline.Options) { d.Initial = s.Initial },
	"seed":        func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"radius":      func(d, s *pipeline.Options) { d.Radius = s.Radius },
	"time":        func(d, s *pipeline.Options) { d.Time = s.Time },
	"scale":       func(d, s *pipeline.Options) { d.Scale = s.Scale },
	"detailed":    func(d, s *pipeline.Options) { d.Detailed = s.Detailed },
	"refresh":     func(d, s *pipeline.Options) { d.Refresh = s.Refresh },
}

// resolveOptions merges the config file with the flags the user set
// explicitly on cmd.
func (c *CLI) resolveOptions(cmd *cobra.Command, flags *pipeline.Options) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return pipeline.Options{}, err
	}
	overlayFlags(cmd, &opts, flags)
	opts.Logger = c.Logger
	return opts, nil
}

// overlayFlags applies every changed flag of cmd onto dst.
func overlayFlags(cmd *cobra.Command, dst, src *pipeline.Options) {
	for name, set := range flagSetters {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			set(dst, src)
		}
	}
}

// addLayoutFlags registers the layout option flags bound to opts.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.StringVar(&opts.Policy, "policy", pipeline.DefaultPolicy, "coarsening policy: independent_set, walshaw, solar_merger")
	f.StringVar(&opts.Mass, "mass", "", "own-cluster mass for placement: count, solar (default depends on policy)")
	f.IntVar(&opts.MinNodes, "min-nodes", pipeline.DefaultMinNodes, "stop coarsening at this many nodes")
	f.IntVar(&opts.MaxLevels, "max-levels", 0, "maximum number of coarse levels (0 = unlimited)")
	f.StringVar(&opts.Placement, "placement", pipeline.DefaultPlacement, "placement strategy: barycenter, identity")
	f.Float64Var(&opts.Distance, "distance", pipeline.DefaultDistance, "offset of members without foreign neighbours")
	f.Float64Var(&opts.Jitter, "jitter", 0, "random jitter added to placed positions")
	f.StringVar(&opts.Cooling, "cooling", pipeline.DefaultCooling, "cooling strategy: linear, identity")
	f.Float64Var(&opts.Slope, "slope", 0, "linear cooling slope per level (default 0.1)")
	f.Float64Var(&opts.Floor, "floor", 0, "linear cooling floor (default 0.2)")
	f.IntVar(&opts.Iterations, "iterations", pipeline.DefaultIterations, "solver iterations on the coarsest level")
	f.Float64Var(&opts.EdgeLength, "edge-length", 0, "desired edge length (default 50)")
	f.Float64Var(&opts.MaxMove, "max-move", 0, "maximum node movement per iteration (default 10)")
	f.StringVar(&opts.Initial, "initial", pipeline.DefaultInitial, "initial layout of the coarsest level: solve, random")
	f.Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	f.BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached result exists")
}
