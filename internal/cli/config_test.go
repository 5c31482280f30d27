package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleConfig = `
[layout]
placement = "identity"
iterations = 80
seed = 7

[coarsening]
policy = "solar_merger"
min_nodes = 10

[cooling]
strategy = "identity"

[discretise]
snap_times = [0.0, 5.0, 10.0]

[render]
formats = ["svg", "dot"]
scale = 2.0

[serve]
addr = ":9090"
cache = "memory"
cache_entries = 64
redis = "localhost:6379"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Serve.Addr != ":9090" || cfg.Serve.Redis != "localhost:6379" || cfg.Serve.Cache != "memory" || cfg.Serve.CacheEntries != 64 {
		t.Errorf("serve table = %+v", cfg.Serve)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() error: %v", err)
	}
	if opts.Placement != "identity" || opts.Iterations != 80 || opts.Seed != 7 {
		t.Errorf("layout options = %+v", opts)
	}
	if opts.Policy != "solar_merger" || opts.MinNodes != 10 {
		t.Errorf("coarsening: policy %q, min nodes %d", opts.Policy, opts.MinNodes)
	}
	if opts.Cooling != "identity" {
		t.Errorf("Cooling = %q, want identity", opts.Cooling)
	}
	if !slices.Equal(opts.SnapTimes, []float64{0, 5, 10}) {
		t.Errorf("SnapTimes = %v", opts.SnapTimes)
	}
	if !slices.Equal(opts.Formats, []string{"svg", "dot"}) || opts.Scale != 2 {
		t.Errorf("render options: formats %v, scale %v", opts.Formats, opts.Scale)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("config options should validate: %v", err)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "[layout]\niteratons = 3\n"))
	if err == nil {
		t.Fatal("loadConfig() should reject unknown keys")
	}
	if !strings.Contains(err.Error(), "layout.iteratons") {
		t.Errorf("error %q should name the unknown key", err)
	}
}

func TestLoadConfigBadCoarsening(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "[coarsening]\npolicy = \"louvain\"\n"))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if _, err := cfg.Options(); err == nil {
		t.Error("Options() should reject an unknown coarsening policy")
	}
}

func TestConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(os.Stderr, LogInfo)
	cfg, err := c.config()
	if err != nil {
		t.Fatalf("config() error: %v", err)
	}
	if cfg.Layout.Iterations != 0 || len(cfg.Coarsening) != 0 {
		t.Errorf("missing config file should give an empty config, got %+v", cfg)
	}
}

func TestConfigDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("[layout]\nseed = 11\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	cfg, err := c.config()
	if err != nil {
		t.Fatalf("config() error: %v", err)
	}
	if cfg.Layout.Seed != 11 {
		t.Errorf("Seed = %d, want 11", cfg.Layout.Seed)
	}
}

func TestResolveOptionsFlagsOverrideConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.configPath = writeConfig(t, sampleConfig)

	var flags pipeline.Options
	cmd := &cobra.Command{Use: "test"}
	addLayoutFlags(cmd, &flags)
	if err := cmd.ParseFlags([]string{"--seed", "99", "--policy", "walshaw"}); err != nil {
		t.Fatal(err)
	}

	opts, err := c.resolveOptions(cmd, &flags)
	if err != nil {
		t.Fatalf("resolveOptions() error: %v", err)
	}
	if opts.Seed != 99 {
		t.Errorf("Seed = %d, want flag value 99", opts.Seed)
	}
	if opts.Policy != "walshaw" {
		t.Errorf("Policy = %q, want flag value walshaw", opts.Policy)
	}
	// Unchanged flags keep the file values, not the flag defaults.
	if opts.Iterations != 80 {
		t.Errorf("Iterations = %d, want config value 80", opts.Iterations)
	}
	if opts.MinNodes != 10 {
		t.Errorf("MinNodes = %d, want config value 10", opts.MinNodes)
	}
	if opts.Logger != c.Logger {
		t.Error("resolveOptions should attach the CLI logger")
	}
}

func TestOverlayFlagsCoversAllLayoutFlags(t *testing.T) {
	var flags pipeline.Options
	cmd := &cobra.Command{Use: "test"}
	addLayoutFlags(cmd, &flags)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if _, ok := flagSetters[f.Name]; !ok {
			t.Errorf("flag --%s has no setter", f.Name)
		}
	})
}
