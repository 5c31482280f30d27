package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// cacheDir returns $XDG_CACHE_HOME/dynalayout, or ~/.cache/dynalayout.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// configDir returns $XDG_CONFIG_HOME/dynalayout, or ~/.config/dynalayout.
func configDir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// outputPath derives an output path from the input by replacing its
// extension with suffix, unless an explicit path was given.
func outputPath(explicit, input, suffix string) string {
	if explicit != "" {
		return explicit
	}
	if input == graph.Stdin {
		input = "stdin"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// artifactPaths maps each format to its output file. An explicit output
// is used verbatim for a single format and as the base path otherwise.
func artifactPaths(output, input string, t float64, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input) + "-t" + formatTime(t)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file
// paths, stripping a ".layout.json" suffix or a known format extension.
func basePath(output, input string) string {
	if output == "" {
		if input == graph.Stdin {
			return "stdin"
		}
		if base, ok := strings.CutSuffix(input, ".layout.json"); ok {
			return base
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
