package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseTimes parses a comma-separated list of snapshot times.
func parseTimes(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		t, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", p, err)
		}
		out[i] = t
	}
	return out, nil
}

// parseIntervals splits a semicolon-separated interval list such as
// "[0, 4); [4, 10]". Commas belong to the intervals themselves.
func parseIntervals(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
