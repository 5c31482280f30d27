package cache

import (
	"encoding/json"
	"fmt"
)

// keyVersion is bumped whenever the serialized layout or graph format
// changes, so entries written by older builds are never read back.
const keyVersion = "v1"

// Keyer derives cache keys. Every option that changes a result must be
// part of its key.
type Keyer interface {
	// LayoutKey generates a key for a multilevel layout of a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// DiscretiseKey generates a key for a time-sliced graph.
	DiscretiseKey(graphHash string, opts DiscretiseKeyOpts) string

	// ArtifactKey generates a key for a rendered snapshot.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the options that shape a layout.
type LayoutKeyOpts struct {
	Policy     string  `json:"policy"`
	Mass       string  `json:"mass"`
	MinNodes   int     `json:"min_nodes"`
	MaxLevels  int     `json:"max_levels"`
	Placement  string  `json:"placement"`
	Distance   float64 `json:"distance"`
	Jitter     float64 `json:"jitter"`
	Cooling    string  `json:"cooling"`
	Slope      float64 `json:"slope"`
	Floor      float64 `json:"floor"`
	Iterations int     `json:"iterations"`
	EdgeLength float64 `json:"edge_length"`
	MaxMove    float64 `json:"max_move"`
	Initial    string  `json:"initial"`
	Seed       uint64  `json:"seed"`
}

// DiscretiseKeyOpts lists the options that shape a discretisation.
type DiscretiseKeyOpts struct {
	Times     []float64 `json:"times,omitempty"`
	Radius    float64   `json:"radius"`
	Intervals []string  `json:"intervals,omitempty"`
}

// ArtifactKeyOpts lists the options that shape a rendered snapshot.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Time     float64 `json:"time"`
	Scale    float64 `json:"scale"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes options into "<kind>:v1:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// DiscretiseKey generates a key for discretisation caching.
func (DefaultKeyer) DiscretiseKey(graphHash string, opts DiscretiseKeyOpts) string {
	return hashKey("discretise", graphHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}

// hashKey joins kind, the key version and the SHA-256 of the JSON-encoded
// parts. Struct fields encode in declaration order, so equal options give
// equal keys.
func hashKey(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Key options are plain structs; this only fails on NaN or Inf.
		data = []byte(fmt.Sprint(parts...))
	}
	return kind + ":" + keyVersion + ":" + Hash(data)
}
