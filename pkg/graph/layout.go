package graph

import (
	"bytes"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Layout is a finished layout run: the input graph with its computed
// position tracks and a summary of the hierarchy that produced them. The
// CLI writes it, the API returns it and the pipeline caches it.
type Layout struct {
	RunID string `json:"run_id,omitempty"`
	Graph Graph  `json:"graph"`

	Levels     []LevelStat `json:"levels,omitempty"` // coarsest first
	StopReason string      `json:"stop_reason,omitempty"`

	Policy string `json:"policy,omitempty"`
	Seed   uint64 `json:"seed"`

	DurationMS int64 `json:"duration_ms,omitempty"`
}

// LevelStat summarizes one solved hierarchy level.
type LevelStat struct {
	Level      int `json:"level"`
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	Iterations int `json:"iterations"`
}

// Depth returns the number of levels, the original graph included.
func (l Layout) Depth() int { return len(l.Levels) }

// MarshalLayout encodes l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) { return marshal(l) }

// UnmarshalLayout decodes a layout document. A document without a graph
// is rejected, since every consumer renders or refines that graph.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := decodeOne(bytes.NewReader(data), &l); err != nil {
		return Layout{}, err
	}
	if l.Graph.Nodes == nil {
		return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "layout document has no graph")
	}
	return l, nil
}

// WriteLayoutFile writes l to path, replacing any existing file in one
// step.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadLayoutFile reads a layout document from path.
func ReadLayoutFile(path string) (Layout, error) {
	f, err := openFile(path)
	if err != nil {
		return Layout{}, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return Layout{}, err
	}
	return UnmarshalLayout(buf.Bytes())
}
