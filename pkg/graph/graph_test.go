package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

func sampleGraph(t *testing.T) *dygraph.Graph {
	t.Helper()
	g := dygraph.New(dygraph.Metadata{dygraph.MetaSnapshotTimes: "0,10"})

	a := dygraph.NewNode("a")
	a.Presence.MustInsert(temporal.Const(temporal.Closed(0, 10), true))
	a.Position.MustInsert(
		temporal.Rect(temporal.ClosedOpen(0, 5), dygraph.Point{}, dygraph.Point{X: 10}, temporal.SmoothStep),
		temporal.Const(temporal.Closed(5, 10), dygraph.Point{X: 10}),
	)
	a.Label.MustInsert(temporal.Const(temporal.Unbounded(), "alpha"))
	a.Meta[dygraph.MetaWeight] = 2.0

	b := dygraph.NewNode("b")
	b.Presence.MustInsert(temporal.Const(temporal.OpenClosed(2, 8), true))
	b.Size.MustInsert(temporal.Rect(temporal.Closed(2, 8), 1.0, 3.0, temporal.Linear))

	for _, n := range []dygraph.Node{a, b} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	e := dygraph.NewEdge("a", "b")
	e.Presence.MustInsert(temporal.Const(temporal.Closed(3, 4), true))
	if err := g.AddEdge(e); err != nil {
		t.Fatal(err)
	}
	return g
}

func sameEvolution[V comparable](t *testing.T, name string, got, want *temporal.Evolution[V]) {
	t.Helper()
	if got.Default() != want.Default() {
		t.Errorf("%s default = %v, want %v", name, got.Default(), want.Default())
	}
	if !reflect.DeepEqual(got.Functions(), want.Functions()) {
		t.Errorf("%s functions = %+v, want %+v", name, got.Functions(), want.Functions())
	}
}

func TestRoundTripPreservesEvolutions(t *testing.T) {
	g := sampleGraph(t)

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if got := back.NodeIDs(); !reflect.DeepEqual(got, g.NodeIDs()) {
		t.Errorf("node order = %v, want %v", got, g.NodeIDs())
	}
	for _, want := range g.Nodes() {
		got, ok := back.Node(want.ID)
		if !ok {
			t.Fatalf("node %s missing", want.ID)
		}
		sameEvolution(t, want.ID+" presence", got.Presence, want.Presence)
		sameEvolution(t, want.ID+" position", got.Position, want.Position)
		sameEvolution(t, want.ID+" label", got.Label, want.Label)
		sameEvolution(t, want.ID+" size", got.Size, want.Size)
	}

	e, ok := back.Edge("a", "b")
	if !ok {
		t.Fatal("edge a→b missing")
	}
	want, _ := g.Edge("a", "b")
	sameEvolution(t, "edge presence", e.Presence, want.Presence)

	a, _ := back.Node("a")
	if w := a.Weight(); w != 2 {
		t.Errorf("weight = %v, want 2", w)
	}
	if got := back.Meta().Text(dygraph.MetaSnapshotTimes); got != "0,10" {
		t.Errorf("snapshot_times = %q, want 0,10", got)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
		wantCode  errs.Code
		check     func(t *testing.T, g *dygraph.Graph)
	}{
		{
			name: "OmittedPresenceMeansAlways",
			input: `{
				"nodes": [{"id": "a"}, {"id": "b"}],
				"edges": [{"from": "a", "to": "b"}]
			}`,
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g *dygraph.Graph) {
				for _, at := range []float64{-1e9, 0, 1e9} {
					if got := len(g.EdgesAt(at)); got != 1 {
						t.Errorf("edges at %v = %d, want 1", at, got)
					}
				}
				n, _ := g.Node("b")
				if n.Size.ValueAt(0) != 1 {
					t.Errorf("size = %v, want 1", n.Size.ValueAt(0))
				}
			},
		},
		{
			name: "Interpolation",
			input: `{
				"nodes": [{"id": "a", "position": {"default": {"x": 0, "y": 0}, "segments": [
					{"interval": "[0, 10]", "value": {"x": 0, "y": 0}, "to": {"x": 10, "y": 0}, "interp": "step"}
				]}}],
				"edges": []
			}`,
			wantNodes: 1,
			check: func(t *testing.T, g *dygraph.Graph) {
				n, _ := g.Node("a")
				if got := n.Position.ValueAt(4); got != (dygraph.Point{}) {
					t.Errorf("position at 4 = %v, want origin", got)
				}
				if got := n.Position.ValueAt(6); got != (dygraph.Point{X: 10}) {
					t.Errorf("position at 6 = %v, want (10, 0)", got)
				}
			},
		},
		{
			name:    "InvalidJSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "MalformedInterval",
			input:   `{"nodes": [{"id": "a", "presence": {"default": false, "segments": [{"interval": "[5, 1]", "value": true}]}}]}`,
			wantErr: true,
		},
		{
			name: "OverlappingSegments",
			input: `{"nodes": [{"id": "a", "presence": {"default": false, "segments": [
				{"interval": "[0, 5]", "value": true},
				{"interval": "[5, 9]", "value": true}
			]}}]}`,
			wantErr:  true,
			wantCode: errs.ErrCodeDefinitionConflict,
		},
		{
			name:     "UnknownKernel",
			input:    `{"nodes": [{"id": "a", "size": {"default": 1, "segments": [{"interval": "[0, 1]", "value": 1, "to": 2, "interp": "bouncy"}]}}]}`,
			wantErr:  true,
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:    "UnknownEdgeEndpoint",
			input:   `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "z"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantCode != "" && !errs.Is(err, tt.wantCode) {
					t.Errorf("code = %s, want %s (%v)", errs.GetCode(err), tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := g.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestDuplicateNode(t *testing.T) {
	_, err := ToDyGraph(Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}})
	if !errors.Is(err, dygraph.ErrDuplicateNodeID) {
		t.Errorf("err = %v, want ErrDuplicateNodeID", err)
	}
}

func TestReadGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(sampleGraph(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("got %d nodes, %d edges; want 2, 1", g.NodeCount(), g.EdgeCount())
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestRectSegmentKeepsKind(t *testing.T) {
	e := temporal.NewEvolution(0.0)
	e.MustInsert(temporal.Rect(temporal.Closed(0, 1), 2.0, 2.0, temporal.Gaussian))

	data, err := json.Marshal(TrackOf(e))
	if err != nil {
		t.Fatal(err)
	}
	var tr Track[float64]
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatal(err)
	}
	back, err := tr.Evolution(0)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Delete(temporal.Rect(temporal.Closed(0, 1), 2.0, 2.0, temporal.Gaussian)) {
		t.Errorf("rect with equal endpoints did not survive: %+v", back.Functions())
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := Layout{
		RunID:      "run-1",
		Graph:      FromDyGraph(sampleGraph(t)),
		Levels:     []LevelStat{{Level: 1, Nodes: 1, Iterations: 50}, {Level: 0, Nodes: 2, Edges: 1, Iterations: 45}},
		StopReason: "min_nodes",
		Seed:       7,
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.RunID != l.RunID || got.Seed != l.Seed || !reflect.DeepEqual(got.Levels, l.Levels) {
		t.Errorf("got %+v", got)
	}
	if _, err := ToDyGraph(got.Graph); err != nil {
		t.Errorf("ToDyGraph: %v", err)
	}
}

func TestUnmarshalLayoutRequiresGraph(t *testing.T) {
	if _, err := UnmarshalLayout([]byte(`{"seed": 1}`)); err == nil {
		t.Error("expected error for layout without graph")
	}
	if _, err := ReadLayoutFile(filepath.Join(os.TempDir(), "does-not-exist.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadGraphFormatErrors(t *testing.T) {
	for name, input := range map[string]string{
		"invalid json":  `{invalid json}`,
		"trailing data": `{"nodes": [{"id": "a"}]} {"nodes": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(input))
			if !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestWriteGraphFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteGraphFile(sampleGraph(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	if _, err := ReadGraphFile(path); err != nil {
		t.Errorf("ReadGraphFile after replace: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}
