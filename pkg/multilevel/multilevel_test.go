package multilevel

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dynalayout/pkg/coarsen"
	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/observability"
	"github.com/matzehuels/dynalayout/pkg/placement"
	"github.com/matzehuels/dynalayout/pkg/solver"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

func pathGraph(t *testing.T, n int, ring bool) *dygraph.Graph {
	t.Helper()
	g := dygraph.New(nil)
	ids := make([]string, n)
	for i := range n {
		ids[i] = fmt.Sprintf("v%02d", i)
		node := dygraph.NewNode(ids[i])
		node.Presence.MustInsert(temporal.Const(temporal.Closed(0, 10), true))
		require.NoError(t, g.AddNode(node))
	}
	link := func(a, b string) {
		e := dygraph.NewEdge(a, b)
		e.Presence.MustInsert(temporal.Const(temporal.Closed(0, 10), true))
		require.NoError(t, g.AddEdge(e))
	}
	for i := 1; i < n; i++ {
		link(ids[i-1], ids[i])
	}
	if ring {
		link(ids[n-1], ids[0])
	}
	return g
}

type call struct {
	nodes      int
	iterations int
}

// recorder pins every node of a solved level at (nodes, 0).
func recorder(calls *[]call, failOn int) solver.Solver {
	return solver.Func(func(_ context.Context, g *dygraph.Graph, _ []solver.Force, _ []solver.Constraint, _ []solver.PostProcessor, iterations int) error {
		*calls = append(*calls, call{nodes: g.NodeCount(), iterations: iterations})
		if len(*calls) == failOn {
			return errDiverged
		}
		for _, n := range g.Nodes() {
			n.Position.Reset(dygraph.Point{X: float64(g.NodeCount())})
		}
		return nil
	})
}

var errDiverged = errors.New("diverged")

func TestRunSolvesEveryLevelOnce(t *testing.T) {
	g := pathGraph(t, 8, false)
	var calls []call
	res, err := Run(context.Background(), g, Options{
		Coarsening: coarsen.Options{MinNodes: 1},
		Solver:     recorder(&calls, 0),
		Iterations: 10,
		Cooling:    Linear{Slope: 0.1, Floor: 0.2},
		Placement:  placement.Identity{},
	})
	require.NoError(t, err)

	require.Equal(t, 4, res.Hierarchy.Depth())
	assert.Equal(t, []call{{1, 10}, {2, 9}, {4, 8}, {8, 7}}, calls)
	require.Len(t, res.Levels, 4)
	assert.Equal(t, 0, res.Levels[3].Index)
	assert.Equal(t, coarsen.StopMinNodes, res.StopReason)

	for _, n := range g.Nodes() {
		assert.Equal(t, dygraph.Point{X: 8}, n.Position.ValueAt(5), n.ID)
	}
}

func TestRunSolverFailureLeavesInputUntouched(t *testing.T) {
	g := pathGraph(t, 8, false)
	var calls []call
	_, err := Run(context.Background(), g, Options{
		Coarsening: coarsen.Options{MinNodes: 1},
		Solver:     recorder(&calls, 2),
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeSolverFailure))
	assert.ErrorIs(t, err, errDiverged)
	assert.Len(t, calls, 2, "failures are not retried")

	for _, n := range g.Nodes() {
		assert.Equal(t, dygraph.Point{}, n.Position.ValueAt(5))
	}
}

func TestRunInitialRandom(t *testing.T) {
	g := pathGraph(t, 6, true)
	var first []dygraph.Point
	s := solver.Func(func(_ context.Context, lg *dygraph.Graph, _ []solver.Force, _ []solver.Constraint, _ []solver.PostProcessor, _ int) error {
		if first == nil {
			for _, n := range lg.Nodes() {
				first = append(first, n.Position.ValueAt(0))
			}
		}
		return nil
	})
	_, err := Run(context.Background(), g, Options{
		Coarsening: coarsen.Options{MinNodes: 3},
		Solver:     s,
		Initial:    InitialRandom,
		Rand:       rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.NotEqual(t, dygraph.Point{}, first[0])
}

func TestRunWithStepperIsDeterministic(t *testing.T) {
	layout := func() []dygraph.Point {
		g := pathGraph(t, 12, true)
		_, err := Run(context.Background(), g, Options{
			Coarsening: coarsen.Options{MinNodes: 2},
			Iterations: 20,
			Seed:       42,
		})
		require.NoError(t, err)
		var out []dygraph.Point
		for _, n := range g.Nodes() {
			out = append(out, n.Position.ValueAt(5))
		}
		return out
	}
	a, b := layout(), layout()
	assert.Equal(t, a, b)

	distinct := map[dygraph.Point]bool{}
	for _, p := range a {
		distinct[p] = true
	}
	assert.Greater(t, len(distinct), 1, "nodes are spread out")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, pathGraph(t, 4, false), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingHooks struct {
	observability.NoopLayoutHooks
	levels   int
	complete int
	lastErr  error
}

func (h *countingHooks) OnLevelComplete(context.Context, int, int, time.Duration, error) {
	h.levels++
}

func (h *countingHooks) OnLayoutComplete(_ context.Context, levels int, _ time.Duration, err error) {
	h.complete = levels
	h.lastErr = err
}

func TestRunEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	var calls []call
	_, err := Run(context.Background(), pathGraph(t, 8, false), Options{
		Coarsening: coarsen.Options{MinNodes: 1},
		Solver:     recorder(&calls, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, hooks.levels)
	assert.Equal(t, 4, hooks.complete)
	assert.NoError(t, hooks.lastErr)
}
