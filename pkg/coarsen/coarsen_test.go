package coarsen

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

type testEdge struct {
	from, to string
	weight   float64
}

func buildGraph(t *testing.T, ids []string, edges []testEdge) *dygraph.Graph {
	t.Helper()
	g := dygraph.New(nil)
	for _, id := range ids {
		n := dygraph.NewNode(id)
		require.NoError(t, n.Presence.Insert(temporal.Const(temporal.Closed(0, 10), true)))
		require.NoError(t, g.AddNode(n))
	}
	for _, e := range edges {
		de := dygraph.NewEdge(e.from, e.to)
		require.NoError(t, de.Presence.Insert(temporal.Const(temporal.Closed(0, 10), true)))
		if e.weight != 0 {
			de.Meta[dygraph.MetaWeight] = e.weight
		}
		require.NoError(t, g.AddEdge(de))
	}
	return g
}

func path(ids ...string) []testEdge {
	var out []testEdge
	for i := 1; i < len(ids); i++ {
		out = append(out, testEdge{from: ids[i-1], to: ids[i]})
	}
	return out
}

func TestIndependentSetPath(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d"}, path("a", "b", "c", "d"))

	c := New(Options{MinNodes: 2})
	h, err := c.Run(context.Background(), g)
	require.NoError(t, err)

	require.Equal(t, 2, h.Depth())
	l1 := h.Coarsest()
	assert.Equal(t, 2, l1.Graph.NodeCount())
	assert.Equal(t, map[string][]string{
		"a__1": {"a", "b"},
		"c__1": {"c", "d"},
	}, l1.Groups)
	assert.Equal(t, StateStopped, c.State())
	assert.Equal(t, StopMinNodes, c.StopReason())

	e, ok := l1.Graph.EdgeBetween("a__1", "c__1")
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Weight())
	assert.Equal(t, 2.0, l1.NodeWeight["a__1"])
}

func TestLevelsShrinkAndPartition(t *testing.T) {
	var ids []string
	for i := range 12 {
		ids = append(ids, fmt.Sprintf("n%02d", i))
	}
	edges := path(ids...)
	edges = append(edges, testEdge{from: "n11", to: "n00"}, testEdge{from: "n00", to: "n06"})
	g := buildGraph(t, ids, edges)

	h, err := New(Options{MinNodes: 1}).Run(context.Background(), g)
	require.NoError(t, err)
	require.Greater(t, h.Depth(), 1)

	for k := 1; k < h.Depth(); k++ {
		level, _ := h.Level(k)
		parent, ok := h.Parent(k)
		require.True(t, ok)
		assert.Less(t, level.Graph.NodeCount(), parent.Graph.NodeCount(), "level %d", k)

		seen := map[string]int{}
		for cid, members := range level.Groups {
			for _, m := range members {
				seen[m]++
				assert.Equal(t, cid, level.Association[m])
			}
		}
		assert.Len(t, seen, parent.Graph.NodeCount())
		for id, n := range seen {
			assert.Equal(t, 1, n, "node %s grouped %d times at level %d", id, n, k)
		}
	}

	var all []string
	for _, id := range h.Coarsest().Graph.NodeIDs() {
		members, err := h.GroupMembers(id)
		require.NoError(t, err)
		all = append(all, members...)
	}
	slices.Sort(all)
	assert.Equal(t, ids, all)
}

func TestWalshawLightestEdge(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d"}, []testEdge{
		{from: "a", to: "b", weight: 1},
		{from: "b", to: "c", weight: 5},
		{from: "c", to: "d", weight: 1},
		{from: "d", to: "a", weight: 5},
	})
	na, _ := g.Node("a")
	na.Presence.Reset(false)
	require.NoError(t, na.Presence.Insert(temporal.Const(temporal.ClosedOpen(0, 5), true)))
	nb, _ := g.Node("b")
	nb.Presence.Reset(false)
	require.NoError(t, nb.Presence.Insert(temporal.Const(temporal.Closed(5, 10), true)))
	require.NoError(t, nb.Position.Insert(temporal.Const(temporal.Closed(0, 10), dygraph.Point{X: 7})))

	bc, _ := g.Edge("b", "c")
	bc.Presence.Reset(false)
	require.NoError(t, bc.Presence.Insert(temporal.Const(temporal.Closed(0, 3), true)))
	da, _ := g.Edge("d", "a")
	da.Presence.Reset(false)
	require.NoError(t, da.Presence.Insert(temporal.Const(temporal.Closed(5, 8), true)))

	h, err := New(Options{MinNodes: 2, Policy: Walshaw{}}).Run(context.Background(), g)
	require.NoError(t, err)
	l1 := h.Coarsest()

	assert.Equal(t, map[string][]string{
		"b__1": {"b", "a"},
		"d__1": {"d", "c"},
	}, l1.Groups)

	cluster, _ := l1.Graph.Node("b__1")
	assert.True(t, cluster.Presence.ValueAt(0))
	assert.True(t, cluster.Presence.ValueAt(5))
	assert.True(t, cluster.Presence.ValueAt(10))
	assert.Equal(t, dygraph.Point{X: 7}, cluster.Position.ValueAt(3), "position comes from the leader")

	require.Equal(t, 1, l1.Graph.EdgeCount(), "reverse finer edges share one cluster edge")
	assert.Equal(t, 10.0, l1.WeightBetween("b__1", "d__1"))
	assert.Equal(t, 10.0, l1.WeightBetween("d__1", "b__1"))
	e := l1.Graph.Edges()[0]
	assert.True(t, e.Presence.ValueAt(1))
	assert.False(t, e.Presence.ValueAt(4))
	assert.True(t, e.Presence.ValueAt(6))
}

func TestSolarMergerRoles(t *testing.T) {
	g := buildGraph(t, []string{"s", "p1", "p2", "m1", "z"}, []testEdge{
		{from: "s", to: "p1"},
		{from: "s", to: "p2"},
		{from: "p1", to: "m1"},
		{from: "m1", to: "z"},
	})
	s, _ := g.Node("s")
	s.Meta[dygraph.MetaWeight] = 10.0

	c := New(Options{MinNodes: 2, Policy: SolarMerger{}})
	h, err := c.Run(context.Background(), g)
	require.NoError(t, err)
	l1 := h.Coarsest()

	assert.Equal(t, []string{"s", "p1", "p2", "m1"}, l1.Groups["s__1"])
	assert.Equal(t, []string{"z"}, l1.Groups["z__1"])
	assert.Equal(t, map[string]Role{
		"s":  RoleSun,
		"p1": RolePlanet,
		"p2": RolePlanet,
		"m1": RoleMoon,
		"z":  RoleSun,
	}, l1.Roles)
	assert.Equal(t, 13.0, l1.NodeWeight["s__1"])
	assert.Equal(t, MassSolar, c.opts.Mass)

	leader, err := l1.Leader("s__1")
	require.NoError(t, err)
	assert.Equal(t, "s", leader)
	cid, err := l1.ClusterOf("m1")
	require.NoError(t, err)
	assert.Equal(t, "s__1", cid)
}

func TestOrderIgnoresClusterEdgeDirection(t *testing.T) {
	level := func(from, to string) *Level {
		g := dygraph.New(nil)
		for _, id := range []string{"x__1", "y__1", "z__1"} {
			require.NoError(t, g.AddNode(dygraph.NewNode(id)))
		}
		require.NoError(t, g.AddEdge(dygraph.NewEdge(from, to)))
		return &Level{
			Index:      1,
			Graph:      g,
			NodeWeight: map[string]float64{"x__1": 1, "y__1": 1, "z__1": 1},
			EdgeWeight: map[EdgeKey]float64{{from, to}: 5},
		}
	}

	want := []string{"x__1", "y__1", "z__1"}
	assert.Equal(t, want, order(level("x__1", "y__1")))
	assert.Equal(t, want, order(level("y__1", "x__1")))
}

func TestNoProgressStops(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d", "e", "f", "g"}, nil)

	c := New(Options{MinNodes: 2})
	h, err := c.Run(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, 1, h.Depth(), "the non-shrinking level is discarded")
	assert.Equal(t, StopNoProgress, c.StopReason())

	ok, err := c.Step()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMaxLevels(t *testing.T) {
	var ids []string
	for i := range 16 {
		ids = append(ids, fmt.Sprintf("v%02d", i))
	}
	c := New(Options{MinNodes: 1, MaxLevels: 1, Policy: Walshaw{}})
	h, err := c.Run(context.Background(), buildGraph(t, ids, path(ids...)))
	require.NoError(t, err)
	assert.Equal(t, 2, h.Depth())
	assert.Equal(t, StopMaxLevels, c.StopReason())
}

func TestGroupMembersAcrossLevels(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	h, err := New(Options{MinNodes: 1}).Run(context.Background(), buildGraph(t, ids, path(ids...)))
	require.NoError(t, err)
	require.Equal(t, 1, h.Coarsest().Graph.NodeCount())

	top := h.Coarsest().Graph.NodeIDs()[0]
	members, err := h.GroupMembers(top)
	require.NoError(t, err)
	slices.Sort(members)
	assert.Equal(t, ids, members)

	members, err = h.GroupMembers("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, members)

	_, err = h.GroupMembers("nope__4")
	assert.True(t, errs.Is(err, errs.ErrCodeMissingMapping))

	_, err = h.Finest().Members("a")
	assert.True(t, errs.Is(err, errs.ErrCodeMissingMapping))
}

func TestPreprocessContract(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, path("a", "b"))

	c := New(Options{})
	_, err := c.Step()
	assert.True(t, errs.Is(err, errs.ErrCodeInternal))

	require.NoError(t, c.Preprocess(g))
	assert.Equal(t, StateRunning, c.State())
	assert.True(t, errs.Is(c.Preprocess(g), errs.ErrCodeInternal))

	bad := buildGraph(t, []string{"x__3"}, nil)
	err = New(Options{}).Preprocess(bad)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidNodeID))
}

func TestInputNotMutated(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	g := buildGraph(t, ids, path(ids...))

	_, err := New(Options{MinNodes: 1}).Run(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, ids, g.NodeIDs())
	assert.Equal(t, 5, g.EdgeCount())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Run(ctx, buildGraph(t, []string{"a"}, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOptions(map[string]any{
		"min_nodes":  int64(3),
		"max_levels": 2.0,
		"policy":     "solar_merger",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, o.MinNodes)
	assert.Equal(t, 2, o.MaxLevels)
	assert.Equal(t, SolarMerger{}, o.Policy)
	o.SetDefaults()
	assert.Equal(t, MassSolar, o.Mass)

	o, err = ParseOptions(map[string]any{"min_nodes": "7", "mass": "count"})
	require.NoError(t, err)
	assert.Equal(t, 7, o.MinNodes)
	assert.Equal(t, MassCount, o.Mass)

	for name, m := range map[string]map[string]any{
		"fraction":    {"min_nodes": 2.5},
		"policy":      {"policy": "nope"},
		"unknown key": {"bogus": 1},
		"mass":        {"mass": "heavy"},
		"negative":    {"max_levels": -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOptions(m)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "sun", RoleSun.String())
	assert.Equal(t, "moon", RoleMoon.String())
	assert.Equal(t, "unassigned", RoleUnassigned.String())
}
