package coarsen

import (
	"slices"
	"strconv"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// EdgeKey identifies a directed edge of a level graph.
type EdgeKey struct {
	From string
	To   string
}

// Level is one accepted step of the hierarchy. Level 0 is the input graph;
// level k > 0 clusters the nodes of level k-1.
//
// Association, Groups and Roles describe how the finer level k-1 folds into
// this one and are nil on level 0. The coarsener never changes a Level
// once accepted; later the multilevel driver writes node positions into the
// level it refines.
type Level struct {
	Index      int
	Graph      *dygraph.Graph
	NodeWeight map[string]float64
	EdgeWeight map[EdgeKey]float64

	// Association maps every finer node id to the id of its cluster here.
	Association map[string]string
	// Groups maps every cluster id to its finer member ids, leader first.
	Groups map[string][]string
	// Roles records the solar status assigned to finer node ids.
	Roles map[string]Role
}

// WeightBetween returns the weight of the edge joining a and b in either
// direction, or 0 when they are not adjacent.
func (l *Level) WeightBetween(a, b string) float64 {
	if w, ok := l.EdgeWeight[EdgeKey{a, b}]; ok {
		return w
	}
	return l.EdgeWeight[EdgeKey{b, a}]
}

// Members returns the finer ids grouped into cluster id, leader first.
func (l *Level) Members(id string) ([]string, error) {
	m, ok := l.Groups[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingMapping, "level %d has no group for cluster %q", l.Index, id)
	}
	return m, nil
}

// Leader returns the finer id that represents cluster id.
func (l *Level) Leader(id string) (string, error) {
	m, err := l.Members(id)
	if err != nil {
		return "", err
	}
	return m[0], nil
}

// ClusterOf returns the id of the cluster that absorbed the finer id.
func (l *Level) ClusterOf(fineID string) (string, error) {
	c, ok := l.Association[fineID]
	if !ok {
		return "", errs.New(errs.ErrCodeMissingMapping, "level %d has no association for node %q", l.Index, fineID)
	}
	return c, nil
}

// Hierarchy is the arena of accepted levels, indexed by depth. The parent of
// level k, the level it was derived from, is level k-1.
type Hierarchy struct {
	levels []*Level
	master map[string][]string // any level's id -> original ids
	base   map[string]string   // any level's id -> original id of its leader chain
}

func newHierarchy(root *Level) *Hierarchy {
	h := &Hierarchy{
		master: make(map[string][]string, root.Graph.NodeCount()),
		base:   make(map[string]string, root.Graph.NodeCount()),
	}
	for _, id := range root.Graph.NodeIDs() {
		h.master[id] = []string{id}
		h.base[id] = id
	}
	h.levels = append(h.levels, root)
	return h
}

// accept appends l and folds its groups into the master map.
func (h *Hierarchy) accept(l *Level) {
	for cid, members := range l.Groups {
		var originals []string
		for _, m := range members {
			originals = append(originals, h.master[m]...)
		}
		h.master[cid] = originals
		h.base[cid] = h.base[members[0]]
	}
	h.levels = append(h.levels, l)
}

func (h *Hierarchy) clusterID(leader string, level int) string {
	return h.base[leader] + "__" + strconv.Itoa(level)
}

// Depth returns the number of accepted levels including level 0.
func (h *Hierarchy) Depth() int { return len(h.levels) }

// Levels returns the accepted levels, finest first.
func (h *Hierarchy) Levels() []*Level { return slices.Clone(h.levels) }

// Level returns the level at depth k.
func (h *Hierarchy) Level(k int) (*Level, bool) {
	if k < 0 || k >= len(h.levels) {
		return nil, false
	}
	return h.levels[k], true
}

// Parent returns the finer level that level k was derived from.
func (h *Hierarchy) Parent(k int) (*Level, bool) { return h.Level(k - 1) }

// Finest returns level 0.
func (h *Hierarchy) Finest() *Level { return h.levels[0] }

// Coarsest returns the last accepted level.
func (h *Hierarchy) Coarsest() *Level { return h.levels[len(h.levels)-1] }

// GroupMembers returns the original node ids represented by id, which may
// belong to any level. It fails with MISSING_MAPPING for unknown ids.
func (h *Hierarchy) GroupMembers(id string) ([]string, error) {
	m, ok := h.master[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingMapping, "no group recorded for %q", id)
	}
	return slices.Clone(m), nil
}
