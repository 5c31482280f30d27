package coarsen

import (
	"cmp"
	"context"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// DefaultMinNodes is the node count at or below which coarsening stops.
const DefaultMinNodes = 5

// State is the coarsener's lifecycle state.
type State uint8

const (
	// StateUninitialized: Preprocess has not run yet.
	StateUninitialized State = iota
	// StateRunning: level 0 exists and Step may add levels.
	StateRunning
	// StateStopped: a stop condition held; the hierarchy is final.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "uninitialized"
}

// StopReason records why a run ended.
type StopReason uint8

const (
	// StopNone: still running.
	StopNone StopReason = iota
	// StopMinNodes: the coarsest level is small enough.
	StopMinNodes
	// StopMaxLevels: the configured level budget is used up.
	StopMaxLevels
	// StopNoProgress: the last computed level did not shrink the graph and
	// was discarded.
	StopNoProgress
)

func (r StopReason) String() string {
	switch r {
	case StopMinNodes:
		return "min_nodes"
	case StopMaxLevels:
		return "max_levels"
	case StopNoProgress:
		return "no_progress"
	}
	return "none"
}

// Options configures a Coarsener. The zero value coarsens with
// [IndependentSet] down to [DefaultMinNodes] nodes.
type Options struct {
	// MinNodes stops coarsening once a level has at most this many nodes.
	MinNodes int
	// MaxLevels bounds the number of levels above level 0. Zero means no
	// bound.
	MaxLevels int
	// Policy selects cluster members.
	Policy Policy
	// Mass names the own-cluster mass used by barycentric placement:
	// "count" or "solar". Empty picks "solar" for [SolarMerger] and "count"
	// otherwise.
	Mass string
	// Logger receives per-level debug output.
	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.MinNodes <= 0 {
		o.MinNodes = DefaultMinNodes
	}
	if o.Policy == nil {
		o.Policy = IndependentSet{}
	}
	if o.Mass == "" {
		o.Mass = MassCount
		if _, ok := o.Policy.(SolarMerger); ok {
			o.Mass = MassSolar
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Coarsener builds a [Hierarchy] one level at a time. It moves from
// StateUninitialized through Preprocess to StateRunning, and Step moves it
// to StateStopped once a stop condition holds.
//
// A Coarsener is single use and not safe for concurrent use.
type Coarsener struct {
	opts   Options
	state  State
	reason StopReason
	h      *Hierarchy
}

// New returns an uninitialized coarsener.
func New(opts Options) *Coarsener {
	opts.SetDefaults()
	return &Coarsener{opts: opts}
}

// State returns the current lifecycle state.
func (c *Coarsener) State() State { return c.state }

// StopReason returns why the coarsener stopped, or StopNone.
func (c *Coarsener) StopReason() StopReason { return c.reason }

// Hierarchy returns the levels accepted so far, or nil before Preprocess.
func (c *Coarsener) Hierarchy() *Hierarchy { return c.h }

// Preprocess installs a copy of g as level 0. Node ids must not use the
// reserved "__<digits>" suffix. g itself is never modified.
func (c *Coarsener) Preprocess(g *dygraph.Graph) error {
	if c.state != StateUninitialized {
		return errs.New(errs.ErrCodeInternal, "preprocess called in state %s", c.state)
	}
	for _, id := range g.NodeIDs() {
		if err := errs.ValidateNodeID(id); err != nil {
			return err
		}
	}

	root := &Level{
		Graph:      g.Clone(),
		NodeWeight: make(map[string]float64, g.NodeCount()),
		EdgeWeight: make(map[EdgeKey]float64, g.EdgeCount()),
	}
	for _, n := range root.Graph.Nodes() {
		root.NodeWeight[n.ID] = n.Weight()
	}
	for _, e := range root.Graph.Edges() {
		root.EdgeWeight[EdgeKey{e.From, e.To}] = e.Weight()
	}
	c.h = newHierarchy(root)
	c.state = StateRunning
	return nil
}

// Step computes the next level. It reports whether a level was accepted;
// false means the coarsener has stopped and StopReason says why.
func (c *Coarsener) Step() (bool, error) {
	switch c.state {
	case StateUninitialized:
		return false, errs.New(errs.ErrCodeInternal, "step called before preprocess")
	case StateStopped:
		return false, nil
	}

	prev := c.h.Coarsest()
	if prev.Graph.NodeCount() <= c.opts.MinNodes {
		c.stop(StopMinNodes)
		return false, nil
	}
	if c.opts.MaxLevels > 0 && prev.Index >= c.opts.MaxLevels {
		c.stop(StopMaxLevels)
		return false, nil
	}

	next, err := c.buildLevel(prev)
	if err != nil {
		return false, err
	}
	if next.Graph.NodeCount() >= prev.Graph.NodeCount() {
		c.stop(StopNoProgress)
		return false, nil
	}

	c.h.accept(next)
	c.opts.Logger.Debug("coarsened level",
		"level", next.Index,
		"nodes", next.Graph.NodeCount(),
		"edges", next.Graph.EdgeCount(),
		"policy", c.opts.Policy.Name())
	return true, nil
}

// Run preprocesses g and steps until the coarsener stops or ctx is done.
func (c *Coarsener) Run(ctx context.Context, g *dygraph.Graph) (*Hierarchy, error) {
	if err := c.Preprocess(g); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := c.Step()
		if err != nil {
			return nil, err
		}
		if !ok {
			return c.h, nil
		}
	}
}

func (c *Coarsener) stop(r StopReason) {
	c.state = StateStopped
	c.reason = r
	c.opts.Logger.Debug("coarsening stopped", "reason", r, "levels", c.h.Depth())
}

// order sorts the ids of l by own weight plus outgoing edge weight,
// heaviest first, ties by id. Cluster edges carry no meaningful direction,
// so above level 0 incoming edges count too.
func order(l *Level) []string {
	key := make(map[string]float64, l.Graph.NodeCount())
	for _, id := range l.Graph.NodeIDs() {
		k := l.NodeWeight[id]
		for _, to := range l.Graph.Successors(id) {
			k += l.EdgeWeight[EdgeKey{id, to}]
		}
		if l.Index > 0 {
			for _, from := range l.Graph.Predecessors(id) {
				k += l.EdgeWeight[EdgeKey{from, id}]
			}
		}
		key[id] = k
	}
	ids := l.Graph.NodeIDs()
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(key[b], key[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

func (c *Coarsener) buildLevel(prev *Level) (*Level, error) {
	k := prev.Index + 1
	next := &Level{
		Index:       k,
		Graph:       dygraph.New(maps.Clone(prev.Graph.Meta())),
		NodeWeight:  make(map[string]float64),
		EdgeWeight:  make(map[EdgeKey]float64),
		Association: make(map[string]string, prev.Graph.NodeCount()),
		Groups:      make(map[string][]string),
		Roles:       make(map[string]Role, prev.Graph.NodeCount()),
	}

	view := &View{level: prev, consumed: make(map[string]bool, prev.Graph.NodeCount())}
	var clusters []string
	for _, id := range order(prev) {
		if view.consumed[id] {
			continue
		}
		members := c.opts.Policy.Absorb(view, id)
		if len(members) == 0 || members[0].ID != id {
			return nil, errs.New(errs.ErrCodeInternal, "policy %s did not lead cluster with %q", c.opts.Policy.Name(), id)
		}
		cid := c.h.clusterID(id, k)
		ids := make([]string, len(members))
		for i, m := range members {
			if view.consumed[m.ID] {
				return nil, errs.New(errs.ErrCodeInternal, "policy %s absorbed consumed node %q", c.opts.Policy.Name(), m.ID)
			}
			view.consumed[m.ID] = true
			ids[i] = m.ID
			next.Association[m.ID] = cid
			next.Roles[m.ID] = m.Role
		}
		next.Groups[cid] = ids
		clusters = append(clusters, cid)
	}

	for _, cid := range clusters {
		if err := addCluster(prev, next, cid); err != nil {
			return nil, err
		}
	}
	if err := addEdges(prev, next); err != nil {
		return nil, err
	}
	return next, nil
}

// addCluster creates the node for cid: presence is the union of the
// members' presence, position, label and size come from the leader, and the
// weight is the members' total.
func addCluster(prev, next *Level, cid string) error {
	members := next.Groups[cid]
	leader, ok := prev.Graph.Node(members[0])
	if !ok {
		return errs.New(errs.ErrCodeMissingMapping, "leader %q of %q not in level %d", members[0], cid, prev.Index)
	}

	presences := make([]*temporal.Evolution[bool], 0, len(members))
	weight := 0.0
	for _, m := range members {
		n, ok := prev.Graph.Node(m)
		if !ok {
			return errs.New(errs.ErrCodeMissingMapping, "member %q of %q not in level %d", m, cid, prev.Index)
		}
		presences = append(presences, n.Presence)
		weight += prev.NodeWeight[m]
	}
	presence, err := unionPresence(presences)
	if err != nil {
		return errs.Wrap(errs.GetCode(err), err, "cluster %q", cid)
	}

	node := dygraph.Node{
		ID:       cid,
		Presence: presence,
		Position: leader.Position.Clone(),
		Label:    leader.Label.Clone(),
		Size:     leader.Size.Clone(),
		Meta:     maps.Clone(leader.Meta),
	}
	if node.Meta == nil {
		node.Meta = dygraph.Metadata{}
	}
	node.Meta[dygraph.MetaWeight] = weight
	next.NodeWeight[cid] = weight
	return next.Graph.AddNode(node)
}

// addEdges maps every finer edge through the association and accumulates
// its weight on the cluster pair. Edges inside a cluster are dropped.
func addEdges(prev, next *Level) error {
	type pending struct {
		key       EdgeKey
		presences []*temporal.Evolution[bool]
	}
	var pairs []*pending
	byPair := make(map[EdgeKey]*pending)

	for _, e := range prev.Graph.Edges() {
		a, okA := next.Association[e.From]
		b, okB := next.Association[e.To]
		if !okA || !okB {
			return errs.New(errs.ErrCodeMissingMapping, "edge %s->%s has an unmapped endpoint at level %d", e.From, e.To, next.Index)
		}
		if a == b {
			continue
		}
		p, ok := byPair[EdgeKey{a, b}]
		if !ok {
			p, ok = byPair[EdgeKey{b, a}]
		}
		if !ok {
			p = &pending{key: EdgeKey{a, b}}
			byPair[p.key] = p
			pairs = append(pairs, p)
		}
		p.presences = append(p.presences, e.Presence)
		next.EdgeWeight[p.key] += prev.EdgeWeight[EdgeKey{e.From, e.To}]
	}

	for _, p := range pairs {
		presence, err := unionPresence(p.presences)
		if err != nil {
			return errs.Wrap(errs.GetCode(err), err, "edge %s->%s", p.key.From, p.key.To)
		}
		edge := dygraph.Edge{
			From:     p.key.From,
			To:       p.key.To,
			Presence: presence,
			Meta:     dygraph.Metadata{dygraph.MetaWeight: next.EdgeWeight[p.key]},
		}
		if err := next.Graph.AddEdge(edge); err != nil {
			return err
		}
	}
	return nil
}

func unionPresence(presences []*temporal.Evolution[bool]) (*temporal.Evolution[bool], error) {
	ivs, err := temporal.Union(true, presences...)
	if err != nil {
		return nil, err
	}
	out := temporal.NewEvolution(false)
	for _, iv := range ivs {
		if err := out.Insert(temporal.Const(iv, true)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
