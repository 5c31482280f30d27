package discretise

import (
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// Extension is the fraction of its own width by which the first and last
// slice are widened outwards.
const Extension = 0.2

// WithSnapTimes slices g around the given snapshot times, which must be
// finite and strictly increasing.
//
// With radius <= 0 each slice reaches halfway to its neighbours and the
// first and last slices are unbounded. With radius > 0 each slice is
// [t-radius, t+radius), the last one closed, so a radius of half the
// spacing tiles the times exactly. Slices that would overlap are rejected
// with INVALID_INTERVAL.
func WithSnapTimes(g *dygraph.Graph, times []float64, radius float64) (*dygraph.Graph, error) {
	ivs, err := SnapIntervals(times, radius)
	if err != nil {
		return nil, err
	}
	out, err := WithIntervals(g, ivs)
	if err != nil {
		return nil, err
	}
	out.Meta()[dygraph.MetaSnapshotTimes] = FormatTimes(times)
	return out, nil
}

// SnapIntervals derives the input intervals used by [WithSnapTimes].
func SnapIntervals(times []float64, radius float64) ([]temporal.Interval, error) {
	if err := errs.ValidateSnapTimes(times); err != nil {
		return nil, err
	}
	ivs := make([]temporal.Interval, len(times))
	for i, t := range times {
		if radius > 0 {
			ivs[i] = temporal.ClosedOpen(t-radius, t+radius)
			ivs[i].RightOpen = i+1 < len(times)
			continue
		}
		iv := temporal.ClosedOpen(math.Inf(-1), math.Inf(1))
		if i > 0 {
			iv.Left = (times[i-1] + t) / 2
		} else {
			iv.LeftOpen = true
		}
		if i+1 < len(times) {
			iv.Right = (t + times[i+1]) / 2
		}
		ivs[i] = iv
	}
	if radius > 0 {
		if err := temporal.ValidateIntervals(ivs); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInterval, err, "snap radius %v too large for the given times", radius)
		}
	}
	return ivs, nil
}

// WithIntervals returns a discrete copy of g with one slice per input
// interval. The intervals must be sorted and pairwise non-overlapping.
//
// Slice i spans from the midpoint between interval i-1 and i to the
// midpoint between interval i and i+1; the outer slices are widened by
// [Extension] of their own width. All slices are [l, r) except the last,
// which is closed.
//
// A node or edge is present in slice i when any of its presence-true
// intervals overlaps input interval i. Position, label and size become rect
// functions from the value at the input interval's left bound to the value
// at its right bound, so motion inside a slice is kept.
//
// The graph meta key snapshot_times lists the input interval centers.
func WithIntervals(g *dygraph.Graph, intervals []temporal.Interval) (*dygraph.Graph, error) {
	if err := temporal.ValidateIntervals(intervals); err != nil {
		return nil, err
	}
	cuts := OutputIntervals(intervals)

	centers := make([]float64, len(intervals))
	for i, iv := range intervals {
		centers[i] = iv.Center()
	}
	meta := maps.Clone(g.Meta())
	if meta == nil {
		meta = dygraph.Metadata{}
	}
	meta[dygraph.MetaSnapshotTimes] = FormatTimes(centers)
	out := dygraph.New(meta)

	for _, n := range g.Nodes() {
		dn := dygraph.Node{ID: n.ID, Meta: maps.Clone(n.Meta)}
		present, err := presenceSlices(n.Presence, intervals, cuts)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, "node %q", n.ID)
		}
		dn.Presence = present
		dn.Position = sampleSlices(n.Position, intervals, cuts)
		dn.Label = sampleSlices(n.Label, intervals, cuts)
		dn.Size = sampleSlices(n.Size, intervals, cuts)
		if err := out.AddNode(dn); err != nil {
			return nil, err
		}
	}

	for _, e := range g.Edges() {
		present, err := presenceSlices(e.Presence, intervals, cuts)
		if err != nil {
			return nil, errs.Wrap(errs.GetCode(err), err, "edge %s->%s", e.From, e.To)
		}
		de := dygraph.Edge{From: e.From, To: e.To, Presence: present, Meta: maps.Clone(e.Meta)}
		if err := out.AddEdge(de); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// OutputIntervals computes the slice bounds for sorted, non-overlapping
// input intervals.
func OutputIntervals(intervals []temporal.Interval) []temporal.Interval {
	out := make([]temporal.Interval, len(intervals))
	last := len(intervals) - 1
	for i, iv := range intervals {
		var left, right float64
		if i == 0 {
			left = iv.Left - extension(iv)
		} else {
			left = midpoint(intervals[i-1].Right, iv.Left)
		}
		if i == last {
			right = iv.Right + extension(iv)
		} else {
			right = midpoint(iv.Right, intervals[i+1].Left)
		}
		out[i] = temporal.Interval{
			Left:      left,
			Right:     right,
			LeftOpen:  math.IsInf(left, -1),
			RightOpen: i != last || math.IsInf(right, 1),
		}
	}
	return out
}

func extension(iv temporal.Interval) float64 {
	if !iv.IsBounded() {
		return 0
	}
	return Extension * iv.Width()
}

func midpoint(a, b float64) float64 {
	switch {
	case math.IsInf(a, 0):
		return b
	case math.IsInf(b, 0):
		return a
	}
	return (a + b) / 2
}

func presenceSlices(presence *temporal.Evolution[bool], intervals, cuts []temporal.Interval) (*temporal.Evolution[bool], error) {
	on, err := temporal.IntervalsWithValue(presence, true)
	if err != nil {
		return nil, err
	}
	out := temporal.NewEvolution(false)
	for i, iv := range intervals {
		for _, p := range on {
			if p.OverlapsWith(iv) {
				out.MustInsert(temporal.Const(cuts[i], true))
				break
			}
		}
	}
	return out, nil
}

func sampleSlices[V comparable](e *temporal.Evolution[V], intervals, cuts []temporal.Interval) *temporal.Evolution[V] {
	out := temporal.NewEvolution(e.Default())
	for i, iv := range intervals {
		if !iv.IsBounded() {
			out.MustInsert(temporal.Const(cuts[i], e.ValueAt(iv.Center())))
			continue
		}
		from, to := e.ValueAt(iv.Left), e.ValueAt(iv.Right)
		if from == to {
			out.MustInsert(temporal.Const(cuts[i], from))
			continue
		}
		out.MustInsert(temporal.Rect(cuts[i], from, to, temporal.Linear))
	}
	return out
}

// FormatTimes joins times with commas in their shortest exact form.
func FormatTimes(times []float64) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// SnapshotTimes parses the snapshot_times meta of a discretised graph.
func SnapshotTimes(g *dygraph.Graph) ([]float64, error) {
	raw := g.Meta().Text(dygraph.MetaSnapshotTimes)
	if raw == "" {
		return nil, errs.New(errs.ErrCodeNotFound, "graph has no %s attribute", dygraph.MetaSnapshotTimes)
	}
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		t, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "bad snapshot time %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}
