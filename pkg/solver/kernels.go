package solver

import (
	"math"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
)

// minDistance keeps force magnitudes finite for coincident nodes.
const minDistance = 1e-3

// Force adds displacement for the nodes of a frame.
type Force interface {
	Name() string
	Apply(f *Frame, d Displacement)
}

// Constraint restricts the accumulated displacement before it is applied.
type Constraint interface {
	Name() string
	Constrain(f *Frame, d Displacement)
}

// PostProcessor adjusts positions after every iteration.
type PostProcessor interface {
	Name() string
	Process(f *Frame)
}

// Repulsion pushes every pair of nodes apart with magnitude k²/dist, where
// k is Distance. Pairs farther apart than Threshold·k are ignored when
// Threshold is positive.
type Repulsion struct {
	Distance  float64
	Threshold float64
}

func (Repulsion) Name() string { return "repulsion" }

func (r Repulsion) Apply(f *Frame, d Displacement) {
	k := r.Distance
	for i, u := range f.IDs {
		for j := i + 1; j < len(f.IDs); j++ {
			v := f.IDs[j]
			delta := f.Pos[u].Sub(f.Pos[v])
			dist := delta.Norm()
			if r.Threshold > 0 && dist > r.Threshold*k {
				continue
			}
			if dist < minDistance {
				// Separate coincident nodes along a direction fixed by
				// their order in the frame.
				delta = dygraph.Polar(1, float64(i+j))
				dist = minDistance
			}
			push := delta.Scale(k * k / (dist * delta.Norm()))
			d.Add(u, push)
			d.Add(v, push.Scale(-1))
		}
	}
}

// Attraction pulls the endpoints of every edge together with magnitude
// weight·dist²/k. Edges shorter than Threshold·k are left alone.
type Attraction struct {
	Distance  float64
	Threshold float64
}

func (Attraction) Name() string { return "attraction" }

func (a Attraction) Apply(f *Frame, d Displacement) {
	k := a.Distance
	if k <= 0 {
		return
	}
	for _, e := range f.Edges {
		pu, okU := f.Pos[e.From]
		pv, okV := f.Pos[e.To]
		if !okU || !okV {
			continue
		}
		delta := pv.Sub(pu)
		dist := delta.Norm()
		if dist < minDistance || dist < a.Threshold*k {
			continue
		}
		pull := delta.Scale(e.Weight() * dist / k)
		d.Add(e.From, pull)
		d.Add(e.To, pull.Scale(-1))
	}
}

// Anchor pulls every node back towards the position its frame started
// from, which keeps consecutive frames close to the placed trajectory.
type Anchor struct {
	Strength float64
}

func (Anchor) Name() string { return "anchor" }

func (a Anchor) Apply(f *Frame, d Displacement) {
	for _, id := range f.IDs {
		d.Add(id, f.Init[id].Sub(f.Pos[id]).Scale(a.Strength))
	}
}

// MovementLimit scales every displacement down to at most Max. A
// non-positive Max freezes all nodes.
type MovementLimit struct {
	Max float64
}

func (MovementLimit) Name() string { return "movement_limit" }

func (m MovementLimit) Constrain(_ *Frame, d Displacement) {
	for id, v := range d {
		n := v.Norm()
		switch {
		case m.Max <= 0:
			d[id] = dygraph.Point{}
		case n > m.Max:
			d[id] = v.Scale(m.Max / n)
		}
	}
}

// Centering translates the frame so the mean position is the origin.
type Centering struct{}

func (Centering) Name() string { return "centering" }

func (Centering) Process(f *Frame) {
	if len(f.IDs) == 0 {
		return
	}
	var sum dygraph.Point
	for _, id := range f.IDs {
		sum = sum.Add(f.Pos[id])
	}
	mean := sum.Scale(1 / float64(len(f.IDs)))
	if math.IsNaN(mean.X) || math.IsNaN(mean.Y) {
		return
	}
	for _, id := range f.IDs {
		f.Pos[id] = f.Pos[id].Sub(mean)
	}
}
