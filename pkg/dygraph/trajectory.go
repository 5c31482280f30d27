package dygraph

import (
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// Trajectory is the position history of a node.
type Trajectory = temporal.Evolution[Point]

// Shift returns a copy of tr translated by offset everywhere, including the
// default position.
func Shift(tr *Trajectory, offset Point) *Trajectory {
	return tr.Map(func(p Point) Point { return p.Add(offset) })
}

// WeightedMean returns the weighted average of several trajectories. The
// result is piecewise linear through the union of the inputs' breakpoints,
// and its default is the weighted average of the defaults. Weights that sum
// to zero fall back to a plain mean.
func WeightedMean(trs []*Trajectory, weights []float64) *Trajectory {
	if len(trs) == 0 {
		return temporal.NewEvolution(Point{})
	}
	total := 0.0
	for i := range trs {
		total += weightAt(weights, i)
	}
	w := func(i int) float64 {
		if total <= 0 {
			return 1 / float64(len(trs))
		}
		return weightAt(weights, i) / total
	}

	mean := func(value func(*Trajectory) Point) Point {
		var p Point
		for i, tr := range trs {
			p = p.Add(value(tr).Scale(w(i)))
		}
		return p
	}

	def := mean(func(tr *Trajectory) Point { return tr.Default() })
	times := temporal.Breakpoints(trs...)
	return temporal.Resample(def, times, func(t float64) Point {
		return mean(func(tr *Trajectory) Point { return tr.ValueAt(t) })
	})
}

func weightAt(weights []float64, i int) float64 {
	if i < len(weights) {
		return max(weights[i], 0)
	}
	return 0
}
