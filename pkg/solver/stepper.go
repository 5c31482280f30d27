package solver

import (
	"context"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// Stepper is the bundled solver. It lays out one frame per graph
// breakpoint, or a single frame at time 0 for a graph without any, and
// moves nodes by the summed kernel displacement each iteration. Results
// are written back as piecewise-linear trajectories through the frames,
// held constant before the first and after the last frame.
type Stepper struct {
	Logger *log.Logger
}

// NewStepper returns a stepper that logs to logger, or nowhere when nil.
func NewStepper(logger *log.Logger) *Stepper {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Stepper{Logger: logger}
}

func (s *Stepper) Solve(ctx context.Context, g *dygraph.Graph, forces []Force, constraints []Constraint, post []PostProcessor, iterations int) error {
	if iterations < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "iterations must not be negative, got %d", iterations)
	}
	times := g.Breakpoints()
	if len(times) == 0 {
		times = []float64{0}
	}

	frames := make([]*Frame, len(times))
	for i, t := range times {
		frames[i] = newFrame(g, t)
	}

	for it := range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, f := range frames {
			if err := step(f, forces, constraints, post); err != nil {
				return errs.Wrap(errs.ErrCodeSolverFailure, err, "iteration %d at t=%v", it, f.Time)
			}
		}
	}

	writeBack(g, times, frames)
	if s.Logger != nil {
		s.Logger.Debug("solved", "nodes", g.NodeCount(), "frames", len(frames), "iterations", iterations)
	}
	return nil
}

func step(f *Frame, forces []Force, constraints []Constraint, post []PostProcessor) error {
	d := make(Displacement, len(f.IDs))
	for _, force := range forces {
		force.Apply(f, d)
	}
	for _, c := range constraints {
		c.Constrain(f, d)
	}
	for _, id := range f.IDs {
		p := f.Pos[id].Add(d[id])
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return errs.New(errs.ErrCodeSolverFailure, "node %q diverged", id)
		}
		f.Pos[id] = p
	}
	for _, pp := range post {
		pp.Process(f)
	}
	return nil
}

// writeBack replaces every node's trajectory by one through its frame
// positions. A node absent from a frame keeps its previous value there.
func writeBack(g *dygraph.Graph, times []float64, frames []*Frame) {
	for _, n := range g.Nodes() {
		old := n.Position
		sample := make(map[float64]dygraph.Point, len(times))
		for i, t := range times {
			p, ok := frames[i].Pos[n.ID]
			if !ok {
				p = old.ValueAt(t)
			}
			sample[t] = p
		}
		tr := temporal.Resample(old.Default(), times, func(t float64) dygraph.Point { return sample[t] })
		first, last := times[0], times[len(times)-1]
		tr.MustInsert(
			temporal.Const(temporal.Open(math.Inf(-1), first), sample[first]),
			temporal.Const(temporal.Open(last, math.Inf(1)), sample[last]),
		)
		n.Position = tr
	}
}
