package multilevel

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dynalayout/pkg/coarsen"
	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/observability"
	"github.com/matzehuels/dynalayout/pkg/placement"
	"github.com/matzehuels/dynalayout/pkg/solver"
)

// DefaultIterations is the solver budget on the coarsest level.
const DefaultIterations = 50

// Initial selects how the coarsest level is seeded.
type Initial uint8

const (
	// InitialSolve runs the solver on the coarsest level as it is.
	InitialSolve Initial = iota
	// InitialRandom scatters the coarsest nodes uniformly before solving.
	InitialRandom
)

func (i Initial) String() string {
	if i == InitialRandom {
		return "random"
	}
	return "solve"
}

// Options configures [Run]. Zero fields take the documented defaults.
type Options struct {
	Coarsening coarsen.Options
	// Placement projects positions onto each finer level. Default:
	// barycentric placement with the coarsening's mass.
	Placement placement.Strategy
	// Solver lays out every level. Default: [solver.Stepper].
	Solver solver.Solver
	// Kernels builds the solver kernels from the cooled parameters.
	// Default: [solver.DefaultSet].
	Kernels func(solver.Params) solver.Set
	// Params are the uncooled solver parameters. Default:
	// [solver.DefaultParams] when DesiredDistance is zero.
	Params solver.Params
	// Iterations is the uncooled solver budget.
	Iterations int
	// Cooling decays Params and Iterations once per finer level. Default:
	// [DefaultLinear].
	Cooling Cooling
	Initial Initial
	// Seed seeds the random source when Rand is nil.
	Seed uint64
	Rand *rand.Rand
	// Logger receives per-level progress. Default: discard.
	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Coarsening.Logger == nil {
		o.Coarsening.Logger = o.Logger
	}
	o.Coarsening.SetDefaults()
	if o.Placement == nil {
		mass, err := placement.MassByName(o.Coarsening.Mass)
		if err != nil {
			mass = placement.CountMass{}
		}
		o.Placement = placement.Barycenter{Mass: mass, Distance: 1}
	}
	if o.Solver == nil {
		o.Solver = solver.NewStepper(o.Logger)
	}
	if o.Kernels == nil {
		o.Kernels = solver.DefaultSet
	}
	if o.Params.DesiredDistance == 0 {
		o.Params = solver.DefaultParams()
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Cooling == nil {
		o.Cooling = DefaultLinear()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
	}
}

// LevelStat summarizes the refinement of one level.
type LevelStat struct {
	Index      int
	Nodes      int
	Edges      int
	Iterations int
	Duration   time.Duration
}

// Result describes a finished run. The positions themselves are written
// to the input graph.
type Result struct {
	Hierarchy  *coarsen.Hierarchy
	StopReason coarsen.StopReason
	// Levels lists the solved levels from coarsest to finest.
	Levels   []LevelStat
	Duration time.Duration
}

// Run lays out g. It coarsens g into a hierarchy, seeds and solves the
// coarsest level, then walks back to level 0: place, cool, solve. Only
// when every level succeeded are the final trajectories copied into the
// Position evolutions of g; on error g is untouched.
func Run(ctx context.Context, g *dygraph.Graph, opts Options) (res *Result, err error) {
	opts.SetDefaults()
	hooks := observability.Layout()
	start := time.Now()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	defer func() {
		levels := 0
		if res != nil {
			levels = len(res.Levels)
		}
		hooks.OnLayoutComplete(ctx, levels, time.Since(start), err)
	}()

	c := coarsen.New(opts.Coarsening)
	h, err := c.Run(ctx, g)
	if err != nil {
		return nil, err
	}
	coarsest := h.Coarsest()
	hooks.OnCoarsenComplete(ctx, h.Depth(), coarsest.Graph.NodeCount(), time.Since(start))
	opts.Logger.Info("coarsened",
		"levels", h.Depth(),
		"coarsest_nodes", coarsest.Graph.NodeCount(),
		"stop", c.StopReason())

	r := &Result{Hierarchy: h, StopReason: c.StopReason()}
	schedule := NewSchedule(opts.Params, opts.Iterations, opts.Cooling)

	if opts.Initial == InitialRandom {
		scatter(coarsest.Graph, opts.Params.DesiredDistance*math.Sqrt(float64(coarsest.Graph.NodeCount())), opts.Rand)
	}
	if err := solveLevel(ctx, opts, r, coarsest, schedule); err != nil {
		return nil, err
	}

	levels := h.Levels()
	for k := len(levels) - 1; k >= 1; k-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fine, coarse := levels[k-1], levels[k]
		if err := opts.Placement.Place(fine, coarse, opts.Rand); err != nil {
			return nil, err
		}
		schedule.Step()
		if err := solveLevel(ctx, opts, r, fine, schedule); err != nil {
			return nil, err
		}
	}

	finest := h.Finest()
	for _, n := range g.Nodes() {
		laid, ok := finest.Graph.Node(n.ID)
		if !ok {
			return nil, errs.New(errs.ErrCodeMissingMapping, "node %q missing from level 0", n.ID)
		}
		n.Position = laid.Position.Clone()
	}

	r.Duration = time.Since(start)
	opts.Logger.Info("layout complete", "levels", len(r.Levels), "duration", r.Duration)
	return r, nil
}

func solveLevel(ctx context.Context, opts Options, r *Result, l *coarsen.Level, s *Schedule) error {
	start := time.Now()
	set := opts.Kernels(s.Params())
	iterations := s.Iterations()
	err := opts.Solver.Solve(ctx, l.Graph, set.Forces, set.Constraints, set.Post, iterations)
	d := time.Since(start)
	observability.Layout().OnLevelComplete(ctx, l.Index, l.Graph.NodeCount(), d, err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return errs.Wrap(errs.ErrCodeSolverFailure, err, "solve level %d", l.Index)
	}
	opts.Logger.Debug("solved level",
		"level", l.Index,
		"nodes", l.Graph.NodeCount(),
		"iterations", iterations,
		"distance", s.Params().DesiredDistance)
	r.Levels = append(r.Levels, LevelStat{
		Index:      l.Index,
		Nodes:      l.Graph.NodeCount(),
		Edges:      l.Graph.EdgeCount(),
		Iterations: iterations,
		Duration:   d,
	})
	return nil
}

// scatter replaces every trajectory with a fixed random point in
// [-extent, extent]².
func scatter(g *dygraph.Graph, extent float64, rng *rand.Rand) {
	for _, n := range g.Nodes() {
		n.Position.Reset(dygraph.Point{
			X: (rng.Float64()*2 - 1) * extent,
			Y: (rng.Float64()*2 - 1) * extent,
		})
	}
}
