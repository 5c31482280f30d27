package solver

import (
	"context"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
)

// Solver lays out one hierarchy level. It runs for the given number of
// iterations and writes the result into the Position evolution of every
// node of g; nothing else about g may change.
type Solver interface {
	Solve(ctx context.Context, g *dygraph.Graph, forces []Force, constraints []Constraint, post []PostProcessor, iterations int) error
}

// Func adapts a plain function to [Solver].
type Func func(ctx context.Context, g *dygraph.Graph, forces []Force, constraints []Constraint, post []PostProcessor, iterations int) error

func (f Func) Solve(ctx context.Context, g *dygraph.Graph, forces []Force, constraints []Constraint, post []PostProcessor, iterations int) error {
	return f(ctx, g, forces, constraints, post, iterations)
}

// Params are the tunable layout parameters the multilevel driver cools
// between levels.
type Params struct {
	// DesiredDistance is the ideal edge length.
	DesiredDistance float64
	// MaxMovement caps a node's displacement per iteration.
	MaxMovement float64
	// ContractionThreshold is the multiple of DesiredDistance above which
	// edges attract their endpoints.
	ContractionThreshold float64
	// ExpansionThreshold is the multiple of DesiredDistance below which
	// nodes repel each other.
	ExpansionThreshold float64
}

// DefaultParams returns the parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		DesiredDistance:      50,
		MaxMovement:          10,
		ContractionThreshold: 0,
		ExpansionThreshold:   3,
	}
}

// Set bundles the kernels handed to a solver.
type Set struct {
	Forces      []Force
	Constraints []Constraint
	Post        []PostProcessor
}

// DefaultSet builds the bundled kernels for p: repulsion, edge attraction
// and a weak anchor to the placed trajectory, limited movement and
// re-centering after every iteration.
func DefaultSet(p Params) Set {
	return Set{
		Forces: []Force{
			Repulsion{Distance: p.DesiredDistance, Threshold: p.ExpansionThreshold},
			Attraction{Distance: p.DesiredDistance, Threshold: p.ContractionThreshold},
			Anchor{Strength: 0.05},
		},
		Constraints: []Constraint{MovementLimit{Max: p.MaxMovement}},
		Post:        []PostProcessor{Centering{}},
	}
}
