package multilevel

import (
	"math"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/solver"
)

// Cooling maps a refinement step to a multiplicative decay factor.
type Cooling interface {
	Factor(step int) float64
}

// Cooling names accepted by [CoolingByName].
const (
	CoolingIdentity = "identity"
	CoolingLinear   = "linear"
)

// Identity keeps every parameter at its initial value.
type Identity struct{}

func (Identity) Factor(int) float64 { return 1 }

// Linear decays by Slope per step and never drops below Floor.
type Linear struct {
	Slope float64
	Floor float64
}

// DefaultLinear returns a 10% per level decay bottoming out at 20%.
func DefaultLinear() Linear { return Linear{Slope: 0.1, Floor: 0.2} }

func (l Linear) Factor(step int) float64 {
	return max(l.Floor, 1-l.Slope*float64(step))
}

// CoolingByName builds a cooling strategy. Slope and floor only apply to
// the linear strategy.
func CoolingByName(name string, slope, floor float64) (Cooling, error) {
	switch name {
	case CoolingIdentity:
		return Identity{}, nil
	case CoolingLinear, "":
		if slope < 0 || floor < 0 || floor > 1 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "linear cooling needs slope >= 0 and floor in [0, 1], got %v and %v", slope, floor)
		}
		return Linear{Slope: slope, Floor: floor}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown cooling %q", name)
}

// Parameter is one cooled value. Its magnitude never increases, whatever
// the strategy returns.
type Parameter struct {
	initial float64
	cooling Cooling
	step    int
	current float64
}

// NewParameter starts a parameter at initial.
func NewParameter(initial float64, c Cooling) *Parameter {
	if c == nil {
		c = Identity{}
	}
	return &Parameter{initial: initial, cooling: c, current: initial}
}

// Value returns the current value.
func (p *Parameter) Value() float64 { return p.current }

// Step advances one refinement step and returns the new value.
func (p *Parameter) Step() float64 {
	p.step++
	v := p.initial * p.cooling.Factor(p.step)
	if math.Abs(v) < math.Abs(p.current) {
		p.current = v
	}
	return p.current
}

// Schedule cools every tracked solver parameter and the iteration budget
// together.
type Schedule struct {
	distance    *Parameter
	movement    *Parameter
	contraction *Parameter
	expansion   *Parameter
	iterations  *Parameter
}

// NewSchedule tracks p and iterations under the same cooling strategy.
func NewSchedule(p solver.Params, iterations int, c Cooling) *Schedule {
	return &Schedule{
		distance:    NewParameter(p.DesiredDistance, c),
		movement:    NewParameter(p.MaxMovement, c),
		contraction: NewParameter(p.ContractionThreshold, c),
		expansion:   NewParameter(p.ExpansionThreshold, c),
		iterations:  NewParameter(float64(iterations), c),
	}
}

// Step applies one cooling step to every parameter.
func (s *Schedule) Step() {
	for _, p := range []*Parameter{s.distance, s.movement, s.contraction, s.expansion, s.iterations} {
		p.Step()
	}
}

// Params returns the current solver parameters.
func (s *Schedule) Params() solver.Params {
	return solver.Params{
		DesiredDistance:      s.distance.Value(),
		MaxMovement:          s.movement.Value(),
		ContractionThreshold: s.contraction.Value(),
		ExpansionThreshold:   s.expansion.Value(),
	}
}

// Iterations returns the current budget, rounded and at least 1.
func (s *Schedule) Iterations() int {
	return max(1, int(math.Round(s.iterations.Value())))
}
