package temporal

import (
	"math"
	"slices"
	"sort"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Evolution is the time history of one attribute: an ordered collection of
// non-overlapping functions plus a default used wherever no function is
// defined. ValueAt is therefore total.
//
// The zero value is an evolution whose default is V's zero value.
// Evolution is not safe for concurrent mutation.
type Evolution[V comparable] struct {
	def V
	fns []Function[V] // sorted by left bound, pairwise non-overlapping
}

// NewEvolution returns an empty evolution with the given default.
func NewEvolution[V comparable](def V) *Evolution[V] {
	return &Evolution[V]{def: def}
}

// Default returns the value used outside all defined intervals.
func (e *Evolution[V]) Default() V { return e.def }

// SetDefault replaces the default value without touching the functions.
func (e *Evolution[V]) SetDefault(v V) { e.def = v }

// Len returns the number of functions.
func (e *Evolution[V]) Len() int { return len(e.fns) }

// Functions returns a copy of the functions in left-bound order.
func (e *Evolution[V]) Functions() []Function[V] { return slices.Clone(e.fns) }

// Reset drops every function and installs a new default.
func (e *Evolution[V]) Reset(def V) {
	e.def = def
	e.fns = nil
}

// Clone returns an independent copy.
func (e *Evolution[V]) Clone() *Evolution[V] {
	return &Evolution[V]{def: e.def, fns: slices.Clone(e.fns)}
}

// CanInsert reports whether f could be inserted without a definition
// conflict. It returns the first conflicting function when there is one.
func (e *Evolution[V]) CanInsert(f Function[V]) (Function[V], bool) {
	i := e.searchLeft(f.Interval)
	for _, j := range []int{i - 1, i} {
		if j >= 0 && j < len(e.fns) && e.fns[j].Interval.OverlapsWith(f.Interval) {
			return e.fns[j], false
		}
	}
	return Function[V]{}, true
}

// Insert adds f. It fails with DEFINITION_CONFLICT when f's interval
// overlaps an existing function, and with INVALID_INTERVAL when f is
// malformed. The evolution is unchanged on error.
func (e *Evolution[V]) Insert(f Function[V]) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if other, ok := e.CanInsert(f); !ok {
		return errs.New(errs.ErrCodeDefinitionConflict,
			"function on %s overlaps existing definition on %s", f.Interval, other.Interval)
	}
	e.fns = slices.Insert(e.fns, e.searchLeft(f.Interval), f)
	return nil
}

// MustInsert is Insert for statically known, non-conflicting input.
// It panics on error.
func (e *Evolution[V]) MustInsert(fns ...Function[V]) *Evolution[V] {
	for _, f := range fns {
		if err := e.Insert(f); err != nil {
			panic(err)
		}
	}
	return e
}

// Delete removes the function structurally equal to f (same kind,
// interval, endpoints and kernel). It reports whether one was removed.
func (e *Evolution[V]) Delete(f Function[V]) bool {
	for i, g := range e.fns {
		if g == f {
			e.fns = slices.Delete(e.fns, i, i+1)
			return true
		}
	}
	return false
}

// FunctionAt returns the function covering t.
func (e *Evolution[V]) FunctionAt(t float64) (Function[V], bool) {
	// Functions are disjoint and sorted, so only the last two starting at
	// or before t can contain it: [0, 10] and (10, 20] both start <= 10.
	i := sort.Search(len(e.fns), func(i int) bool { return e.fns[i].Interval.Left > t })
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if e.fns[j].Interval.Contains(t) {
			return e.fns[j], true
		}
	}
	return Function[V]{}, false
}

// IsDefinedAt reports whether a function covers t.
func (e *Evolution[V]) IsDefinedAt(t float64) bool {
	_, ok := e.FunctionAt(t)
	return ok
}

// ValueAt returns the covering function's value at t, or the default.
func (e *Evolution[V]) ValueAt(t float64) V {
	if f, ok := e.FunctionAt(t); ok {
		return f.eval(t)
	}
	return e.def
}

// Map returns a new evolution with fn applied to the default and to every
// function endpoint.
func (e *Evolution[V]) Map(fn func(V) V) *Evolution[V] {
	out := &Evolution[V]{def: fn(e.def), fns: make([]Function[V], len(e.fns))}
	for i, f := range e.fns {
		out.fns[i] = f.Map(fn)
	}
	return out
}

// Breakpoints returns the sorted, de-duplicated finite bounds of all
// function intervals.
func (e *Evolution[V]) Breakpoints() []float64 {
	return Breakpoints(e)
}

// Span returns the hull of all defined intervals and false when empty.
func (e *Evolution[V]) Span() (Interval, bool) {
	if len(e.fns) == 0 {
		return Interval{}, false
	}
	return e.fns[0].Interval.Hull(e.fns[len(e.fns)-1].Interval), true
}

// searchLeft returns the insertion index that keeps fns ordered by left bound.
func (e *Evolution[V]) searchLeft(iv Interval) int {
	return sort.Search(len(e.fns), func(i int) bool {
		return CompareLeft(e.fns[i].Interval, iv) > 0
	})
}

// Breakpoints collects the sorted, unique finite interval bounds across
// several evolutions.
func Breakpoints[V comparable](evos ...*Evolution[V]) []float64 {
	var out []float64
	for _, e := range evos {
		if e == nil {
			continue
		}
		for _, f := range e.fns {
			for _, b := range []float64{f.Interval.Left, f.Interval.Right} {
				if !math.IsInf(b, 0) {
					out = append(out, b)
				}
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Resample builds a piecewise evolution through sample(t) at the given
// sorted times: consecutive times are joined by linear rect functions over
// [t_i, t_i+1), the last one closed. A single time yields a point function.
// The default applies outside the sampled span.
func Resample[V comparable](def V, times []float64, sample func(t float64) V) *Evolution[V] {
	e := NewEvolution(def)
	switch len(times) {
	case 0:
		return e
	case 1:
		e.fns = []Function[V]{Const(Point(times[0]), sample(times[0]))}
		return e
	}
	values := make([]V, len(times))
	for i, t := range times {
		values[i] = sample(t)
	}
	e.fns = make([]Function[V], 0, len(times)-1)
	for i := 0; i+1 < len(times); i++ {
		iv := ClosedOpen(times[i], times[i+1])
		if i+2 == len(times) {
			iv.RightOpen = false
		}
		if values[i] == values[i+1] {
			e.fns = append(e.fns, Const(iv, values[i]))
		} else {
			e.fns = append(e.fns, Rect(iv, values[i], values[i+1], Linear))
		}
	}
	return e
}
