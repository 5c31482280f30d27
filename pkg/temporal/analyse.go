package temporal

import (
	"math"
	"slices"

	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// PresenceSamples is the number of constant pieces a rect function is cut
// into when only its endpoint values matter, as for boolean presence.
const PresenceSamples = 2

// ConvertToConstFunctions replaces every rect function by samples equal
// constant pieces. Each piece takes the rect endpoint nearest to its
// midpoint: From when the midpoint's normalized position is below 0.5, To
// otherwise. The kernel is never consulted, so only boundary values survive.
// The outer closures are preserved and inner cuts are [a, b). Functions that
// are already constant, unbounded or zero-width are kept as one piece
// holding From.
func ConvertToConstFunctions[V comparable](e *Evolution[V], samples int) *Evolution[V] {
	samples = max(samples, 1)
	out := NewEvolution(e.def)
	for _, f := range e.fns {
		iv := f.Interval
		if f.IsConstant() || !iv.IsBounded() || iv.Width() == 0 {
			out.fns = append(out.fns, Const(iv, f.From))
			continue
		}
		step := iv.Width() / float64(samples)
		for k := range samples {
			piece := ClosedOpen(iv.Left+float64(k)*step, iv.Left+float64(k+1)*step)
			if k == 0 {
				piece.Left, piece.LeftOpen = iv.Left, iv.LeftOpen
			}
			if k == samples-1 {
				piece.Right, piece.RightOpen = iv.Right, iv.RightOpen
			}
			if piece.IsEmpty() {
				continue
			}
			v := f.To
			if (float64(k)+0.5)/float64(samples) < 0.5 {
				v = f.From
			}
			out.fns = append(out.fns, Const(piece, v))
		}
	}
	return out
}

// MergeFunctions builds an evolution from constant functions that may
// overlap each other. Same-valued functions that overlap, or that touch so
// the shared instant is covered exactly once, are coalesced into maximal
// intervals. Pieces equal to def dissolve into the default region.
//
// It fails with DEFINITION_CONFLICT when two different values claim the
// same instant, and with INVALID_INPUT when a function is not constant.
func MergeFunctions[V comparable](def V, fns []Function[V]) (*Evolution[V], error) {
	sorted := make([]Function[V], 0, len(fns))
	for _, f := range fns {
		if !f.IsConstant() {
			return nil, errs.New(errs.ErrCodeInvalidInput,
				"merge requires constant functions, got rect on %s", f.Interval)
		}
		if f.Interval.IsEmpty() {
			continue
		}
		sorted = append(sorted, Const(f.Interval, f.From))
	}
	slices.SortStableFunc(sorted, func(a, b Function[V]) int {
		return CompareLeft(a.Interval, b.Interval)
	})

	var merged []Function[V]
	for _, f := range sorted {
		if len(merged) == 0 {
			merged = append(merged, f)
			continue
		}
		cur := &merged[len(merged)-1]
		overlaps := cur.Interval.OverlapsWith(f.Interval)
		switch {
		case overlaps && cur.From != f.From:
			return nil, errs.New(errs.ErrCodeDefinitionConflict,
				"values %v on %s and %v on %s claim the same instant",
				cur.From, cur.Interval, f.From, f.Interval)
		case cur.From == f.From && (overlaps || cur.Interval.Touches(f.Interval)):
			cur.Interval = cur.Interval.Hull(f.Interval)
		default:
			merged = append(merged, f)
		}
	}

	out := NewEvolution(def)
	for _, f := range merged {
		if f.From != def {
			out.fns = append(out.fns, f)
		}
	}
	return out, nil
}

// Simplify converts e to constant pieces with presence sampling and merges
// them.
func Simplify[V comparable](e *Evolution[V]) (*Evolution[V], error) {
	return MergeFunctions(e.def, ConvertToConstFunctions(e, PresenceSamples).fns)
}

// IntervalsWithValue returns the maximal intervals, ordered by left bound,
// on which e equals v. When v is the default, the uncovered gaps are
// included.
//
// Boolean evolutions are simplified with presence sampling, so rect
// functions count by their nearest endpoint. Any other value type is
// answered exactly, which requires every function to be constant; a rect
// fails with INVALID_INPUT.
func IntervalsWithValue[V comparable](e *Evolution[V], v V) ([]Interval, error) {
	if _, ok := any(v).(bool); !ok {
		for _, f := range e.fns {
			if !f.IsConstant() {
				return nil, errs.New(errs.ErrCodeInvalidInput,
					"intervals with value %v need constant functions, got rect on %s", v, f.Interval)
			}
		}
	}
	simple, err := Simplify(e)
	if err != nil {
		return nil, err
	}

	if v != simple.def {
		var out []Interval
		for _, f := range simple.fns {
			if f.From == v {
				out = append(out, f.Interval)
			}
		}
		return out, nil
	}
	return gaps(simple.fns), nil
}

// gaps returns the complement of the union of disjoint sorted intervals.
func gaps[V comparable](fns []Function[V]) []Interval {
	var out []Interval
	prev := Interval{Right: math.Inf(-1), RightOpen: true}
	first := true
	for _, f := range fns {
		g := Interval{Left: prev.Right, LeftOpen: !prev.RightOpen, Right: f.Interval.Left, RightOpen: !f.Interval.LeftOpen}
		if first {
			g.LeftOpen = true
			first = false
		}
		if !g.IsEmpty() {
			out = append(out, g)
		}
		prev = f.Interval
	}
	tail := Interval{Left: prev.Right, LeftOpen: !prev.RightOpen, Right: math.Inf(1), RightOpen: true}
	if first {
		tail.LeftOpen = true
	}
	if !tail.IsEmpty() {
		out = append(out, tail)
	}
	return out
}

// Union returns the maximal intervals on which at least one of the
// evolutions equals v.
func Union[V comparable](v V, evos ...*Evolution[V]) ([]Interval, error) {
	var pieces []Function[V]
	for _, e := range evos {
		ivs, err := IntervalsWithValue(e, v)
		if err != nil {
			return nil, err
		}
		for _, iv := range ivs {
			pieces = append(pieces, Const(iv, v))
		}
	}
	return MergeIntervals(pieces), nil
}

// MergeIntervals coalesces intervals that overlap or touch into maximal
// intervals ordered by left bound. Empty intervals are dropped.
func MergeIntervals[V comparable](pieces []Function[V]) []Interval {
	ivs := make([]Interval, 0, len(pieces))
	for _, p := range pieces {
		if !p.Interval.IsEmpty() {
			ivs = append(ivs, p.Interval)
		}
	}
	slices.SortStableFunc(ivs, CompareLeft)

	var out []Interval
	for _, iv := range ivs {
		if n := len(out); n > 0 && (out[n-1].OverlapsWith(iv) || out[n-1].Touches(iv) || CompareRight(out[n-1], iv) >= 0) {
			out[n-1] = out[n-1].Hull(iv)
			continue
		}
		out = append(out, iv)
	}
	return out
}
