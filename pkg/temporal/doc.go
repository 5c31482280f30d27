// Package temporal models attribute values that change over continuous time.
//
// # Intervals
//
// An [Interval] is a range over the real line whose two sides are closed or
// open independently. The zero value of the closure flags means closed, so
// Interval{Left: 0, Right: 10} is [0, 10]. Unbounded sides use math.Inf and
// must be open. Two intervals that share a boundary overlap only when both
// are closed there:
//
//	temporal.Closed(0, 10).OverlapsWith(temporal.OpenClosed(10, 20)) // false
//	temporal.Closed(0, 10).OverlapsWith(temporal.Closed(10, 20))     // true
//
// # Functions and Evolutions
//
// A [Function] is defined on exactly one interval. Constant functions hold a
// single value; rect functions blend between two values through a named
// [Interpolation] kernel. An [Evolution] keeps non-overlapping functions in
// left-bound order together with a default, so [Evolution.ValueAt] is total:
//
//	e := temporal.NewEvolution(6.0)
//	_ = e.Insert(temporal.Rect(temporal.Closed(30, 40), 10.0, 20.0, temporal.Linear))
//	e.ValueAt(35) // 15
//	e.ValueAt(29) // 6
//
// Inserting a function whose interval overlaps an existing one fails with
// DEFINITION_CONFLICT. Conflicts are never resolved automatically.
//
// # Analysis
//
// [ConvertToConstFunctions], [MergeFunctions] and [IntervalsWithValue] turn
// an evolution into maximal constant segments. They are used for presence
// semantics, where only which value holds matters and not how it was
// interpolated. [Resample] goes the other way and fits a piecewise linear
// evolution through sampled points.
package temporal
