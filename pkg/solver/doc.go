// Package solver defines the contract between the multilevel driver and
// the per-level layout solver, and ships a small force-directed [Stepper].
//
// A [Solver] receives a level graph, a list of [Force] kernels that
// accumulate a [Displacement], [Constraint] kernels that restrict it, and
// [PostProcessor] kernels that adjust positions after each iteration. Its
// only observable effect is the Position evolution of the graph's nodes.
//
// The kernels work on a [Frame], the static picture of the graph at one
// instant. [DefaultSet] builds the bundled kernels from cooled [Params].
package solver
