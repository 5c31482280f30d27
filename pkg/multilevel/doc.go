// Package multilevel drives a layout through a coarsening hierarchy.
//
// [Run] coarsens the input graph with [coarsen.Coarsener], lays out the
// coarsest level with a [solver.Solver], then refines level by level: a
// [placement.Strategy] projects the coarse trajectories onto the finer
// nodes, a [Schedule] cools the solver parameters once, and the solver runs
// again with the cooled budget. The finest level's trajectories become the
// Position evolutions of the input graph.
//
// Levels other than the one being refined are only read, and the input
// graph is written once, after the whole run has succeeded.
package multilevel
