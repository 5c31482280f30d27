// Package coarsen builds a hierarchy of successively coarser dynamic graphs
// by greedy clustering.
//
// # Levels
//
// Level 0 is a copy of the input graph. Each further level groups the nodes
// of the previous one into clusters: nodes are visited heaviest first (own
// weight plus outgoing edge weight, ties by id) and every node not yet
// taken leads a new cluster, absorbing neighbours as its [Policy] decides.
// Cluster ids carry the level as a suffix, so the leader chain of node "a"
// yields "a__1", "a__2" and so on.
//
// A cluster is present whenever any member is, inherits position, label
// and size from its leader, and weighs as much as its members together.
// Edges between clusters sum the weights of the finer edges they replace.
//
// # Policies
//
//   - [IndependentSet]: absorb every free neighbour
//   - [Walshaw]: absorb the free neighbour behind the lightest edge
//   - [SolarMerger]: sun, planets and moons, with roles recorded for placement
//
// # Stopping
//
// [Coarsener.Step] stops once a level has at most MinNodes nodes, once
// MaxLevels levels exist, or when a computed level fails to shrink the
// graph. The last case discards that level and is a normal stop, not an
// error.
//
// # Provenance
//
// [Hierarchy.GroupMembers] maps any cluster id at any level to the original
// node ids it stands for. Unknown ids fail with MISSING_MAPPING.
package coarsen
