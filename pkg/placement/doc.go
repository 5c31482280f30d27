// Package placement projects layouts from a coarse hierarchy level onto the
// next finer one.
//
// After the solver has laid out level k, every node of level k-1 needs an
// initial trajectory before the solver refines it. A [Strategy] derives it
// from the trajectory of the node's cluster: [Identity] simply copies it,
// while [Barycenter] pulls non-leader members towards the clusters their
// neighbours ended up in, using a [Mass] to weigh the member's own cluster.
//
// Both strategies draw jitter and angles from an injected *rand.Rand so a
// fixed seed reproduces the same layout.
package placement
