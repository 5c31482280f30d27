// Package discretise turns a continuous dynamic graph into a sequence of
// time slices.
//
// Each input interval becomes one output slice whose bounds sit halfway to
// the neighbouring input intervals. A node is present in a slice when it is
// present anywhere in the corresponding input interval, and its position,
// label and size keep their motion across the slice as rect functions.
//
//	discrete, err := discretise.WithSnapTimes(g, []float64{0, 8, 16}, 0)
//
// The snapshot times are recorded in the output graph's snapshot_times
// metadata as a comma-joined string; [SnapshotTimes] parses them back.
package discretise
