// Package graph provides the JSON wire format for dynamic graphs and layout
// results.
//
// This package defines the canonical serialization used for input files,
// API requests and responses, and cached layouts.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// model and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/dygraph.Graph: Internal dynamic graph
//
// Use [FromDyGraph]/[ToDyGraph] to convert between them.
//
// # Tracks
//
// Every evolving attribute is a [Track]: a default value plus segments.
// A segment holds a constant value, or interpolates from value to "to"
// with a named kernel. Intervals use their text form:
//
//	{
//	  "nodes": [{
//	    "id": "a",
//	    "presence": {"default": false, "segments": [{"interval": "[0, 10]", "value": true}]},
//	    "position": {"default": {"x": 0, "y": 0}, "segments": [
//	      {"interval": "[0, 5)", "value": {"x": 0, "y": 0}, "to": {"x": 10, "y": 0}, "interp": "smoothstep"}
//	    ]}
//	  }],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// A node or edge without a presence track exists at every instant. Missing
// position, label and size tracks take the model defaults: the origin, an
// empty label and size 1.
//
// # Common operations
//
//	g, _ := graph.ReadGraphFile("input.json")   // File → dygraph
//	graph.WriteGraphFile(g, "output.json")      // dygraph → File
//	data, _ := graph.MarshalGraph(g)            // dygraph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
