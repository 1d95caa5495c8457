// Package graph generates the synthetic directed graphs that graphimg encodes
// into accelerator memory images.
//
// A [Graph] stores, for every vertex, the list of sources of its incoming
// edges and its out-degree. That is exactly what the image needs: the vertex
// table holds prefix sums of in-degrees plus out-degrees, and the
// incoming-edge array is the concatenation of the in-edge lists.
//
// # Building
//
// [Build] draws candidate edges from a [Drawer] until the requested number
// has been accepted:
//
//	g, err := graph.Build(1000, 8000, graph.PolicyStrict, graph.NewUniform(42), graph.BuildOptions{})
//
// [PolicyStrict] keeps a per-destination membership set and rejects
// self-loops and parallel edges; [PolicyPermissive] accepts every draw.
// Requests that could never finish under the strict policy are rejected up
// front instead of looping forever.
//
// Drawers:
//   - [Uniform]: both endpoints uniform over [0, n)
//   - [RMAT]: recursive-matrix draws for skewed degree distributions
//   - [Scripted]: a fixed edge list, used to build exact graphs in tests
//
// # Importing
//
// [ReadDIMACS] loads real-world graphs in the DIMACS shortest-path format.
//
// # Caching
//
// [MarshalGraph] and [UnmarshalGraph] use MessagePack so large generated
// graphs can be cached between runs with the same seed.
package graph
