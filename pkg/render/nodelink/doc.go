// Package nodelink renders generated graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels also show the vertex-table entry (offset and
//     out-degree) and the in-degree
//   - MaxVertices: graphs above this size are refused; Graphviz layout time
//     grows quickly and the picture stops being readable long before
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be rendered
// directly via [RenderSVG] or saved and processed with external Graphviz
// tools. Vertices are named v0, v1, ... and every edge is drawn, so
// parallel edges and self-loops of permissive graphs are visible.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
