// Package render holds debugging views of generated graphs.
//
// Memory images are meant for hardware, not people. For small graphs the
// [nodelink] subpackage draws the same graph as a Graphviz diagram, with
// each vertex labelled by the values its vertex-table entry will hold.
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/graphimg/pkg/render/nodelink
package render
