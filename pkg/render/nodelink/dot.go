package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
)

// DefaultMaxVertices bounds the graphs ToDOT accepts when Options leaves
// MaxVertices at zero.
const DefaultMaxVertices = 500

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the vertex-table entry and in-degree in node labels.
	// When false, only the vertex ID is shown.
	Detailed bool

	// MaxVertices is the largest graph accepted; zero means DefaultMaxVertices.
	MaxVertices uint64
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Vertices without any incident edge are drawn with dashed outlines.
func ToDOT(g *graph.Graph, opts Options) (string, error) {
	limit := opts.MaxVertices
	if limit == 0 {
		limit = DefaultMaxVertices
	}
	n := g.VertexCount()
	if n > limit {
		return "", errors.New(errors.ErrCodeInvalidArgument,
			"graph has %d vertices, diagrams are limited to %d", n, limit)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	offsets := g.Offsets()
	for v := range n {
		label := fmtLabel(g, v, offsets[v], opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(v), fmtAttrs(g, v, label))
	}

	buf.WriteString("\n")
	for dst := range n {
		for _, src := range g.InEdges(dst) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(src), nodeID(dst))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeID(v uint64) string {
	return "v" + strconv.FormatUint(v, 10)
}

func fmtLabel(g *graph.Graph, v, offset uint64, detailed bool) string {
	if !detailed {
		return nodeID(v)
	}
	return fmt.Sprintf("%s\noffset: %d\nout: %d  in: %d",
		nodeID(v), offset, g.OutDegree(v), len(g.InEdges(v)))
}

func fmtAttrs(g *graph.Graph, v uint64, label string) string {
	attrs := fmt.Sprintf("label=%q", label)
	if g.OutDegree(v) == 0 && len(g.InEdges(v)) == 0 {
		attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg element with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
