package image

import (
	"fmt"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// Verify checks decoded image words against the layout p.
//
// With a graph, the vertex table and incoming-edge array must reproduce g
// exactly. Without one, only internal consistency is checked: offsets start
// at zero and never decrease, every edge source names a vertex, out-degrees
// sum to the edge count. Padding and scratch words must be zero either way,
// and the image must be exactly p.ImageBytes long.
func Verify(words []uint64, p layout.Params, g *graph.Graph) error {
	if err := p.Check(); err != nil {
		return err
	}
	if got, want := uint64(len(words))*layout.WordSize, p.ImageBytes(); got != want {
		return errors.New(errors.ErrCodeParse, "image is %d bytes, layout expects %d", got, want)
	}
	if g != nil && (g.VertexCount() != p.NVert || g.EdgeCount() != p.NInEdges) {
		return errors.New(errors.ErrCodeInvalidArgument,
			"layout is for %d vertices and %d edges, graph has %d and %d",
			p.NVert, p.NInEdges, g.VertexCount(), g.EdgeCount())
	}

	edgeBase := p.VertexTableWords()
	if g != nil {
		if err := matchGraph(words, edgeBase, g); err != nil {
			return err
		}
	} else if err := checkStructure(words, p); err != nil {
		return err
	}

	if err := zeros(words, 2*p.NVert, edgeBase, "vertex table padding"); err != nil {
		return err
	}
	return zeros(words, edgeBase+p.NInEdges, uint64(len(words)), "scratch and padding")
}

func matchGraph(words []uint64, edgeBase uint64, g *graph.Graph) error {
	offsets := g.Offsets()
	for v := range g.VertexCount() {
		if err := expect(words, 2*v, offsets[v], "offset of vertex %d", v); err != nil {
			return err
		}
		if err := expect(words, 2*v+1, g.OutDegree(v), "out-degree of vertex %d", v); err != nil {
			return err
		}
		for i, src := range g.InEdges(v) {
			if err := expect(words, edgeBase+offsets[v]+uint64(i), src, "in-edge %d of vertex %d", i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkStructure(words []uint64, p layout.Params) error {
	var prev, degrees uint64
	for v := range p.NVert {
		off := words[2*v]
		switch {
		case v == 0 && off != 0:
			return mismatch(0, off, "offset of vertex 0 must be zero")
		case off < prev:
			return mismatch(2*v, off, "offset of vertex %d is below the previous offset %d", v, prev)
		case off > p.NInEdges:
			return mismatch(2*v, off, "offset of vertex %d exceeds the edge count %d", v, p.NInEdges)
		}
		prev = off
		degrees += words[2*v+1]
	}
	if degrees != p.NInEdges {
		return errors.New(errors.ErrCodeParse, "out-degrees sum to %d, layout has %d edges", degrees, p.NInEdges)
	}

	base := p.VertexTableWords()
	for i := range p.NInEdges {
		if src := words[base+i]; src >= p.NVert {
			return mismatch(base+i, src, "in-edge %d names vertex %d of %d", i, src, p.NVert)
		}
	}
	return nil
}

func expect(words []uint64, at, want uint64, format string, args ...any) error {
	if got := words[at]; got != want {
		return mismatch(at, got, "%s, want %d", fmt.Sprintf(format, args...), want)
	}
	return nil
}

func zeros(words []uint64, from, to uint64, region string) error {
	for i := from; i < to; i++ {
		if words[i] != 0 {
			return mismatch(i, words[i], "%s is not zero", region)
		}
	}
	return nil
}

// mismatch reports an unexpected image word as a PARSE_ERROR.
func mismatch(at, got uint64, format string, args ...any) error {
	return errors.New(errors.ErrCodeParse, "word %d = %d: %s", at, got, fmt.Sprintf(format, args...))
}
