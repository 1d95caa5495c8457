// Package layout plans the byte offsets of the regions in an accelerator
// memory image and renders them as the parameter record the benchmark driver
// uses to program its base-address registers.
//
// An image holds four regions:
//
//	vaddr  (0)      vertex table: 16 bytes per vertex (offset word, degree word)
//	ieaddr          incoming-edge array: 8 bytes per edge, 64-byte aligned
//	waddr0          scratch region 0
//	waddr1          scratch region 1
//
// waddr0 is measured from the end of the incoming-edge array, while waddr1 is
// measured from ieaddr using the vertex count. The driver depends on exactly
// these formulas, so [Plan] keeps them as they are.
package layout

import (
	"math/bits"

	"github.com/matzehuels/graphimg/pkg/errors"
)

const (
	// WordSize is the size of one image word in bytes.
	WordSize = 8
	// RowWords is the number of words in a packed row.
	RowWords = 8
	// RowSize is the size of one packed row in bytes.
	RowSize = WordSize * RowWords
	// PageSize is the granularity the binary image is padded to.
	PageSize = 4096

	// VertexEntrySize is the vertex-table footprint of one vertex.
	VertexEntrySize = 2 * WordSize
)

// Params is the layout-parameter record. All addresses are byte offsets into
// the packed image.
type Params struct {
	NVert    uint64 `json:"n_vert" toml:"n_vert" yaml:"n_vert"`
	NInEdges uint64 `json:"n_inedges" toml:"n_inedges" yaml:"n_inedges"`
	VAddr    uint64 `json:"vaddr" toml:"vaddr" yaml:"vaddr"`
	IEAddr   uint64 `json:"ieaddr" toml:"ieaddr" yaml:"ieaddr"`
	WAddr0   uint64 `json:"waddr0" toml:"waddr0" yaml:"waddr0"`
	WAddr1   uint64 `json:"waddr1" toml:"waddr1" yaml:"waddr1"`
}

// Align64 rounds n up to the next multiple of RowSize.
func Align64(n uint64) uint64 {
	if rem := n % RowSize; rem != 0 {
		return n + RowSize - rem
	}
	return n
}

// Plan computes the region offsets for a graph with the given vertex and
// edge counts:
//
//	ieaddr = align64(16 * vertices)
//	waddr0 = ieaddr + 8 * edges
//	waddr1 = ieaddr + 8 * vertices
func Plan(vertices, edges uint64) (Params, error) {
	if vertices == 0 {
		return Params{}, errors.New(errors.ErrCodeInvalidArgument, "vertex count must be positive")
	}

	vbytes, ok := mul(vertices, VertexEntrySize)
	if !ok || vbytes > ^uint64(0)-RowSize {
		return Params{}, overflow(vertices, edges)
	}
	ie := Align64(vbytes)

	ebytes, ok := mul(edges, WordSize)
	if !ok {
		return Params{}, overflow(vertices, edges)
	}
	w0, ok := add(ie, ebytes)
	if !ok {
		return Params{}, overflow(vertices, edges)
	}
	w1, ok := add(ie, vertices*WordSize)
	if !ok {
		return Params{}, overflow(vertices, edges)
	}

	return Params{
		NVert:    vertices,
		NInEdges: edges,
		VAddr:    0,
		IEAddr:   ie,
		WAddr0:   w0,
		WAddr1:   w1,
	}, nil
}

// VertexTableWords is the number of words from the start of the image to
// ieaddr, including the padding that completes the last vertex-table row.
func (p Params) VertexTableWords() uint64 { return p.IEAddr / WordSize }

// ImageWords returns the number of words the text encoder emits for the
// graph described by p: the padded vertex table, the incoming-edge array, two
// scratch regions of NVert words each, and padding to a whole row.
func (p Params) ImageWords() uint64 {
	words := p.VertexTableWords() + p.NInEdges + 2*p.NVert
	if rem := words % RowWords; rem != 0 {
		words += RowWords - rem
	}
	return words
}

// ImageBytes returns the size of the packed binary image, which is the
// encoded words rounded up to a whole page.
func (p Params) ImageBytes() uint64 {
	n := p.ImageWords() * WordSize
	if rem := n % PageSize; rem != 0 {
		n += PageSize - rem
	}
	return n
}

func mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

func overflow(vertices, edges uint64) error {
	return errors.New(errors.ErrCodeInvalidArgument,
		"image for %d vertices and %d edges exceeds the 64-bit address space", vertices, edges)
}
