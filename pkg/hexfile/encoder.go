// Package hexfile reads and writes the hexadecimal intermediate form of an
// accelerator memory image.
//
// The format is a sequence of 64-bit words, each rendered as exactly 16
// uppercase hexadecimal digits. Words are concatenated without separators,
// and a newline follows every 8th word, so each line is one 64-byte row:
//
//	0000000000000000000000000000000100000000000000000000000000000000...
//
// The file is meant to be read by people and re-read by the packer; it does
// not change any value it transcribes.
package hexfile

import (
	"bufio"
	"io"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// Digits is the number of hexadecimal digits per word.
const Digits = 16

const hexDigits = "0123456789ABCDEF"

// Encoder writes words in the hexadecimal intermediate form. It tracks its
// own word count to place row breaks; two encoders never share state.
type Encoder struct {
	w     *bufio.Writer
	words uint64
	buf   [Digits + 1]byte
	err   error
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriterSize(w, 1<<16)
	}
	return &Encoder{w: bw}
}

// Words returns the number of words written so far.
func (e *Encoder) Words() uint64 { return e.words }

// WriteWord appends one word, followed by a newline if it completes a row.
func (e *Encoder) WriteWord(v uint64) error {
	if e.err != nil {
		return e.err
	}
	for i := Digits - 1; i >= 0; i-- {
		e.buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	n := Digits
	e.words++
	if e.words%layout.RowWords == 0 {
		e.buf[Digits] = '\n'
		n++
	}
	if _, err := e.w.Write(e.buf[:n]); err != nil {
		e.err = errors.Wrap(errors.ErrCodeIO, err, "write word %d", e.words-1)
	}
	return e.err
}

// PadRow writes zero words until the word count is a multiple of a row.
func (e *Encoder) PadRow() error {
	for e.words%layout.RowWords != 0 {
		if err := e.WriteWord(0); err != nil {
			return err
		}
	}
	return e.err
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		e.err = errors.Wrap(errors.ErrCodeIO, err, "flush")
	}
	return e.err
}

// Encode writes the full image for g laid out per p:
//
//  1. the vertex table: each vertex's incoming-edge offset, then its out-degree
//  2. zero words up to the next row (ieaddr)
//  3. the incoming-edge array, vertex by vertex
//  4. two scratch regions of NVert zero words each
//  5. zero words up to the next row
//
// p must be the plan for g's own vertex and edge counts.
func (e *Encoder) Encode(g *graph.Graph, p layout.Params) error {
	n := g.VertexCount()
	if p.NVert != n || p.NInEdges != g.EdgeCount() {
		return errors.New(errors.ErrCodeInvalidArgument,
			"layout is for %d vertices and %d edges, graph has %d and %d",
			p.NVert, p.NInEdges, n, g.EdgeCount())
	}
	start := e.words

	var offset uint64
	for v := uint64(0); v < n; v++ {
		if err := e.WriteWord(offset); err != nil {
			return err
		}
		if err := e.WriteWord(g.OutDegree(v)); err != nil {
			return err
		}
		offset += uint64(len(g.InEdges(v)))
	}
	if err := e.PadRow(); err != nil {
		return err
	}
	if got := e.words - start; got != p.VertexTableWords() {
		return errors.New(errors.ErrCodeInternal, "vertex table ends at word %d, layout expects %d", got, p.VertexTableWords())
	}

	for v := uint64(0); v < n; v++ {
		for _, src := range g.InEdges(v) {
			if err := e.WriteWord(src); err != nil {
				return err
			}
		}
	}

	for i := uint64(0); i < 2*n; i++ {
		if err := e.WriteWord(0); err != nil {
			return err
		}
	}
	if err := e.PadRow(); err != nil {
		return err
	}

	if got := e.words - start; got != p.ImageWords() {
		return errors.New(errors.ErrCodeInternal, "encoded %d words, layout expects %d", got, p.ImageWords())
	}
	return nil
}

// Encode writes the image for g to w and returns the number of words.
func Encode(w io.Writer, g *graph.Graph, p layout.Params) (uint64, error) {
	enc := NewEncoder(w)
	if err := enc.Encode(g, p); err != nil {
		return enc.Words(), err
	}
	return enc.Words(), enc.Flush()
}

// WriteFile encodes g into the artifact at path. The file is synced before
// it becomes visible, and removed again if encoding fails.
func WriteFile(path string, g *graph.Graph, p layout.Params) (uint64, error) {
	f, err := pkgio.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Abort()

	words, err := Encode(f, g, p)
	if err != nil {
		return words, err
	}
	return words, f.Commit()
}
