// Package image packs the hexadecimal intermediate form into the binary
// memory image read by the accelerator, and decodes such images back for
// verification.
//
// Each complete row of 8 words is written with its words in reverse order:
// the last word of the row comes first. Bytes within a word are not touched;
// each word is stored little-endian. The image is then padded with zero rows
// to a whole number of 4096-byte pages.
package image

import (
	"bufio"
	"encoding/binary"
	"io"
	"path/filepath"
	"slices"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/hexfile"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// Stats describes one packing run.
type Stats struct {
	Rows            uint64 `json:"rows"`             // rows transcribed from the text form
	PadRows         uint64 `json:"pad_rows"`         // zero rows added for page alignment
	Bytes           uint64 `json:"bytes"`            // total image size
	DiscardedTokens uint64 `json:"discarded_tokens"` // tokens of an incomplete final row
}

// Packer accumulates words into rows and writes them reversed. It owns its
// row position; independent packers share nothing.
type Packer struct {
	w     *bufio.Writer
	row   [layout.RowWords]uint64
	n     int
	buf   [layout.RowSize]byte
	stats Stats
	err   error
}

// NewPacker returns a packer writing to w.
func NewPacker(w io.Writer) *Packer {
	return &Packer{w: bufio.NewWriterSize(w, 1<<16)}
}

// WriteWord adds one word in text order. A row is written once its 8th word
// arrives.
func (p *Packer) WriteWord(v uint64) error {
	if p.err != nil {
		return p.err
	}
	p.row[p.n] = v
	p.n++
	if p.n < layout.RowWords {
		return nil
	}
	p.n = 0
	slices.Reverse(p.row[:])
	if err := p.writeRow(p.row[:]); err != nil {
		return err
	}
	p.stats.Rows++
	return nil
}

// Close discards an incomplete final row, pads the image to a page boundary
// and flushes. The packer cannot be used afterwards.
func (p *Packer) Close() (Stats, error) {
	if p.err != nil {
		return p.stats, p.err
	}
	p.stats.DiscardedTokens += uint64(p.n)
	p.n = 0

	var zero [layout.RowWords]uint64
	for p.stats.Bytes%layout.PageSize != 0 {
		if err := p.writeRow(zero[:]); err != nil {
			return p.stats, err
		}
		p.stats.PadRows++
	}
	if err := p.w.Flush(); err != nil {
		p.err = errors.Wrap(errors.ErrCodeIO, err, "flush image")
	}
	return p.stats, p.err
}

func (p *Packer) writeRow(words []uint64) error {
	for i, w := range words {
		binary.LittleEndian.PutUint64(p.buf[i*layout.WordSize:], w)
	}
	if _, err := p.w.Write(p.buf[:]); err != nil {
		p.err = errors.Wrap(errors.ErrCodeIO, err, "write image row %d", p.stats.Bytes/layout.RowSize)
		return p.err
	}
	p.stats.Bytes += layout.RowSize
	return nil
}

// Pack reads the text form from r and writes the binary image to w.
//
// Input without a single complete row is rejected rather than packed into
// an empty image: IO_ERROR when it holds no words at all, PARSE_ERROR when
// it holds only a short tail.
func Pack(r io.Reader, w io.Writer) (Stats, error) {
	return pack(hexfile.NewScanner(r, "hex input"), "hex input", w)
}

func pack(s *hexfile.Scanner, name string, w io.Writer) (Stats, error) {
	p := NewPacker(w)
	for s.Scan() {
		if err := p.WriteWord(s.Token().Value); err != nil {
			return p.stats, err
		}
	}
	if err := s.Err(); err != nil {
		return p.stats, err
	}
	if p.stats.Rows == 0 {
		if p.n == 0 && !s.Truncated() {
			return p.stats, errors.New(errors.ErrCodeIO, "%s holds no words", name)
		}
		tokens := p.n
		if s.Truncated() {
			tokens++
		}
		return p.stats, errors.New(errors.ErrCodeParse,
			"%s holds %d tokens but no complete row of %d words", name, tokens, layout.RowWords)
	}
	if s.Truncated() {
		p.stats.DiscardedTokens++
	}
	return p.Close()
}

// PackFile packs the text artifact at in into a binary artifact at out. The
// input must exist and hold at least one complete row. The output appears only if packing
// succeeds.
func PackFile(in, out string) (Stats, error) {
	src, err := pkgio.Open(in)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	dst, err := pkgio.Create(out)
	if err != nil {
		return Stats{}, err
	}
	defer dst.Abort()

	name := filepath.Base(in)
	stats, err := pack(hexfile.NewScanner(src, name), name, dst)
	if err != nil {
		return stats, err
	}
	return stats, dst.Commit()
}
