package image

import (
	"encoding/binary"
	"io"
	"slices"

	"github.com/matzehuels/graphimg/pkg/errors"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// Decode reads a binary image and returns its words in text order, undoing
// the per-row reversal. The image must hold whole rows.
func Decode(r io.Reader) ([]uint64, error) {
	var (
		words []uint64
		buf   [layout.RowSize]byte
		row   [layout.RowWords]uint64
	)
	for n := 0; ; n++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			switch err {
			case io.EOF:
				return words, nil
			case io.ErrUnexpectedEOF:
				return nil, errors.New(errors.ErrCodeParse, "image ends inside row %d", n)
			default:
				return nil, errors.Wrap(errors.ErrCodeIO, err, "read image row %d", n)
			}
		}
		for i := range row {
			row[i] = binary.LittleEndian.Uint64(buf[i*layout.WordSize:])
		}
		slices.Reverse(row[:])
		words = append(words, row[:]...)
	}
}

// DecodeFile decodes the binary artifact at path.
func DecodeFile(path string) ([]uint64, error) {
	f, err := pkgio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
