package hexfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// Token is one word read from the intermediate form. Index counts tokens
// from zero; Row and Column locate the token's first digit, from one.
type Token struct {
	Index  int64
	Row    int64
	Column int64
	Value  uint64
}

// Scanner reads 16-digit tokens. Whitespace between tokens is skipped, so
// row breaks need not fall on row boundaries.
//
// A token cut short by the end of input ends the scan without an error;
// Truncated reports it. A token cut short by whitespace, or containing a
// non-hexadecimal character, is a PARSE_ERROR.
type Scanner struct {
	r         *bufio.Reader
	name      string
	index     int64
	row, col  int64
	last      byte
	tok       Token
	err       error
	truncated bool
	digits    [Digits]byte
}

// NewScanner returns a scanner over r. name identifies the artifact in
// error messages.
func NewScanner(r io.Reader, name string) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 1<<16)
	}
	return &Scanner{r: br, name: name, row: 1}
}

// Scan advances to the next token. It returns false at the end of input or
// on error.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.truncated {
		return false
	}

	c, ok := s.skipSpace()
	if !ok {
		return false
	}

	startRow, startCol := s.row, s.col
	var v uint64
	for i := 0; i < Digits; i++ {
		if i > 0 {
			var more bool
			if c, more = s.next(); !more {
				if s.err == nil {
					s.truncated = true
				}
				return false
			}
		}
		s.digits[i] = c
		d, isHex := hexValue(c)
		if !isHex {
			reason := fmt.Sprintf("non-hexadecimal character %q", c)
			if isSpace(c) {
				reason = fmt.Sprintf("token has %d of %d digits", i, Digits)
			}
			s.fail(startRow, startCol, string(s.digits[:i+1]), reason)
			return false
		}
		v = v<<4 | uint64(d)
	}

	s.tok = Token{Index: s.index, Row: startRow, Column: startCol, Value: v}
	s.index++
	return true
}

// Token returns the most recent token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error { return s.err }

// Truncated reports whether the input ended inside a token.
func (s *Scanner) Truncated() bool { return s.truncated }

// skipSpace consumes whitespace and returns the first other byte.
func (s *Scanner) skipSpace() (byte, bool) {
	for {
		c, ok := s.next()
		if !ok {
			return 0, false
		}
		if !isSpace(c) {
			return c, true
		}
	}
}

// next reads one byte and advances the position.
func (s *Scanner) next() (byte, bool) {
	c, err := s.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			s.err = errors.Wrap(errors.ErrCodeIO, err, "read %s", s.name)
		}
		return 0, false
	}
	if s.last == '\n' {
		s.row++
		s.col = 0
	}
	s.col++
	s.last = c
	return c, true
}

func (s *Scanner) fail(row, col int64, token, reason string) {
	s.err = errors.ParseError(s.name, &errors.TokenError{
		Index:  s.index,
		Row:    row,
		Column: col,
		Token:  token,
		Reason: reason,
	})
}

func isSpace(c byte) bool {
	return c == '\n' || c == '\r' || c == ' ' || c == '\t'
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
