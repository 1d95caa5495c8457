package graph

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// ReadDIMACSFile reads a DIMACS shortest-path graph file. See [ReadDIMACS].
func ReadDIMACSFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadDIMACS(f)
}

// ReadDIMACS parses a DIMACS graph: one "p <kind> <vertices> <arcs>" problem
// line followed by "a <src> <dst> [weight]" arc lines. Vertex IDs are
// 1-based in the file and 0-based in the returned graph. Self-loops and
// repeated arcs are dropped, so the result satisfies PolicyStrict.
// Comment lines and other line kinds are ignored.
func ReadDIMACS(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		b    *builder
		n    uint64
		line int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "p":
			if b != nil {
				return nil, dimacsError(line, "duplicate problem line")
			}
			if len(fields) < 3 {
				return nil, dimacsError(line, "problem line needs a vertex count")
			}
			v, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil || v == 0 {
				return nil, dimacsError(line, "invalid vertex count %q", fields[2])
			}
			n = v
			b = newBuilder(n, PolicyStrict)
		case "a":
			if b == nil {
				return nil, dimacsError(line, "arc before problem line")
			}
			if len(fields) < 3 {
				return nil, dimacsError(line, "arc line needs source and destination")
			}
			src, err := parseVertex(fields[1], n)
			if err != nil {
				return nil, dimacsError(line, "source: %v", err)
			}
			dst, err := parseVertex(fields[2], n)
			if err != nil {
				return nil, dimacsError(line, "destination: %v", err)
			}
			b.add(src, dst)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read DIMACS input")
	}
	if b == nil {
		return nil, errors.New(errors.ErrCodeParse, "DIMACS input has no problem line")
	}
	return b.graph(), nil
}

func parseVertex(s string, n uint64) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 || id > n {
		return 0, strconv.ErrRange
	}
	return id - 1, nil
}

func dimacsError(line int, format string, args ...any) error {
	return errors.New(errors.ErrCodeParse, "DIMACS line %d: "+format, append([]any{line}, args...)...)
}
