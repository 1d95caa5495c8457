package layout

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/graphimg/pkg/errors"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
)

// Keys of the text parameter record, in output order.
const (
	KeyNVert    = "n_vert"
	KeyNInEdges = "n_inedges"
	KeyVAddr    = "vaddr"
	KeyIEAddr   = "ieaddr"
	KeyWAddr0   = "waddr0"
	KeyWAddr1   = "waddr1"
)

var textKeys = []string{KeyNVert, KeyNInEdges, KeyVAddr, KeyIEAddr, KeyWAddr0, KeyWAddr1}

func (p *Params) fields() map[string]*uint64 {
	return map[string]*uint64{
		KeyNVert:    &p.NVert,
		KeyNInEdges: &p.NInEdges,
		KeyVAddr:    &p.VAddr,
		KeyIEAddr:   &p.IEAddr,
		KeyWAddr0:   &p.WAddr0,
		KeyWAddr1:   &p.WAddr1,
	}
}

// WriteText writes the record as "key: decimal" lines.
func (p Params) WriteText(w io.Writer) error {
	f := p.fields()
	for _, k := range textKeys {
		if _, err := fmt.Fprintf(w, "%s: %d\n", k, *f[k]); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write parameters")
		}
	}
	return nil
}

// String returns the text form of the record.
func (p Params) String() string {
	var b strings.Builder
	_ = p.WriteText(&b)
	return b.String()
}

// WriteTextFile writes the text record to path.
func (p Params) WriteTextFile(path string) error {
	f, err := pkgio.Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if err := p.WriteText(f); err != nil {
		return err
	}
	return f.Commit()
}

// ReadText parses a record written by WriteText. Blank lines are skipped;
// unknown, repeated or missing keys and non-decimal values are PARSE_ERROR.
func ReadText(r io.Reader) (Params, error) {
	var p Params
	fields := p.fields()
	seen := make(map[string]bool, len(textKeys))

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			return Params{}, errors.New(errors.ErrCodeParse, "parameters line %d: missing ':' in %q", line, text)
		}
		key = strings.TrimSpace(key)
		dst, known := fields[key]
		if !known {
			return Params{}, errors.New(errors.ErrCodeParse, "parameters line %d: unknown key %q", line, key)
		}
		if seen[key] {
			return Params{}, errors.New(errors.ErrCodeParse, "parameters line %d: repeated key %q", line, key)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return Params{}, errors.Wrap(errors.ErrCodeParse, err, "parameters line %d: value of %s", line, key)
		}
		*dst = n
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return Params{}, errors.Wrap(errors.ErrCodeIO, err, "read parameters")
	}
	for _, k := range textKeys {
		if !seen[k] {
			return Params{}, errors.New(errors.ErrCodeParse, "parameters: missing key %q", k)
		}
	}
	return p, nil
}

// ReadTextFile reads a text record from path.
func ReadTextFile(path string) (Params, error) {
	f, err := pkgio.Open(path)
	if err != nil {
		return Params{}, err
	}
	defer f.Close()
	return ReadText(f)
}

// Check reports whether p is exactly the plan for its own counts.
func (p Params) Check() error {
	want, err := Plan(p.NVert, p.NInEdges)
	if err != nil {
		return err
	}
	if p != want {
		return errors.New(errors.ErrCodeInvalidArgument,
			"parameters do not match the layout for %d vertices and %d edges", p.NVert, p.NInEdges)
	}
	return nil
}
