package graph

import (
	"math/bits"
	"math/rand/v2"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// Edge is a directed edge: Dst's incoming-edge list contains Src.
type Edge struct {
	Src uint64
	Dst uint64
}

// Drawer produces candidate edges for [Build]. Draw returns a (src, dst) pair
// with both endpoints in [0, n). ok is false when the drawer has no more
// candidates; random drawers never run dry.
type Drawer interface {
	Draw(n uint64) (src, dst uint64, ok bool)
}

// seedStream is the second PCG word; it keeps streams for equal seeds
// distinct from a zero-initialised generator.
const seedStream = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedStream))
}

// Uniform draws both endpoints uniformly at random.
type Uniform struct {
	r *rand.Rand
}

// NewUniform returns a uniform drawer. Equal seeds give equal draw sequences.
func NewUniform(seed uint64) *Uniform {
	return &Uniform{r: newRand(seed)}
}

// Draw implements Drawer.
func (u *Uniform) Draw(n uint64) (uint64, uint64, bool) {
	return u.r.Uint64N(n), u.r.Uint64N(n), true
}

// Default R-MAT quadrant probabilities. The fourth quadrant gets 1-a-b-c.
const (
	DefaultRMATA = 0.6
	DefaultRMATB = 0.1
	DefaultRMATC = 0.15
)

// RMAT draws edges from the recursive-matrix model, which yields skewed,
// power-law-like degree distributions. Each recursion level picks one of the
// four adjacency-matrix quadrants with probabilities a, b, c and 1-a-b-c.
type RMAT struct {
	r         *rand.Rand
	a, ab, ac float64
}

// NewRMAT returns an R-MAT drawer. The probabilities must be positive and sum
// to less than one.
func NewRMAT(seed uint64, a, b, c float64) (*RMAT, error) {
	if a <= 0 || b <= 0 || c <= 0 || a+b+c >= 1 {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"invalid R-MAT probabilities a=%g b=%g c=%g (each must be > 0, sum < 1)", a, b, c)
	}
	return &RMAT{r: newRand(seed), a: a, ab: a + b, ac: a + b + c}, nil
}

// Draw implements Drawer. Vertex counts that are not a power of two are
// handled by redrawing pairs that land outside [0, n).
func (m *RMAT) Draw(n uint64) (uint64, uint64, bool) {
	scale := bits.Len64(n - 1)
	for {
		var src, dst uint64
		for i := 0; i < scale; i++ {
			src <<= 1
			dst <<= 1
			switch p := m.r.Float64(); {
			case p < m.a:
			case p < m.ab:
				dst |= 1
			case p < m.ac:
				src |= 1
			default:
				src |= 1
				dst |= 1
			}
		}
		if src < n && dst < n {
			return src, dst, true
		}
	}
}

// Scripted replays a fixed list of draws, then reports exhaustion.
type Scripted struct {
	edges []Edge
	next  int
}

// NewScripted returns a drawer that yields edges in order.
func NewScripted(edges ...Edge) *Scripted {
	return &Scripted{edges: edges}
}

// Draw implements Drawer.
func (s *Scripted) Draw(uint64) (uint64, uint64, bool) {
	if s.next >= len(s.edges) {
		return 0, 0, false
	}
	e := s.edges[s.next]
	s.next++
	return e.Src, e.Dst, true
}
