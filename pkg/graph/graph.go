package graph

import (
	"github.com/matzehuels/graphimg/pkg/errors"
)

// Graph is a directed graph stored as per-vertex incoming-edge lists plus
// out-degrees. Vertex IDs are dense in [0, VertexCount()).
//
// A Graph is produced by [Build] or [ReadDIMACS] and is not modified
// afterwards.
type Graph struct {
	inEdges [][]uint64
	outDeg  []uint64
	edges   uint64
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() uint64 { return uint64(len(g.outDeg)) }

// EdgeCount returns the number of accepted edges.
func (g *Graph) EdgeCount() uint64 { return g.edges }

// InEdges returns the source vertices of v's incoming edges.
// The returned slice must not be modified.
func (g *Graph) InEdges(v uint64) []uint64 { return g.inEdges[v] }

// OutDegree returns the number of edges whose source is v.
func (g *Graph) OutDegree(v uint64) uint64 { return g.outDeg[v] }

// Offsets returns, for every vertex, the number of incoming edges held by all
// lower-numbered vertices. This is the CSR index into the flattened
// incoming-edge array.
func (g *Graph) Offsets() []uint64 {
	offsets := make([]uint64, len(g.inEdges))
	var sum uint64
	for v, in := range g.inEdges {
		offsets[v] = sum
		sum += uint64(len(in))
	}
	return offsets
}

// Validate checks the structural invariants of g:
// out-degrees match the incoming-edge lists, every source is a valid vertex,
// and under PolicyStrict there are no self-loops or duplicate edges.
func (g *Graph) Validate(p Policy) error {
	n := g.VertexCount()
	if uint64(len(g.inEdges)) != n {
		return errors.New(errors.ErrCodeInternal, "in-edge table has %d entries for %d vertices", len(g.inEdges), n)
	}

	counted := make([]uint64, n)
	var total uint64
	for dst, in := range g.inEdges {
		var seen map[uint64]struct{}
		if p == PolicyStrict {
			seen = make(map[uint64]struct{}, len(in))
		}
		for _, src := range in {
			if src >= n {
				return errors.New(errors.ErrCodeInternal, "edge %d->%d: source out of range", src, dst)
			}
			if seen != nil {
				if src == uint64(dst) {
					return errors.New(errors.ErrCodeInternal, "self-loop on vertex %d", dst)
				}
				if _, dup := seen[src]; dup {
					return errors.New(errors.ErrCodeInternal, "duplicate edge %d->%d", src, dst)
				}
				seen[src] = struct{}{}
			}
			counted[src]++
			total++
		}
	}

	if total != g.edges {
		return errors.New(errors.ErrCodeInternal, "in-edge lists hold %d edges, graph reports %d", total, g.edges)
	}
	for v, deg := range g.outDeg {
		if counted[v] != deg {
			return errors.New(errors.ErrCodeInternal, "vertex %d: out-degree %d, counted %d", v, deg, counted[v])
		}
	}
	return nil
}

// builder accumulates edges under a policy. The membership sets exist only
// for PolicyStrict and are dropped once the graph is finished.
type builder struct {
	policy  Policy
	inEdges [][]uint64
	outDeg  []uint64
	members []map[uint64]struct{}
	edges   uint64
}

func newBuilder(n uint64, p Policy) *builder {
	b := &builder{
		policy:  p,
		inEdges: make([][]uint64, n),
		outDeg:  make([]uint64, n),
	}
	if p == PolicyStrict {
		b.members = make([]map[uint64]struct{}, n)
	}
	return b
}

// add records src->dst if the policy admits it and reports whether it did.
func (b *builder) add(src, dst uint64) bool {
	if b.members != nil {
		if src == dst {
			return false
		}
		set := b.members[dst]
		if set == nil {
			set = make(map[uint64]struct{})
			b.members[dst] = set
		}
		if _, ok := set[src]; ok {
			return false
		}
		set[src] = struct{}{}
	}
	b.inEdges[dst] = append(b.inEdges[dst], src)
	b.outDeg[src]++
	b.edges++
	return true
}

func (b *builder) graph() *Graph {
	b.members = nil
	return &Graph{inEdges: b.inEdges, outDeg: b.outDeg, edges: b.edges}
}
