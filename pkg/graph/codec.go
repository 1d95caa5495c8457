package graph

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// wireGraph is the cache encoding of a Graph.
type wireGraph struct {
	InEdges   [][]uint64 `msgpack:"in"`
	OutDegree []uint64   `msgpack:"out"`
	Edges     uint64     `msgpack:"e"`
}

// MarshalGraph encodes g with MessagePack.
func MarshalGraph(g *Graph) ([]byte, error) {
	data, err := msgpack.Marshal(wireGraph{InEdges: g.inEdges, OutDegree: g.outDeg, Edges: g.edges})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return data, nil
}

// UnmarshalGraph decodes a graph produced by MarshalGraph and checks that its
// tables are consistent.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var w wireGraph
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode graph")
	}
	if len(w.InEdges) != len(w.OutDegree) {
		return nil, errors.New(errors.ErrCodeParse, "decode graph: %d in-edge lists for %d vertices", len(w.InEdges), len(w.OutDegree))
	}
	g := &Graph{inEdges: w.InEdges, outDeg: w.OutDegree, edges: w.Edges}
	if err := g.Validate(PolicyPermissive); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode graph")
	}
	return g, nil
}
