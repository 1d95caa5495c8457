package io

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
)

type edgeList struct {
	Vertices uint64   `json:"vertices"`
	Edges    []edge   `json:"edges"`
	OutDeg   []uint64 `json:"out_degree"`
}

type edge struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// WriteEdgeList encodes g as JSON: the vertex count, every edge as a
// {from, to} pair grouped by destination, and the out-degree table.
func WriteEdgeList(g *graph.Graph, w io.Writer) error {
	n := g.VertexCount()
	out := edgeList{
		Vertices: n,
		Edges:    make([]edge, 0, g.EdgeCount()),
		OutDeg:   make([]uint64, n),
	}
	for v := uint64(0); v < n; v++ {
		for _, src := range g.InEdges(v) {
			out.Edges = append(out.Edges, edge{From: src, To: v})
		}
		out.OutDeg[v] = g.OutDegree(v)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode edge list")
	}
	return nil
}

// ExportEdgeList writes g to a JSON file at path.
func ExportEdgeList(g *graph.Graph, path string) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if err := WriteEdgeList(g, f); err != nil {
		return err
	}
	return f.Commit()
}
