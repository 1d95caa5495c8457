// Package pkg provides the core libraries for graphimg.
//
// # Overview
//
// graphimg builds synthetic directed graphs and turns them into the memory
// image a graph-processing accelerator reads at startup. The pkg directory
// is organized into these areas:
//
//  1. [graph] - Graph construction under an edge policy, edge sources, DIMACS import
//  2. [layout] - Region offsets of the image and the params.txt record
//  3. [hexfile] - The hexadecimal intermediate form (mem_init.hex)
//  4. [image] - Packing the intermediate form into graph.bin, and verifying it
//  5. [pipeline] - Orchestration (generate → plan → encode → pack → record)
//  6. [cache], [observability], [io], [errors] - Supporting infrastructure
//  7. [render/nodelink] - Node-link diagrams of small graphs
//
// # Architecture
//
// The data flow through graphimg:
//
//	vertex count, edge count, policy, seed
//	         ↓
//	    [graph] package (draw edges until the target count is accepted)
//	         ↓
//	    [layout] package (ieaddr, waddr0, waddr1)
//	         ↓
//	    [hexfile] package (16-digit words, 8 per line)
//	         ↓
//	    [image] package (row reversal, little-endian, 4096-byte pages)
//	         ↓
//	    mem_init.hex, graph.bin, then params.txt and input_data.json
//
// # Quick Start
//
// Run the whole pipeline:
//
//	import "github.com/matzehuels/graphimg/pkg/pipeline"
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Vertices: 1000,
//	    Edges:    8000,
//	    OutDir:   "out",
//	})
//
// Or use the stages directly:
//
//	g, err := graph.Build(1000, 8000, graph.PolicyStrict, graph.NewUniform(42), graph.BuildOptions{})
//	p, err := layout.Plan(g.VertexCount(), g.EdgeCount())
//	words, err := hexfile.WriteFile("mem_init.hex", g, p)
//	stats, err := image.PackFile("mem_init.hex", "graph.bin")
//
// # Determinism
//
// Every random choice is drawn from a PCG generator seeded by the caller,
// so the same options always produce byte-identical artifacts. This is
// what makes generated graphs cacheable: [cache.GraphKeyOpts] captures
// every input that affects the result.
package pkg
