package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
)

// Generate builds the graph described by opts. It does not consult a cache;
// see [Runner.GenerateWithCacheInfo].
func Generate(ctx context.Context, opts Options) (*graph.Graph, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	if opts.Source == SourceDIMACS {
		data, err := readInput(opts.Input)
		if err != nil {
			return nil, err
		}
		return importDIMACS(data, opts)
	}
	return generate(ctx, opts)
}

func generate(ctx context.Context, opts Options) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d graph.Drawer
	switch opts.Source {
	case SourceRMAT:
		m, err := graph.NewRMAT(opts.seed(), opts.RMAT.A, opts.RMAT.B, opts.RMAT.C)
		if err != nil {
			return nil, err
		}
		d = m
	default:
		d = graph.NewUniform(opts.seed())
	}

	logger, progress := opts.Logger, opts.Progress
	return graph.BuildContext(ctx, opts.Vertices, opts.Edges, opts.policy(), d, graph.BuildOptions{
		Shuffle:       opts.Shuffle,
		Seed:          opts.seed(),
		ProgressEvery: opts.ProgressEvery,
		Progress: func(accepted, target uint64) {
			logger.Debug("generating edges", "accepted", accepted, "target", target)
			if progress != nil {
				progress(accepted, target)
			}
		},
	})
}

func importDIMACS(data []byte, opts Options) (*graph.Graph, error) {
	g, err := graph.ReadDIMACS(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if opts.Shuffle {
		graph.Shuffle(g, opts.seed())
	}
	opts.Logger.Debug("imported DIMACS graph",
		"input", opts.Input,
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount())
	return g, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return data, nil
}
