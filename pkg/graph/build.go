package graph

import (
	"context"
	"math/rand/v2"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// DefaultProgressEvery matches the reporting interval of the edge loop.
const DefaultProgressEvery = 1_000_000

// BuildOptions tunes [Build]. The zero value is ready to use.
type BuildOptions struct {
	// Shuffle randomises the order of every incoming-edge list after
	// generation, seeded by Seed.
	Shuffle bool
	Seed    uint64

	// Progress, when set, is called every ProgressEvery accepted edges and
	// once more when the loop finishes. ProgressEvery also sets how many
	// draws pass between cancellation checks in [BuildContext].
	Progress      func(accepted, target uint64)
	ProgressEvery uint64
}

// Build is [BuildContext] with a background context.
func Build(n, e uint64, p Policy, d Drawer, opts BuildOptions) (*Graph, error) {
	return BuildContext(context.Background(), n, e, p, d, opts)
}

// BuildContext draws candidate edges from d until exactly e of them have
// been accepted under policy p, and returns the resulting graph on n
// vertices.
//
// Requests that could never finish are rejected up front with
// INVALID_ARGUMENT: n == 0, or under PolicyStrict n < 2 or
// e > n*(n-1). A drawer that runs dry, or yields an endpoint outside
// [0, n), also fails with INVALID_ARGUMENT.
//
// ctx is checked every ProgressEvery draws, accepted or not. Once it is
// done the loop stops and ctx.Err() is returned unwrapped, and Progress is
// not called again.
func BuildContext(ctx context.Context, n, e uint64, p Policy, d Drawer, opts BuildOptions) (*Graph, error) {
	if err := checkRequest(n, e, p); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "edge drawer is required")
	}

	every := opts.ProgressEvery
	if every == 0 {
		every = DefaultProgressEvery
	}

	b := newBuilder(n, p)
	var draws uint64
	for b.edges < e {
		if draws%every == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		draws++
		src, dst, ok := d.Draw(n)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"edge source exhausted after %d of %d edges", b.edges, e)
		}
		if src >= n || dst >= n {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"drawn edge %d->%d outside vertex range [0, %d)", src, dst, n)
		}
		if b.add(src, dst) && opts.Progress != nil && b.edges%every == 0 {
			opts.Progress(b.edges, e)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Progress != nil {
		opts.Progress(b.edges, e)
	}

	g := b.graph()
	if opts.Shuffle {
		Shuffle(g, opts.Seed)
	}
	return g, nil
}

func checkRequest(n, e uint64, p Policy) error {
	if !ValidPolicies[p] {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid policy: %q", p)
	}
	if n == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "vertex count must be positive")
	}
	if p == PolicyStrict && n < 2 {
		return errors.New(errors.ErrCodeInvalidArgument,
			"strict policy needs at least 2 vertices, got %d (only self-loops are possible)", n)
	}
	if limit, bounded := MaxEdges(n, p); bounded && e > limit {
		return errors.New(errors.ErrCodeInvalidArgument,
			"%d edges requested but a simple graph on %d vertices holds at most %d", e, n, limit)
	}
	return nil
}

// Shuffle permutes every incoming-edge list of g in place. The permutation
// depends only on seed. Offsets and out-degrees are unaffected.
func Shuffle(g *Graph, seed uint64) {
	r := rand.New(rand.NewPCG(seed, ^seed))
	for _, in := range g.inEdges {
		r.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })
	}
}
