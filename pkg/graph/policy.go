package graph

import (
	"math/bits"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// Policy decides which random draws the builder accepts as edges.
type Policy string

const (
	// PolicyStrict rejects self-loops and parallel edges.
	PolicyStrict Policy = "strict"
	// PolicyPermissive accepts every draw, including self-loops and parallel edges.
	PolicyPermissive Policy = "permissive"
)

// ValidPolicies lists the accepted policy names.
var ValidPolicies = map[Policy]bool{
	PolicyStrict:     true,
	PolicyPermissive: true,
}

// ParsePolicy converts a policy name into a Policy.
// The empty string selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return PolicyStrict, nil
	}
	p := Policy(s)
	if !ValidPolicies[p] {
		return "", errors.New(errors.ErrCodeInvalidArgument, "invalid policy: %q (must be one of: strict, permissive)", s)
	}
	return p, nil
}

func (p Policy) String() string { return string(p) }

// MaxEdges returns the largest edge count a graph with n vertices can hold
// under the policy. bounded is false when the policy admits any count.
func MaxEdges(n uint64, p Policy) (limit uint64, bounded bool) {
	if p != PolicyStrict {
		return 0, false
	}
	if n < 2 {
		return 0, true
	}
	hi, lo := bits.Mul64(n, n-1)
	if hi != 0 {
		// n*(n-1) exceeds uint64, so no uint64 edge count can reach it.
		return 0, false
	}
	return lo, true
}
