package cache

// ScopedKeyer wraps a Keyer with a prefix. Shared backends use it to keep
// graphimg's keys apart from other tenants of the same store, and to retire
// entries when the graph encoding changes.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "graphimg:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(opts)
}
