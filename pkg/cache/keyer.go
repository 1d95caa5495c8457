package cache

// Keyer derives cache keys from generation requests.
type Keyer interface {
	// GraphKey returns the key for a generated graph.
	GraphKey(opts GraphKeyOpts) string
}

// GraphKeyOpts holds every input that determines a generated graph.
type GraphKeyOpts struct {
	Vertices uint64     `json:"vertices"`
	Edges    uint64     `json:"edges"`
	Policy   string     `json:"policy"`
	Source   string     `json:"source"`
	Seed     uint64     `json:"seed"`
	RMAT     [3]float64 `json:"rmat,omitempty"`
	Shuffle  bool       `json:"shuffle,omitempty"`
	Input    string     `json:"input,omitempty"` // content hash of an imported file
}

// DefaultKeyer hashes the request into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey returns "graph:" followed by the SHA-256 of opts.
func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	return hashKey("graph", opts)
}
