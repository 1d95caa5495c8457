package layout

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/graphimg/pkg/errors"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
)

// Entry describes one packed image in a benchmark manifest.
type Entry struct {
	Name  string `json:"name"`
	RunID string `json:"run_id,omitempty"`
	Params
}

// Manifest lists the images available to the benchmark runner. It is stored
// as JSON with the layout parameters of each file inlined.
type Manifest struct {
	Files []Entry `json:"files"`
}

// Upsert adds e, replacing any existing entry with the same name.
func (m *Manifest) Upsert(e Entry) {
	for i := range m.Files {
		if m.Files[i].Name == e.Name {
			m.Files[i] = e
			return
		}
	}
	m.Files = append(m.Files, e)
}

// Lookup returns the entry with the given name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	for _, e := range m.Files {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// LoadManifest reads a manifest from path. A missing file yields an empty
// manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode %s", path)
	}
	return &m, nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	f, err := pkgio.Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", path)
	}
	return f.Commit()
}
