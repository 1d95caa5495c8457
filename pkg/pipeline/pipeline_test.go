package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/graphimg/pkg/cache"
	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/image"
	"github.com/matzehuels/graphimg/pkg/layout"
	"github.com/matzehuels/graphimg/pkg/observability"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"uniform", false},
		{"rmat", false},
		{"dimacs", false},
		{"invalid", true},
		{"RMAT", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateSource(tt.source)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSource(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Vertices: 3, Edges: 2}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Policy != string(graph.PolicyStrict) {
		t.Errorf("Policy should be strict, got %q", opts.Policy)
	}
	if opts.Source != SourceUniform {
		t.Errorf("Source should be %q, got %q", SourceUniform, opts.Source)
	}
	if opts.Seed == nil || *opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %v", DefaultSeed, opts.Seed)
	}
	if opts.OutDir != DefaultOutDir {
		t.Errorf("OutDir should be %q, got %q", DefaultOutDir, opts.OutDir)
	}
	if opts.Name != DefaultImageName {
		t.Errorf("Name should default to the image name, got %q", opts.Name)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	want := Paths{
		Hex:      DefaultHexName,
		Image:    DefaultImageName,
		Params:   DefaultParamsName,
		Manifest: DefaultManifestName,
	}
	if got := opts.Paths(); got != want {
		t.Errorf("Paths() = %+v, want %+v", got, want)
	}
}

func TestOptionsDefaultsSkipPack(t *testing.T) {
	opts := Options{Vertices: 3, SkipPack: true, OutDir: "out"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.Name != DefaultHexName {
		t.Errorf("Name should default to the hex name without packing, got %q", opts.Name)
	}
	if p := opts.Paths(); p.Image != "" || p.Hex != filepath.Join("out", DefaultHexName) {
		t.Errorf("Paths() = %+v", p)
	}
}

func TestOptionsRMATDefaults(t *testing.T) {
	opts := Options{Vertices: 16, Source: SourceRMAT}
	if err := opts.ValidateForGenerate(); err != nil {
		t.Fatalf("ValidateForGenerate: %v", err)
	}
	want := RMATOptions{A: graph.DefaultRMATA, B: graph.DefaultRMATB, C: graph.DefaultRMATC}
	if opts.RMAT != want {
		t.Errorf("RMAT = %+v, want %+v", opts.RMAT, want)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no vertices", Options{Edges: 3}},
		{"bad policy", Options{Vertices: 3, Policy: "lenient"}},
		{"bad source", Options{Vertices: 3, Source: "erdos"}},
		{"dimacs without input", Options{Source: SourceDIMACS}},
		{"duplicate names", Options{Vertices: 3, HexName: "x", ImageName: "x"}},
		{"path in name", Options{Vertices: 3, ParamsName: "a/b.txt"}},
		{"remove hex without pack", Options{Vertices: 3, SkipPack: true, RemoveHex: true}},
	}
	for _, tt := range tests {
		opts := tt.opts
		err := opts.ValidateAndSetDefaults()
		if !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("%s: error = %v, want INVALID_ARGUMENT", tt.name, err)
		}
	}

	// duplicate image name is fine when nothing is packed
	opts := Options{Vertices: 3, HexName: "x", ImageName: "x", SkipPack: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("unused image name should not be checked: %v", err)
	}
}

func TestGraphKeyOpts(t *testing.T) {
	base := Options{Vertices: 100, Edges: 400}
	if err := base.ValidateForGenerate(); err != nil {
		t.Fatal(err)
	}
	k := cache.NewDefaultKeyer()
	key := k.GraphKey(base.GraphKeyOpts(""))

	other := base
	other.Seed = Seed(7)
	if k.GraphKey(other.GraphKeyOpts("")) == key {
		t.Error("seed should change the key")
	}

	other = base
	other.Seed = Seed(0)
	if err := other.ValidateForGenerate(); err != nil {
		t.Fatal(err)
	}
	if *other.Seed != 0 {
		t.Errorf("seed 0 was replaced by %d", *other.Seed)
	}
	if k.GraphKey(other.GraphKeyOpts("")) == key {
		t.Error("seed 0 should not share the default seed's key")
	}

	other = base
	other.Policy = string(graph.PolicyPermissive)
	if k.GraphKey(other.GraphKeyOpts("")) == key {
		t.Error("policy should change the key")
	}

	// an imported graph is keyed by content; counts and seed do not apply
	a := Options{Source: SourceDIMACS, Input: "a.gr", Vertices: 5, Seed: Seed(1)}
	b := Options{Source: SourceDIMACS, Input: "b.gr", Vertices: 9, Seed: Seed(2)}
	if k.GraphKey(a.GraphKeyOpts("h")) != k.GraphKey(b.GraphKeyOpts("h")) {
		t.Error("unshuffled imports with the same content should share a key")
	}
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, nil)

	res, err := r.Execute(context.Background(), Options{Vertices: 3, Edges: 2, OutDir: dir})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	want, _ := layout.Plan(3, 2)
	if res.Params != want {
		t.Errorf("Params = %+v, want %+v", res.Params, want)
	}
	if res.Words != 16 {
		t.Errorf("Words = %d, want 16", res.Words)
	}
	if res.Image.Bytes != layout.PageSize || res.Image.Rows != 2 {
		t.Errorf("Image = %+v", res.Image)
	}

	params, err := layout.ReadTextFile(res.Paths.Params)
	if err != nil {
		t.Fatalf("ReadTextFile: %v", err)
	}
	if params != want {
		t.Errorf("params.txt = %+v, want %+v", params, want)
	}

	m, err := layout.LoadManifest(res.Paths.Manifest)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	entry, ok := m.Lookup(DefaultImageName)
	if !ok {
		t.Fatalf("manifest has no %s entry: %+v", DefaultImageName, m)
	}
	if entry.RunID != res.RunID || entry.Params != want {
		t.Errorf("manifest entry = %+v", entry)
	}

	words, err := image.DecodeFile(res.Paths.Image)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if err := image.Verify(words, res.Params, res.Graph); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestExecuteStrictSingleVertex(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, nil)

	_, err := r.Execute(context.Background(), Options{Vertices: 1, Edges: 0, OutDir: dir})
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("error = %v, want INVALID_ARGUMENT", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no artifact should be written, found %d", len(entries))
	}
}

func TestExecuteSkipPackAndRemoveHex(t *testing.T) {
	r := newTestRunner(t, nil)

	dir := t.TempDir()
	res, err := r.Execute(context.Background(), Options{Vertices: 10, Edges: 30, OutDir: dir, SkipPack: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultImageName)); !os.IsNotExist(err) {
		t.Error("image should not be written with SkipPack")
	}
	if _, err := os.Stat(res.Paths.Hex); err != nil {
		t.Errorf("hex file missing: %v", err)
	}

	dir = t.TempDir()
	res, err = r.Execute(context.Background(), Options{Vertices: 10, Edges: 30, OutDir: dir, RemoveHex: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(res.Paths.Hex); !os.IsNotExist(err) {
		t.Error("hex file should be removed with RemoveHex")
	}
	if _, err := os.Stat(res.Paths.Image); err != nil {
		t.Errorf("image missing: %v", err)
	}
}

func TestExecuteManifestAccumulates(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, nil)
	ctx := context.Background()

	for _, name := range []string{"small.bin", "large.bin", "small.bin"} {
		_, err := r.Execute(ctx, Options{Vertices: 8, Edges: 20, OutDir: dir, ImageName: name})
		if err != nil {
			t.Fatalf("Execute(%s): %v", name, err)
		}
	}
	m, err := layout.LoadManifest(filepath.Join(dir, DefaultManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Files) != 2 {
		t.Errorf("manifest has %d entries, want 2", len(m.Files))
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, nil)
	_, err := r.Execute(ctx, Options{Vertices: 3, Edges: 2, OutDir: t.TempDir()})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecuteCachesGraph(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, c)
	ctx := context.Background()
	opts := Options{Vertices: 50, Edges: 400, Source: SourceRMAT, Shuffle: true}

	var images [2][]byte
	for i := range images {
		run := opts
		run.OutDir = t.TempDir()
		res, err := r.Execute(ctx, run)
		if err != nil {
			t.Fatalf("Execute #%d: %v", i, err)
		}
		if res.CacheInfo.GraphHit != (i == 1) {
			t.Errorf("run %d: GraphHit = %v", i, res.CacheInfo.GraphHit)
		}
		if images[i], err = os.ReadFile(res.Paths.Image); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(images[0], images[1]) {
		t.Error("cached graph should produce an identical image")
	}

	opts.OutDir = t.TempDir()
	opts.Refresh = true
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.GraphHit {
		t.Error("Refresh should bypass the cache")
	}
}

const testDIMACS = `c sample
p sp 4 6
a 1 2 7
a 3 2 1
a 2 2 4
a 1 2 9
a 4 1 2
a 2 4 3
`

func TestExecuteDIMACS(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.gr")
	if err := os.WriteFile(input, []byte(testDIMACS), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{Source: SourceDIMACS, Input: input, OutDir: dir})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Params.NVert != 4 || res.Params.NInEdges != 4 {
		t.Errorf("Params = %+v, want 4 vertices and 4 edges", res.Params)
	}

	_, err = r.Execute(context.Background(), Options{Source: SourceDIMACS, Input: filepath.Join(dir, "missing.gr"), OutDir: dir})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("missing input: error = %v, want IO_ERROR", err)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opts := Options{Vertices: 64, Edges: 500, Seed: Seed(9)}
	a, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for v := range a.VertexCount() {
		if a.OutDegree(v) != b.OutDegree(v) || len(a.InEdges(v)) != len(b.InEdges(v)) {
			t.Fatalf("vertex %d differs between runs", v)
		}
	}
}

func TestGenerateSeedZero(t *testing.T) {
	ctx := context.Background()
	zero, err := Generate(ctx, Options{Vertices: 64, Edges: 500, Seed: Seed(0)})
	if err != nil {
		t.Fatal(err)
	}
	def, err := Generate(ctx, Options{Vertices: 64, Edges: 500})
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for v := range zero.VertexCount() {
		if !slices.Equal(zero.InEdges(v), def.InEdges(v)) {
			same = false
			break
		}
	}
	if same {
		t.Error("seed 0 generated the same graph as the default seed")
	}
}

func TestExecuteCanceledDuringGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	var calls int
	opts := Options{
		Vertices:      1000,
		Edges:         50_000,
		OutDir:        dir,
		ProgressEvery: 100,
		Progress: func(accepted, target uint64) {
			calls++
			cancel()
		},
	}

	r := newTestRunner(t, nil)
	_, err := r.Execute(ctx, opts)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("progress called %d times, want 1", calls)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no artifact should be written, found %d", len(entries))
	}
}

func TestExecuteEncodeFailureKeepsPreviousRecord(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Vertices: 3, Edges: 2, OutDir: dir})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}

	// A directory where the hex file belongs makes the encoder fail.
	if err := os.Remove(first.Paths.Hex); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(first.Paths.Hex, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err = r.Execute(ctx, Options{Vertices: 40, Edges: 300, OutDir: dir})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("error = %v, want IO_ERROR", err)
	}

	params, err := layout.ReadTextFile(first.Paths.Params)
	if err != nil {
		t.Fatalf("ReadTextFile: %v", err)
	}
	if params != first.Params {
		t.Errorf("params.txt = %+v, want the first run's %+v", params, first.Params)
	}
	m, err := layout.LoadManifest(first.Paths.Manifest)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := m.Lookup(DefaultImageName)
	if !ok || entry.RunID != first.RunID || entry.Params != first.Params {
		t.Errorf("manifest entry = %+v, want the first run's", entry)
	}
}

func TestExecutePackFailureLeavesNoRecord(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, DefaultImageName), 0o755); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, nil)
	_, err := r.Execute(context.Background(), Options{Vertices: 3, Edges: 2, OutDir: dir})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("error = %v, want IO_ERROR", err)
	}
	for _, name := range []string{DefaultHexName, DefaultParamsName, DefaultManifestName} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist after a failed pack", name)
		}
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnGenerateComplete(_ context.Context, source string, _ uint64, _ time.Duration, err error) {
	h.events = append(h.events, "generate:"+source)
}

func (h *recordingHooks) OnEncodeComplete(context.Context, string, uint64, time.Duration, error) {
	h.events = append(h.events, "encode")
}

func (h *recordingHooks) OnPackComplete(context.Context, string, uint64, time.Duration, error) {
	h.events = append(h.events, "pack")
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, nil)
	if _, err := r.Execute(context.Background(), Options{Vertices: 3, Edges: 2, OutDir: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	want := []string{"generate:uniform", "encode", "pack"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("events = %v, want %v", hooks.events, want)
			break
		}
	}
}
