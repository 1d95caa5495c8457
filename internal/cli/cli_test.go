package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// runCommand executes the root command with args and returns what the
// command wrote to its output stream.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"cache", "completion", "generate", "inspect", "layout", "pack", "verify"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("subcommands = %v, want %v", got, want)
	}
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCommand(t, "layout", "-n", "2", "-e", "2")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	want := "n_vert: 2\nn_inedges: 2\nvaddr: 0\nieaddr: 64\nwaddr0: 80\nwaddr1: 80\n"
	if out != want {
		t.Errorf("layout output =\n%s\nwant\n%s", out, want)
	}
}

func TestLayoutCommandFormats(t *testing.T) {
	out, err := runCommand(t, "layout", "-n", "5", "-e", "3", "--format", "json")
	if err != nil {
		t.Fatalf("layout --format json: %v", err)
	}
	var p layout.Params
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	want, _ := layout.Plan(5, 3)
	if p != want {
		t.Errorf("json params = %+v, want %+v", p, want)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"yaml", "ieaddr: 128"},
		{"toml", "ieaddr = 128"},
	}
	for _, tt := range tests {
		out, err := runCommand(t, "layout", "-n", "5", "-e", "3", "-f", tt.format)
		if err != nil {
			t.Fatalf("layout --format %s: %v", tt.format, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s output %q should contain %q", tt.format, out, tt.want)
		}
	}

	_, err = runCommand(t, "layout", "-n", "5", "-e", "3", "-f", "xml")
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("unknown format: error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestLayoutCommandRequiresCounts(t *testing.T) {
	if _, err := runCommand(t, "layout", "-n", "5"); err == nil {
		t.Error("layout without --edges should fail")
	}
}

func TestGenerateVerifyPack(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCommand(t, "generate", "-n", "2", "-e", "1", "--out-dir", dir, "--no-cache"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	p, err := layout.ReadTextFile(filepath.Join(dir, "params.txt"))
	if err != nil {
		t.Fatalf("read params: %v", err)
	}
	want, _ := layout.Plan(2, 1)
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}

	image, err := os.ReadFile(filepath.Join(dir, "graph.bin"))
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if len(image) != layout.PageSize {
		t.Errorf("image is %d bytes, want %d", len(image), layout.PageSize)
	}
	if _, err := os.Stat(filepath.Join(dir, "input_data.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}

	if _, err := runCommand(t, "verify", filepath.Join(dir, "graph.bin")); err != nil {
		t.Errorf("verify: %v", err)
	}
	if _, err := runCommand(t, "verify", filepath.Join(dir, "graph.bin"),
		"--manifest", filepath.Join(dir, "input_data.json")); err != nil {
		t.Errorf("verify --manifest: %v", err)
	}

	again := filepath.Join(dir, "again.bin")
	if _, err := runCommand(t, "pack", filepath.Join(dir, "mem_init.hex"), "-o", again); err != nil {
		t.Fatalf("pack: %v", err)
	}
	repacked, err := os.ReadFile(again)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(repacked, image) {
		t.Error("pack of mem_init.hex should reproduce graph.bin")
	}
}

func TestVerifyCommandDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCommand(t, "generate", "-n", "4", "-e", "6", "--out-dir", dir, "--no-cache"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	path := filepath.Join(dir, "graph.bin")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[4000] = 0xFF // page padding
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = runCommand(t, "verify", path)
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("verify of a corrupt image: error = %v, want PARSE_ERROR", err)
	}
}

func TestPackRejectsInputWithoutRows(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"whitespace only", " \n\t\n", errors.ErrCodeIO},
		{"short tail only", strings.Repeat("0000000000000001", 3) + "\n", errors.ErrCodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "mem_init.hex")
			if err := os.WriteFile(in, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := runCommand(t, "pack", in)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if _, err := os.Stat(filepath.Join(dir, "graph.bin")); !os.IsNotExist(err) {
				t.Errorf("graph.bin should not be written, stat error = %v", err)
			}
		})
	}
}

func TestGenerateNoPack(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCommand(t, "generate", "-n", "3", "-e", "2", "-o", dir, "--no-cache", "--no-pack"); err != nil {
		t.Fatalf("generate --no-pack: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mem_init.hex")); err != nil {
		t.Errorf("mem_init.hex missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "graph.bin")); !os.IsNotExist(err) {
		t.Errorf("graph.bin should not exist with --no-pack, stat error = %v", err)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing vertices", []string{"-e", "1"}},
		{"strict single vertex", []string{"-n", "1", "-e", "0"}},
		{"too many strict edges", []string{"-n", "3", "-e", "7"}},
		{"bad policy", []string{"-n", "3", "-e", "1", "--policy", "lenient"}},
		{"profile without config", []string{"-n", "3", "-e", "1", "--profile", "small"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envConfig, "")
			dir := t.TempDir()
			args := append([]string{"generate", "--no-cache", "--out-dir", dir}, tt.args...)
			_, err := runCommand(t, args...)
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Fatalf("error = %v, want INVALID_ARGUMENT", err)
			}
			if _, err := os.Stat(filepath.Join(dir, "params.txt")); !os.IsNotExist(err) {
				t.Error("a rejected run should not write params.txt")
			}
		})
	}
}

const testConfig = `
default = "small"

[profiles.small]
vertices = 4
edges = 6

[profiles.big]
vertices = 64
edges = 500
policy = "permissive"
`

func TestGenerateProfile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "graphimg.toml")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		wantVert   uint64
		wantEdges  uint64
		fromEnvCfg bool
	}{
		{"default profile", nil, 4, 6, false},
		{"named profile", []string{"--profile", "big"}, 64, 500, false},
		{"flag overrides profile", []string{"--profile", "big", "-e", "3"}, 64, 3, false},
		{"config from environment", nil, 4, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := []string{"generate", "--no-cache", "--out-dir", dir}
			if tt.fromEnvCfg {
				t.Setenv(envConfig, cfgPath)
			} else {
				t.Setenv(envConfig, "")
				args = append(args, "--config", cfgPath)
			}
			args = append(args, tt.args...)

			if _, err := runCommand(t, args...); err != nil {
				t.Fatalf("generate: %v", err)
			}
			p, err := layout.ReadTextFile(filepath.Join(dir, "params.txt"))
			if err != nil {
				t.Fatal(err)
			}
			if p.NVert != tt.wantVert || p.NInEdges != tt.wantEdges {
				t.Errorf("params = %d vertices, %d edges; want %d, %d",
					p.NVert, p.NInEdges, tt.wantVert, tt.wantEdges)
			}
		})
	}
}

func TestGenerateOutDirFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envOutDir, dir)
	t.Setenv(envConfig, "")

	if _, err := runCommand(t, "generate", "-n", "3", "-e", "2", "--no-cache"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "graph.bin")); err != nil {
		t.Errorf("graph.bin should be written to %s: %v", envOutDir, err)
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	dot := filepath.Join(dir, "graph.dot")
	edges := filepath.Join(dir, "edges.json")

	if _, err := runCommand(t, "inspect", "-n", "5", "-e", "8", "--no-cache",
		"--dot", dot, "--edges", edges, "--detailed"); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("dot output should start with a digraph, got %q", string(data[:min(len(data), 20)]))
	}

	data, err = os.ReadFile(edges)
	if err != nil {
		t.Fatalf("read edge list: %v", err)
	}
	var list struct {
		Vertices uint64 `json:"vertices"`
		Edges    []struct {
			From, To uint64
		} `json:"edges"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("decode edge list: %v", err)
	}
	if list.Vertices != 5 || len(list.Edges) != 8 {
		t.Errorf("edge list has %d vertices and %d edges, want 5 and 8", list.Vertices, len(list.Edges))
	}
}

func TestSummarize(t *testing.T) {
	g, err := graph.Build(4, 4, graph.PolicyPermissive, graph.NewScripted(
		graph.Edge{Src: 0, Dst: 1},
		graph.Edge{Src: 0, Dst: 2},
		graph.Edge{Src: 2, Dst: 2},
		graph.Edge{Src: 1, Dst: 2},
	), graph.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}

	got := summarize(g)
	want := degreeSummary{maxIn: 3, maxOut: 2, isolated: 1, selfLoops: 1}
	if got != want {
		t.Errorf("summarize = %+v, want %+v", got, want)
	}
}
