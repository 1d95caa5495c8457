// Package pipeline runs the graph → layout → hex → image pipeline for graphimg.
//
// This package implements the complete generate → plan → encode → pack
// sequence used by the CLI. By centralizing this logic, every entry point
// produces the same artifacts for the same options.
//
// # Architecture
//
// The pipeline consists of four stages, run strictly in order:
//
//  1. Generate: build the graph (uniform, R-MAT or DIMACS import)
//  2. Plan: compute the layout record and write params.txt and input_data.json
//  3. Encode: write the hexadecimal intermediate form (mem_init.hex)
//  4. Pack: re-read the intermediate form and write the binary image (graph.bin)
//
// Each stage finishes its artifact on disk before the next begins.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Vertices: 1000,
//	    Edges:    8000,
//	    OutDir:   "out",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Params)
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphimg/pkg/cache"
	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/image"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultOutDir is where artifacts are written when no directory is given.
	DefaultOutDir = "."

	// Default artifact names, as expected by the benchmark runner.
	DefaultHexName      = "mem_init.hex"
	DefaultImageName    = "graph.bin"
	DefaultParamsName   = "params.txt"
	DefaultManifestName = "input_data.json"
)

// Source constants name where edges come from.
const (
	SourceUniform = "uniform"
	SourceRMAT    = "rmat"
	SourceDIMACS  = "dimacs"
)

// ValidSources is the set of supported edge sources.
var ValidSources = map[string]bool{
	SourceUniform: true,
	SourceRMAT:    true,
	SourceDIMACS:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// It is read from config profiles, so every field carries json, toml and
// yaml tags.
type Options struct {
	// Generate options
	Vertices uint64      `json:"vertices,omitempty" toml:"vertices" yaml:"vertices,omitempty"`
	Edges    uint64      `json:"edges,omitempty" toml:"edges" yaml:"edges,omitempty"`
	Policy   string      `json:"policy,omitempty" toml:"policy" yaml:"policy,omitempty"`
	Source   string      `json:"source,omitempty" toml:"source" yaml:"source,omitempty"`
	Input    string      `json:"input,omitempty" toml:"input" yaml:"input,omitempty"` // DIMACS file for SourceDIMACS
	Seed     *uint64     `json:"seed,omitempty" toml:"seed" yaml:"seed,omitempty"`    // nil means DefaultSeed; 0 is a valid seed
	RMAT     RMATOptions `json:"rmat,omitempty" toml:"rmat" yaml:"rmat,omitempty"`
	Shuffle  bool        `json:"shuffle,omitempty" toml:"shuffle" yaml:"shuffle,omitempty"`
	Refresh  bool        `json:"refresh,omitempty" toml:"refresh" yaml:"refresh,omitempty"`

	// Output options
	OutDir       string `json:"out_dir,omitempty" toml:"out_dir" yaml:"out_dir,omitempty"`
	Name         string `json:"name,omitempty" toml:"name" yaml:"name,omitempty"` // manifest entry; defaults to ImageName
	HexName      string `json:"hex_name,omitempty" toml:"hex_name" yaml:"hex_name,omitempty"`
	ImageName    string `json:"image_name,omitempty" toml:"image_name" yaml:"image_name,omitempty"`
	ParamsName   string `json:"params_name,omitempty" toml:"params_name" yaml:"params_name,omitempty"`
	ManifestName string `json:"manifest_name,omitempty" toml:"manifest_name" yaml:"manifest_name,omitempty"`
	SkipPack     bool   `json:"skip_pack,omitempty" toml:"skip_pack" yaml:"skip_pack,omitempty"`
	RemoveHex    bool   `json:"remove_hex,omitempty" toml:"remove_hex" yaml:"remove_hex,omitempty"` // delete mem_init.hex once packed

	// Runtime options (not serialized)
	Logger        *log.Logger                   `json:"-" toml:"-" yaml:"-"`
	Progress      func(accepted, target uint64) `json:"-" toml:"-" yaml:"-"` // edge-loop progress
	ProgressEvery uint64                        `json:"-" toml:"-" yaml:"-"` // draws between progress reports and cancellation checks; 0 means graph.DefaultProgressEvery

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// RMATOptions holds the quadrant probabilities of the R-MAT source. The
// fourth quadrant gets the remainder.
type RMATOptions struct {
	A float64 `json:"a,omitempty" toml:"a" yaml:"a,omitempty"`
	B float64 `json:"b,omitempty" toml:"b" yaml:"b,omitempty"`
	C float64 `json:"c,omitempty" toml:"c" yaml:"c,omitempty"`
}

// Paths are the artifact locations of one run.
type Paths struct {
	Hex      string `json:"hex"`
	Image    string `json:"image,omitempty"`
	Params   string `json:"params"`
	Manifest string `json:"manifest"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and in the manifest entry.
	RunID string

	// Graph is the generated graph.
	Graph *graph.Graph

	// Params is the layout record handed to the benchmark runner.
	Params layout.Params

	// Paths lists the artifacts written.
	Paths Paths

	// Words is the number of words in the intermediate form.
	Words uint64

	// Image describes the packing stage; zero when packing was skipped.
	Image image.Stats

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	GenerateTime time.Duration
	EncodeTime   time.Duration
	PackTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit bool // Whether the graph came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateSource checks that an edge source is valid.
func ValidateSource(source string) error {
	if !ValidSources[source] {
		return errors.New(errors.ErrCodeInvalidArgument,
			"invalid source: %q (must be one of: uniform, rmat, dimacs)", source)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	o.SetOutputDefaults()
	if err := o.validateOutput(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate checks the fields the generate stage needs and fills
// in their defaults.
func (o *Options) ValidateForGenerate() error {
	if o.Policy == "" {
		o.Policy = string(graph.PolicyStrict)
	}
	if _, err := graph.ParsePolicy(o.Policy); err != nil {
		return err
	}
	if o.Source == "" {
		o.Source = SourceUniform
	}
	if err := ValidateSource(o.Source); err != nil {
		return err
	}
	if o.Seed == nil {
		o.Seed = Seed(DefaultSeed)
	}

	switch o.Source {
	case SourceDIMACS:
		if o.Input == "" {
			return errors.New(errors.ErrCodeInvalidArgument, "input is required for the dimacs source")
		}
	default:
		if o.Vertices == 0 {
			return errors.New(errors.ErrCodeInvalidArgument, "vertex count must be positive")
		}
	}

	if o.Source == SourceRMAT && o.RMAT == (RMATOptions{}) {
		o.RMAT = RMATOptions{A: graph.DefaultRMATA, B: graph.DefaultRMATB, C: graph.DefaultRMATC}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetOutputDefaults sets default artifact names and locations.
func (o *Options) SetOutputDefaults() {
	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
	if o.HexName == "" {
		o.HexName = DefaultHexName
	}
	if o.ImageName == "" {
		o.ImageName = DefaultImageName
	}
	if o.ParamsName == "" {
		o.ParamsName = DefaultParamsName
	}
	if o.ManifestName == "" {
		o.ManifestName = DefaultManifestName
	}
	if o.Name == "" {
		o.Name = o.ImageName
		if o.SkipPack {
			o.Name = o.HexName
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) validateOutput() error {
	names := []string{o.HexName, o.ParamsName, o.ManifestName}
	if !o.SkipPack {
		names = append(names, o.ImageName)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if err := errors.ValidateArtifactName(n); err != nil {
			return err
		}
		if seen[n] {
			return errors.New(errors.ErrCodeInvalidArgument, "artifact name %q is used twice", n)
		}
		seen[n] = true
	}
	if o.RemoveHex && o.SkipPack {
		return errors.New(errors.ErrCodeInvalidArgument, "remove_hex needs the pack stage")
	}
	return nil
}

// policy returns the parsed edge policy. Call after validation.
func (o *Options) policy() graph.Policy {
	p, _ := graph.ParsePolicy(o.Policy)
	return p
}

func (o *Options) seed() uint64 {
	if o.Seed == nil {
		return DefaultSeed
	}
	return *o.Seed
}

// Seed returns a pointer to v for use in [Options.Seed].
func Seed(v uint64) *uint64 { return &v }

// Paths returns the artifact locations for these options.
func (o *Options) Paths() Paths {
	p := Paths{
		Hex:      filepath.Join(o.OutDir, o.HexName),
		Params:   filepath.Join(o.OutDir, o.ParamsName),
		Manifest: filepath.Join(o.OutDir, o.ManifestName),
	}
	if !o.SkipPack {
		p.Image = filepath.Join(o.OutDir, o.ImageName)
	}
	return p
}

// GraphKeyOpts returns cache key options for graph generation. inputHash
// is the content hash of the imported file, if any.
func (o *Options) GraphKeyOpts(inputHash string) cache.GraphKeyOpts {
	k := cache.GraphKeyOpts{
		Policy:  o.Policy,
		Source:  o.Source,
		Shuffle: o.Shuffle,
		Input:   inputHash,
	}
	if o.Shuffle || o.Source != SourceDIMACS {
		k.Seed = o.seed()
	}
	if o.Source != SourceDIMACS {
		k.Vertices, k.Edges = o.Vertices, o.Edges
	}
	if o.Source == SourceRMAT {
		k.RMAT = [3]float64{o.RMAT.A, o.RMAT.B, o.RMAT.C}
	}
	return k
}
