package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/graph"
	"github.com/matzehuels/graphimg/pkg/pipeline"
)

// generateFlags holds flags for the generate command.
type generateFlags struct {
	vertices  uint64
	edges     uint64
	policy    string
	source    string
	input     string
	seed      uint64
	shuffle   bool
	outDir    string
	name      string
	profile   string
	config    string
	noPack    bool
	removeHex bool
	noCache   bool
	refresh   bool
}

// generateCommand creates the generate command for producing a graph image.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a graph and write its memory image",
		Long: `Generate a synthetic directed graph and write the accelerator input files:

  params.txt       layout record (n_vert, n_inedges, vaddr, ieaddr, waddr0, waddr1)
  input_data.json  layout records of every image in the directory
  mem_init.hex     hexadecimal memory image
  graph.bin        packed binary image (4096-byte pages)

Edges are drawn uniformly at random by default, from an R-MAT power-law
distribution with --source rmat, or imported from a DIMACS file with
--source dimacs --input FILE.

Options may come from a profile in a config file (.toml, .yaml or .json).
Flags override the profile.`,
		Example: `  # 1000 vertices, 8000 edges
  graphimg generate -n 1000 -e 8000 --out-dir out

  # Allow self-loops and parallel edges
  graphimg generate -n 4 -e 64 --policy permissive

  # Power-law graph from a profile
  graphimg generate --config graphimg.toml --profile powerlaw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.generateOptions(cmd, flags)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd, opts, flags.noCache)
		},
	}

	addGraphFlags(cmd, &flags)
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "output directory (default: $"+envOutDir+" or .)")
	cmd.Flags().StringVar(&flags.name, "name", "", "manifest entry name (default: image file name)")
	cmd.Flags().BoolVar(&flags.noPack, "no-pack", false, "stop after writing mem_init.hex")
	cmd.Flags().BoolVar(&flags.removeHex, "remove-hex", false, "delete mem_init.hex after packing")

	return cmd
}

// addGraphFlags registers the flags that describe the graph itself. They
// are shared by generate and inspect.
func addGraphFlags(cmd *cobra.Command, flags *generateFlags) {
	cmd.Flags().Uint64VarP(&flags.vertices, "vertices", "n", 0, "number of vertices")
	cmd.Flags().Uint64VarP(&flags.edges, "edges", "e", 0, "number of edges")
	cmd.Flags().StringVar(&flags.policy, "policy", string(graph.PolicyStrict), "edge policy: strict (no self-loops or duplicates), permissive")
	cmd.Flags().StringVar(&flags.source, "source", pipeline.SourceUniform, "edge source: uniform, rmat, dimacs")
	cmd.Flags().StringVar(&flags.input, "input", "", "DIMACS file for --source dimacs")
	cmd.Flags().Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().BoolVar(&flags.shuffle, "shuffle", false, "shuffle each vertex's incoming-edge list")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "profile to use from the config file")
	cmd.Flags().StringVar(&flags.config, "config", "", "config file with profiles (default: $"+envConfig+")")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "regenerate even if the graph is cached")
}

// generateOptions merges the config profile, environment and flags into
// pipeline options. Flags set on the command line win over the profile.
func (c *CLI) generateOptions(cmd *cobra.Command, flags generateFlags) (pipeline.Options, error) {
	opts, err := c.loadProfile(flags.config, flags.profile)
	if err != nil {
		return opts, err
	}

	set := cmd.Flags().Changed
	if set("vertices") {
		opts.Vertices = flags.vertices
	}
	if set("edges") {
		opts.Edges = flags.edges
	}
	if set("policy") || opts.Policy == "" {
		opts.Policy = flags.policy
	}
	if set("source") || opts.Source == "" {
		opts.Source = flags.source
	}
	if set("input") {
		opts.Input = flags.input
	}
	if set("seed") || opts.Seed == nil {
		opts.Seed = pipeline.Seed(flags.seed)
	}
	if set("shuffle") {
		opts.Shuffle = flags.shuffle
	}
	if set("name") {
		opts.Name = flags.name
	}
	if set("no-pack") {
		opts.SkipPack = flags.noPack
	}
	if set("remove-hex") {
		opts.RemoveHex = flags.removeHex
	}
	if set("refresh") {
		opts.Refresh = flags.refresh
	}

	switch {
	case set("out-dir"):
		opts.OutDir = flags.outDir
	case opts.OutDir == "":
		opts.OutDir = os.Getenv(envOutDir)
	}

	if opts.Source != pipeline.SourceDIMACS && opts.Vertices == 0 {
		return opts, errors.New(errors.ErrCodeInvalidArgument, "--vertices is required")
	}
	return opts, nil
}

// loadProfile reads options from the config file, if one is given by flag
// or environment. With several profiles and no default, an interactive
// terminal shows a picker.
func (c *CLI) loadProfile(path, name string) (pipeline.Options, error) {
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		if name != "" {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidArgument, "--profile needs --config")
		}
		return pipeline.Options{}, nil
	}

	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return pipeline.Options{}, err
	}

	if name == "" && cfg.NeedsChoice() && isatty.IsTerminal(os.Stdin.Fd()) {
		name, err = pickProfile(cfg)
		if err != nil {
			return pipeline.Options{}, err
		}
	}

	opts, err := cfg.Profile(name)
	if err != nil {
		return opts, err
	}
	// Relative paths in a profile are relative to the config file.
	if opts.Input != "" && !filepath.IsAbs(opts.Input) {
		opts.Input = filepath.Join(filepath.Dir(path), opts.Input)
	}
	c.Logger.Debug("loaded profile", "config", path, "profile", name)
	return opts, nil
}

// pickProfile runs the interactive profile picker.
func pickProfile(cfg *pipeline.Config) (string, error) {
	final, err := tea.NewProgram(NewProfileListModel(cfg)).Run()
	if err != nil {
		return "", fmt.Errorf("profile picker: %w", err)
	}
	m, ok := final.(ProfileListModel)
	if !ok || m.Selected == "" {
		return "", errors.New(errors.ErrCodeInvalidArgument, "no profile selected")
	}
	return m.Selected, nil
}

// runGenerate executes the pipeline behind a spinner and prints the result.
func (c *CLI) runGenerate(cmd *cobra.Command, opts pipeline.Options, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Generating graph...")
	opts.Progress = func(accepted, target uint64) {
		spinner.Update(fmt.Sprintf("Generating graph... %d/%d edges", accepted, target))
	}

	prog := newProgress(c.Logger)
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Generation failed: " + errors.UserMessage(err))
		return err
	}
	spinner.Stop()
	prog.done("Pipeline finished")

	printSuccess("Generated graph image")
	printStats(result.Graph.VertexCount(), result.Graph.EdgeCount(), result.CacheInfo.GraphHit)
	printNewline()
	printParams(result.Params)
	printNewline()
	printFile(result.Paths.Params)
	printFile(result.Paths.Manifest)
	if !opts.RemoveHex {
		printFile(result.Paths.Hex)
	}
	if result.Paths.Image != "" {
		printFile(result.Paths.Image)
		printDetail("%d rows, %d padding rows, %d bytes", result.Image.Rows, result.Image.PadRows, result.Image.Bytes)
	}

	printNewline()
	if result.Paths.Image != "" {
		printNextStep("Verify", fmt.Sprintf("graphimg verify %s --params %s", result.Paths.Image, result.Paths.Params))
	} else {
		printNextStep("Pack", fmt.Sprintf("graphimg pack %s", result.Paths.Hex))
	}
	return nil
}
