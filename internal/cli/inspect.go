package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphimg/pkg/graph"
	pkgio "github.com/matzehuels/graphimg/pkg/io"
	"github.com/matzehuels/graphimg/pkg/layout"
	"github.com/matzehuels/graphimg/pkg/render/nodelink"
)

// inspectFlags holds flags for the inspect command.
type inspectFlags struct {
	generateFlags
	dot      string
	svg      string
	edges    string
	detailed bool
}

// inspectCommand creates the inspect command, which builds a graph and
// reports on it without writing an image.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a generated graph and optionally draw it",
		Long: `Inspect builds the graph generate would build for the same options and
prints its degree statistics and layout. It can also export the graph as
a JSON edge list, a Graphviz DOT file, or an SVG node-link diagram.

Diagrams are limited to 500 vertices.`,
		Example: `  graphimg inspect -n 8 -e 20 --svg graph.svg --detailed
  graphimg inspect -n 1000 -e 8000 --edges edges.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.generateOptions(cmd, flags.generateFlags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, hit, err := runner.GenerateWithCacheInfo(ctx, opts)
			if err != nil {
				return err
			}
			p, err := layout.Plan(g.VertexCount(), g.EdgeCount())
			if err != nil {
				return err
			}

			printSuccess("Built graph")
			printStats(g.VertexCount(), g.EdgeCount(), hit)
			printNewline()
			printDegrees(summarize(g))
			printNewline()
			printParams(p)

			if flags.edges == "" && flags.dot == "" && flags.svg == "" {
				return nil
			}
			printNewline()
			return c.exportGraph(cmd, g, flags)
		},
	}

	addGraphFlags(cmd, &flags.generateFlags)
	cmd.Flags().StringVar(&flags.edges, "edges", "", "write the graph as a JSON edge list")
	cmd.Flags().StringVar(&flags.dot, "dot", "", "write a Graphviz DOT file")
	cmd.Flags().StringVar(&flags.svg, "svg", "", "write an SVG node-link diagram")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label nodes with their vertex-table entry and degrees")

	return cmd
}

// exportGraph writes the requested edge list and diagrams.
func (c *CLI) exportGraph(cmd *cobra.Command, g *graph.Graph, flags inspectFlags) error {
	if flags.edges != "" {
		if err := pkgio.ExportEdgeList(g, flags.edges); err != nil {
			return err
		}
		printFile(flags.edges)
	}
	if flags.dot == "" && flags.svg == "" {
		return nil
	}

	dot, err := nodelink.ToDOT(g, nodelink.Options{Detailed: flags.detailed})
	if err != nil {
		return err
	}
	if flags.dot != "" {
		if err := writeArtifact(flags.dot, []byte(dot)); err != nil {
			return err
		}
		printFile(flags.dot)
	}
	if flags.svg != "" {
		spinner := newSpinnerWithContext(cmd.Context(), "Rendering diagram...")
		spinner.Start()
		svg, err := nodelink.RenderSVG(cmd.Context(), dot)
		spinner.Stop()
		if err != nil {
			return err
		}
		if err := writeArtifact(flags.svg, svg); err != nil {
			return err
		}
		printFile(flags.svg)
	}
	return nil
}

// writeArtifact writes data to path atomically.
func writeArtifact(path string, data []byte) error {
	f, err := pkgio.Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Commit()
}

// degreeSummary holds the degree statistics shown by inspect.
type degreeSummary struct {
	maxIn, maxOut uint64
	isolated      uint64
	selfLoops     uint64
}

// summarize computes degree statistics of g.
func summarize(g *graph.Graph) degreeSummary {
	var s degreeSummary
	for v := range g.VertexCount() {
		in := g.InEdges(v)
		out := g.OutDegree(v)
		s.maxIn = max(s.maxIn, uint64(len(in)))
		s.maxOut = max(s.maxOut, out)
		if len(in) == 0 && out == 0 {
			s.isolated++
		}
		for _, src := range in {
			if src == v {
				s.selfLoops++
			}
		}
	}
	return s
}

// printDegrees prints a degree summary.
func printDegrees(s degreeSummary) {
	printKeyValue("max in", fmt.Sprint(s.maxIn))
	printKeyValue("max out", fmt.Sprint(s.maxOut))
	printKeyValue("isolated", fmt.Sprint(s.isolated))
	printKeyValue("self-loops", fmt.Sprint(s.selfLoops))
}
