package cli

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/layout"
)

// Output formats of the layout command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// layoutCommand creates the layout command, which prints the region
// offsets for given vertex and edge counts without generating a graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		vertices uint64
		edges    uint64
		format   string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the image layout for a vertex and edge count",
		Long: `Layout computes the parameter record for a graph of the given size:

  ieaddr = align64(16 * vertices)
  waddr0 = ieaddr + 8 * edges
  waddr1 = ieaddr + 8 * vertices`,
		Example: `  graphimg layout -n 1000 -e 8000
  graphimg layout -n 1000 -e 8000 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := layout.Plan(vertices, edges)
			if err != nil {
				return err
			}
			return writeParams(cmd.OutOrStdout(), p, format)
		},
	}

	cmd.Flags().Uint64VarP(&vertices, "vertices", "n", 0, "number of vertices")
	cmd.Flags().Uint64VarP(&edges, "edges", "e", 0, "number of edges")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml, toml")

	_ = cmd.MarkFlagRequired("vertices")
	_ = cmd.MarkFlagRequired("edges")

	return cmd
}

// writeParams writes p to w in the given format. The text format is the
// params.txt record.
func writeParams(w io.Writer, p layout.Params, format string) error {
	switch format {
	case formatText:
		return p.WriteText(w)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(p)
	case formatTOML:
		return toml.NewEncoder(w).Encode(p)
	default:
		return errors.New(errors.ErrCodeInvalidArgument,
			"invalid format: %q (must be one of: text, json, yaml, toml)", format)
	}
}
