package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphimg/pkg/pipeline"
)

// packCommand creates the pack command, which turns a hexadecimal memory
// image into the binary one.
func (c *CLI) packCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack [mem_init.hex]",
		Short: "Pack a hexadecimal memory image into graph.bin",
		Long: `Pack reads whitespace-separated 16-digit hexadecimal words, reverses the
word order within every row of 8, writes each word as 8 little-endian bytes
and pads the result with zero rows to a multiple of 4096 bytes.

A final row with fewer than 8 words is dropped. Input without a single
complete row is an error.`,
		Example: `  graphimg pack
  graphimg pack out/mem_init.hex -o out/graph.bin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := pipeline.DefaultHexName
			if len(args) == 1 {
				in = args[0]
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(in), pipeline.DefaultImageName)
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			prog := newProgress(c.Logger)
			stats, err := runner.Pack(cmd.Context(), in, output)
			if err != nil {
				return err
			}
			prog.done("Packed " + output)

			printSuccess("Packed %s", in)
			printFile(output)
			printDetail("%d rows, %d padding rows, %d bytes", stats.Rows, stats.PadRows, stats.Bytes)
			if stats.DiscardedTokens > 0 {
				printWarning("Dropped %d words of an incomplete final row", stats.DiscardedTokens)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: graph.bin next to the input)")

	return cmd
}
