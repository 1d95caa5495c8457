package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphimg/pkg/errors"
	"github.com/matzehuels/graphimg/pkg/image"
	"github.com/matzehuels/graphimg/pkg/layout"
	"github.com/matzehuels/graphimg/pkg/pipeline"
)

// verifyCommand creates the verify command, which decodes a binary image
// and checks it against its layout record.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		paramsPath   string
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "verify [graph.bin]",
		Short: "Check a binary image against its layout record",
		Long: `Verify decodes a packed image and checks that it is consistent with its
layout record: the size matches the layout, vertex-table offsets are
monotone and agree with the out-degrees, every edge names a valid vertex,
and all padding is zero.

The layout record is read from --params, from the image's entry in
--manifest, or from params.txt next to the image.`,
		Example: `  graphimg verify out/graph.bin
  graphimg verify out/graph.bin --manifest out/input_data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pipeline.DefaultImageName
			if len(args) == 1 {
				path = args[0]
			}

			p, err := verifyParams(path, paramsPath, manifestPath)
			if err != nil {
				return err
			}

			words, err := image.DecodeFile(path)
			if err != nil {
				return err
			}
			if err := image.Verify(words, p, nil); err != nil {
				printError("%s does not match its layout", path)
				return err
			}

			printSuccess("%s is consistent", path)
			printStats(p.NVert, p.NInEdges, false)
			printDetail("%d words, %d bytes", len(words), p.ImageBytes())
			return nil
		},
	}

	cmd.Flags().StringVar(&paramsPath, "params", "", "layout record (default: params.txt next to the image)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "manifest holding the image's layout record")
	cmd.MarkFlagsMutuallyExclusive("params", "manifest")

	return cmd
}

// verifyParams finds the layout record of the image at path.
func verifyParams(path, paramsPath, manifestPath string) (layout.Params, error) {
	if manifestPath != "" {
		m, err := layout.LoadManifest(manifestPath)
		if err != nil {
			return layout.Params{}, err
		}
		name := filepath.Base(path)
		e, ok := m.Lookup(name)
		if !ok {
			return layout.Params{}, errors.New(errors.ErrCodeInvalidArgument,
				"%s has no entry for %q", manifestPath, name)
		}
		return e.Params, nil
	}
	if paramsPath == "" {
		paramsPath = filepath.Join(filepath.Dir(path), pipeline.DefaultParamsName)
	}
	return layout.ReadTextFile(paramsPath)
}
