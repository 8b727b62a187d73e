package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/njtree"
	"github.com/genemap/genemap/pkg/table"
)

// newTreeCmd creates the tree command for rendering a standalone
// neighbor-joining dendrogram from a distance matrix, outside the composed
// figure. The output format follows the file extension: .svg, .png, or .dot.
func newTreeCmd() *cobra.Command {
	var distmat, output string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Render a neighbor-joining tree from a distance matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, distmat, output)
		},
	}

	cmd.Flags().StringVar(&distmat, "distmat", "", "square distance matrix in CSV format")
	cmd.Flags().StringVarP(&output, "output", "o", "tree.svg", "output file (.svg, .png, or .dot)")
	_ = cmd.MarkFlagRequired("distmat")
	return cmd
}

func runTree(cmd *cobra.Command, distmat, output string) error {
	logger := loggerFromContext(cmd.Context())
	tracker := newProgress(logger)

	logger.Info("reading distance matrix", "path", distmat)
	dm, err := table.ReadMatrix(distmat)
	if err != nil {
		return err
	}

	tree, err := njtree.Build(dm.RowIDs, dm)
	if err != nil {
		return err
	}
	dot := tree.ToDOT()

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".dot":
		data = []byte(dot)
	case ".svg":
		data, err = njtree.RenderSVG(dot)
	case ".png":
		data, err = njtree.RenderPNG(dot)
	default:
		return errors.New(errors.ErrCodeInvalidArgument,
			"unsupported output extension %q (want .svg, .png, or .dot)", ext)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", output)
	}
	printFile(output)
	tracker.done(fmt.Sprintf("Built tree over %d genomes", len(dm.RowIDs)))
	return nil
}
