package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/genemap/genemap/pkg/buildinfo"
)

// Execute runs the genemap CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (render, tree,
// aggregate, serve), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "genemap",
		Short:        "Genemap renders maps of genes in genomes",
		Long:         `Genemap composes multi-panel displays showing the distribution of annotated genes across microbial genomes, builds genome dendrograms, and manages the aggregated data behind the interactive viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newAggregateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
