package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genemap/genemap/pkg/aggregate"
	"github.com/genemap/genemap/pkg/store"
)

// newAggregateCmd creates the aggregate command for condensing pipeline
// outputs into a Redis store for the interactive viewer.
func newAggregateCmd() *cobra.Command {
	var (
		opts      aggregate.Options
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate pipeline outputs into a Redis store",
		Long: `Condense the raw alignment table to one cell per gene/genome pair,
convert names to index positions against the ordered gene and genome lists,
and write everything to Redis together with the chunked distance matrix and
t-SNE coordinates, ready for the serve command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s := store.NewRedis(redisAddr)
			defer s.Close()
			if err := s.Ping(ctx); err != nil {
				return err
			}

			sp := newSpinner(ctx, fmt.Sprintf("aggregating into %s", redisAddr))
			sp.Start()
			if err := aggregate.Run(ctx, s, opts, logger); err != nil {
				sp.StopWithError("aggregation failed")
				return err
			}
			sp.StopWithSuccess("aggregation complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Alignments, "alignments", "", "alignments of genes across genomes in CSV format")
	cmd.Flags().StringVar(&opts.GeneOrder, "gene-order", "", "ordering of genes by presence across genomes (may be gzipped)")
	cmd.Flags().StringVar(&opts.Distances, "dists", "", "pairwise distances for all genomes in CSV format")
	cmd.Flags().StringVar(&opts.TSNE, "tsne-coords", "", "t-SNE coordinates for all genes in two dimensions")
	cmd.Flags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address used for writing output")
	cmd.Flags().IntVar(&opts.ChunkRows, "dists-n-rows", 1000, "number of rows to use for each chunk of distances")
	_ = cmd.MarkFlagRequired("alignments")
	_ = cmd.MarkFlagRequired("gene-order")
	_ = cmd.MarkFlagRequired("dists")
	_ = cmd.MarkFlagRequired("tsne-coords")
	return cmd
}
