// Package aggregate condenses pipeline outputs into a key-value store for
// rapid retrieval by the interactive viewer.
//
// The raw alignment table has one row per local alignment; the viewer wants
// one cell per gene/genome pair. Aggregation computes per-alignment
// coverage, collapses the table to the best alignment per pair with a
// combined description, converts gene and genome names to index positions
// against their ordered lists, and writes everything to the store along
// with the chunked distance matrix and t-SNE coordinates.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/store"
	"github.com/genemap/genemap/pkg/table"
)

// Options names the aggregation inputs.
type Options struct {
	Alignments string // long-format alignment CSV
	GeneOrder  string // ordered gene list, one per line, may be gzipped
	Distances  string // square genome distance matrix CSV
	TSNE       string // per-gene 2-D coordinates CSV
	ChunkRows  int    // rows per distance chunk, default 1000
}

// Alignment is one condensed gene/genome cell.
type Alignment struct {
	GeneIx      int     `json:"gene_ix"`
	GenomeIx    int     `json:"genome_ix"`
	Pident      float64 `json:"pident"`
	Coverage    float64 `json:"coverage"`
	Description string  `json:"description"`
}

// Run aggregates all inputs and writes them to the store.
func Run(ctx context.Context, s store.Store, opts Options, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if opts.ChunkRows == 0 {
		opts.ChunkRows = 1000
	}

	logger.Info("reading alignments", "path", opts.Alignments)
	tbl, err := table.ReadCSV(opts.Alignments)
	if err != nil {
		return err
	}
	rows, genomes, err := condense(tbl)
	if err != nil {
		return err
	}
	logger.Info("condensed alignments", "cells", len(rows), "genomes", len(genomes))

	logger.Info("reading gene order", "path", opts.GeneOrder)
	genes, err := table.Lines(opts.GeneOrder)
	if err != nil {
		return err
	}

	// Replace names with index positions against the ordered lists.
	geneIx := indexOf(genes)
	genomeIx := indexOf(genomes)
	alignments := make([]Alignment, len(rows))
	for i, r := range rows {
		gi, ok := geneIx[r.gene]
		if !ok {
			return errors.New(errors.ErrCodeUnknownMember,
				"gene %q has alignments but is absent from %s", r.gene, opts.GeneOrder)
		}
		alignments[i] = Alignment{
			GeneIx:      gi,
			GenomeIx:    genomeIx[r.genome],
			Pident:      r.pident,
			Coverage:    r.coverage,
			Description: strings.Join(r.descriptions, "\n"),
		}
	}

	logger.Info("reading distances", "path", opts.Distances)
	dists, err := table.ReadMatrix(opts.Distances)
	if err != nil {
		return err
	}
	// Subset and order the matrix by the genomes that actually have
	// alignments.
	dists = dists.Reindex(genomes, genomes, 0)

	logger.Info("reading t-SNE coordinates", "path", opts.TSNE)
	tsne, err := table.ReadMatrix(opts.TSNE)
	if err != nil {
		return err
	}

	logger.Info("writing to store")
	if err := store.SetJSON(ctx, s, store.KeyAlignments, alignments); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s, store.KeyGeneIndex, genes); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s, store.KeyGenomeIndex, genomes); err != nil {
		return err
	}
	if err := store.WriteDistances(ctx, s, dists, opts.ChunkRows); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s, store.KeyTSNE, store.MatrixDoc{
		RowIDs: tsne.RowIDs,
		ColIDs: tsne.ColIDs,
		Values: tsne.Values,
	}); err != nil {
		return err
	}

	logger.Info("done writing to store")
	return nil
}

// cell accumulates the alignments of one gene/genome pair.
type cell struct {
	gene         string
	genome       string
	pident       float64
	coverage     float64
	descriptions []string
}

// condense collapses the long alignment table to one cell per gene/genome
// pair, keeping the best identity and coverage and a description line per
// underlying alignment. It also returns the genome list in first-appearance
// order.
func condense(tbl *table.Table) ([]*cell, []string, error) {
	if err := tbl.RequireColumns(
		"qseqid", "sseqid", "genome", "pident", "qstart", "qend", "sstart", "send", "slen",
	); err != nil {
		return nil, nil, err
	}

	qseqid, _ := tbl.Column("qseqid")
	sseqid, _ := tbl.Column("sseqid")
	genome, _ := tbl.Column("genome")
	pident, err := tbl.NumericColumn("pident")
	if err != nil {
		return nil, nil, err
	}
	qstart, err := tbl.NumericColumn("qstart")
	if err != nil {
		return nil, nil, err
	}
	qend, err := tbl.NumericColumn("qend")
	if err != nil {
		return nil, nil, err
	}
	sstart, err := tbl.NumericColumn("sstart")
	if err != nil {
		return nil, nil, err
	}
	send, err := tbl.NumericColumn("send")
	if err != nil {
		return nil, nil, err
	}
	slen, err := tbl.NumericColumn("slen")
	if err != nil {
		return nil, nil, err
	}

	var cells []*cell
	var genomes []string
	byPair := map[[2]string]*cell{}
	seenGenome := map[string]bool{}

	for i := 0; i < tbl.Len(); i++ {
		if slen[i] == 0 {
			return nil, nil, errors.New(errors.ErrCodeInvalidMatrix,
				"alignment row %d has zero subject length", i+1)
		}
		coverage := 100 * (send[i] - sstart[i] + 1) / slen[i]

		if !seenGenome[genome[i]] {
			seenGenome[genome[i]] = true
			genomes = append(genomes, genome[i])
		}

		key := [2]string{sseqid[i], genome[i]}
		c, ok := byPair[key]
		if !ok {
			c = &cell{gene: sseqid[i], genome: genome[i], pident: pident[i], coverage: coverage}
			byPair[key] = c
			cells = append(cells, c)
		} else {
			if pident[i] > c.pident {
				c.pident = pident[i]
			}
			if coverage > c.coverage {
				c.coverage = coverage
			}
		}
		c.descriptions = append(c.descriptions, fmt.Sprintf(
			"%s: %.0f - %.0f; %g%% identity / %g%% coverage",
			qseqid[i], qstart[i], qend[i], pident[i], coverage,
		))
	}

	return cells, genomes, nil
}

func indexOf(ids []string) map[string]int {
	ix := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := ix[id]; !ok {
			ix[id] = i
		}
	}
	return ix
}
