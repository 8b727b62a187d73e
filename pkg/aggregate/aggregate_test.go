package aggregate

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing %s: %v", name, err)
	}
	return path
}

const alignmentsCSV = `qseqid,sseqid,genome,pident,qstart,qend,sstart,send,slen
q1,geneA,g1,99.5,1,100,1,100,100
q2,geneA,g1,90.0,1,50,1,50,100
q1,geneA,g2,80.0,1,100,1,80,100
q1,geneB,g2,95.0,1,200,1,150,200
`

const distancesCSV = `,g1,g2
g1,0,0.2
g2,0.2,0
`

const tsneCSV = `,x,y
geneA,0.5,1.5
geneB,-0.25,2.0
`

func setup(t *testing.T) (store.Store, Options) {
	dir := t.TempDir()
	return store.NewMemory(), Options{
		Alignments: writeFile(t, dir, "alignments.csv", alignmentsCSV),
		GeneOrder:  writeGzip(t, dir, "genes.txt.gz", "geneB\ngeneA\n"),
		Distances:  writeFile(t, dir, "distances.csv", distancesCSV),
		TSNE:       writeFile(t, dir, "tsne.csv", tsneCSV),
		ChunkRows:  1,
	}
}

func TestRunCondensesAlignments(t *testing.T) {
	ctx := context.Background()
	s, opts := setup(t)

	if err := Run(ctx, s, opts, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var alignments []Alignment
	if _, err := store.GetJSON(ctx, s, store.KeyAlignments, &alignments); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(alignments) != 3 {
		t.Fatalf("cells = %d, want one per gene/genome pair", len(alignments))
	}

	// geneA/g1 keeps the best identity and coverage over its two
	// alignments and one description line per alignment.
	first := alignments[0]
	if first.GeneIx != 1 || first.GenomeIx != 0 {
		t.Errorf("first cell indices = (%d, %d), want geneA=1 g1=0", first.GeneIx, first.GenomeIx)
	}
	if first.Pident != 99.5 {
		t.Errorf("pident = %v, want max 99.5", first.Pident)
	}
	if first.Coverage != 100 {
		t.Errorf("coverage = %v, want max 100", first.Coverage)
	}
	if got := len(strings.Split(first.Description, "\n")); got != 2 {
		t.Errorf("description lines = %d, want 2", got)
	}
	if !strings.Contains(first.Description, "% identity") {
		t.Errorf("description = %q", first.Description)
	}

	// Coverage formula: 100 * (send - sstart + 1) / slen.
	third := alignments[2]
	if third.Coverage != 75 {
		t.Errorf("geneB/g2 coverage = %v, want 75", third.Coverage)
	}
}

func TestRunWritesIndicesAndMatrices(t *testing.T) {
	ctx := context.Background()
	s, opts := setup(t)

	if err := Run(ctx, s, opts, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var genes, genomes []string
	if _, err := store.GetJSON(ctx, s, store.KeyGeneIndex, &genes); err != nil {
		t.Fatalf("genes: %v", err)
	}
	if !reflect.DeepEqual(genes, []string{"geneB", "geneA"}) {
		t.Errorf("gene list = %v, want the gene-order file sequence", genes)
	}
	if _, err := store.GetJSON(ctx, s, store.KeyGenomeIndex, &genomes); err != nil {
		t.Fatalf("genomes: %v", err)
	}
	if !reflect.DeepEqual(genomes, []string{"g1", "g2"}) {
		t.Errorf("genome list = %v, want first-appearance order", genomes)
	}

	// Two genomes with one row per chunk gives two recorded chunk keys.
	var keys []string
	if _, err := store.GetJSON(ctx, s, store.KeyDistanceKeys, &keys); err != nil {
		t.Fatalf("chunk keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"distances_0", "distances_1"}) {
		t.Errorf("chunk keys = %v", keys)
	}

	dists, err := store.ReadDistances(ctx, s)
	if err != nil {
		t.Fatalf("ReadDistances: %v", err)
	}
	if !reflect.DeepEqual(dists.RowIDs, genomes) {
		t.Errorf("distance rows = %v, want genome order", dists.RowIDs)
	}
	if dists.At("g1", "g2") != 0.2 {
		t.Errorf("d(g1,g2) = %v", dists.At("g1", "g2"))
	}

	var tsne store.MatrixDoc
	if _, err := store.GetJSON(ctx, s, store.KeyTSNE, &tsne); err != nil {
		t.Fatalf("tsne: %v", err)
	}
	if !reflect.DeepEqual(tsne.RowIDs, []string{"geneA", "geneB"}) {
		t.Errorf("tsne rows = %v", tsne.RowIDs)
	}
}

func TestRunUnknownGeneFatal(t *testing.T) {
	s, opts := setup(t)
	dir := t.TempDir()
	opts.GeneOrder = writeGzip(t, dir, "genes.txt.gz", "geneB\n")

	err := Run(context.Background(), s, opts, nil)
	if !errors.Is(err, errors.ErrCodeUnknownMember) {
		t.Errorf("err = %v, want UNKNOWN_MEMBER", err)
	}
}
