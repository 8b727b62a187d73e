package elements_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/figure"
	"github.com/genemap/genemap/pkg/figure/elements"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func newBuilder(t *testing.T, cv *canvas.Canvas) *figure.Builder {
	t.Helper()
	b, err := figure.New(cv, elements.GlobalArguments(), elements.Compose())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

const genomeAnnotations = `genome_id,name
g1,Escherichia coli
g2,Salmonella enterica
g3,Klebsiella pneumoniae
`

const alignments = `sseqid,genome,pident
geneA,g1,100
geneA,g2,95
geneB,g1,90
geneB,g3,85
geneC,g3,80
`

const distances = `,g1,g2,g3
g1,0,0.1,0.9
g2,0.1,0,0.8
g3,0.9,0.8,0
`

func TestFullComposition(t *testing.T) {
	dir := t.TempDir()
	cv := canvas.New()
	b := newBuilder(t, cv)

	err := b.Run(context.Background(), map[string]string{
		"genomeAnnot-csv":           writeFile(t, dir, "genomes.csv", genomeAnnotations),
		"genomeAnnot-label-col":     "name",
		"genomeAnnot-max-label-len": "3",
		"genomeTree-distmat":        writeFile(t, dir, "distances.csv", distances),
		"genomeHeatmap-csv":         writeFile(t, dir, "alignments.csv", alignments),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.Phase() != figure.PhaseRendered {
		t.Fatalf("phase = %v", b.Phase())
	}

	// The tree fixed the genome axis; g1 and g2 are closest so they must
	// end up adjacent.
	genome := b.Axis("genome")
	if !genome.IsFixed() {
		t.Error("genome axis should be fixed by the tree")
	}
	order := genome.Order()
	if len(order) != 3 {
		t.Fatalf("genome order = %v", order)
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	if diff := pos["g1"] - pos["g2"]; diff != 1 && diff != -1 {
		t.Errorf("g1/g2 not adjacent in %v", order)
	}

	// Annotation labels are truncated at read time.
	if got := genome.Label("g1"); got != "Esc" {
		t.Errorf("label g1 = %q, want Esc", got)
	}

	// The gene axis was populated by the heatmap and only suggested, never
	// fixed; unannotated genes keep their raw IDs as labels.
	gene := b.Axis("gene")
	if gene.IsFixed() {
		t.Error("gene axis must not be fixed")
	}
	if gene.Len() != 3 {
		t.Errorf("gene members = %v", gene.Order())
	}
	if got := gene.Label("geneA"); got != "geneA" {
		t.Errorf("gene label fallback = %q, want raw ID regardless of genome truncation", got)
	}

	// Tree, heatmap, and colorbar all drew panels.
	for _, id := range []string{"genomeTree", "genomeHeatmap", "genomeColorbar"} {
		if !cv.HasPanel(id) {
			t.Errorf("missing panel %q", id)
		}
	}

	svg := string(cv.RenderSVG(1200, 800))
	if !strings.Contains(svg, ">Esc</text>") {
		t.Error("truncated genome label missing from rendered figure")
	}
	if !strings.Contains(svg, "Percent Identity") {
		t.Error("colorbar label missing from rendered figure")
	}
}

func TestNoInputsDisablesEverything(t *testing.T) {
	cv := canvas.New()
	b := newBuilder(t, cv)

	if err := b.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, id := range []string{"genomeAnnot", "geneAnnot", "genomeTree", "genomeHeatmap", "genomeColorbar"} {
		if b.Enabled(id) {
			t.Errorf("element %q should be disabled", id)
		}
	}
	if cv.PanelCount() != 0 {
		t.Errorf("panel count = %d, want 0", cv.PanelCount())
	}
	if got := b.DisabledReason("genomeColorbar"); !strings.Contains(got, "disabled") {
		t.Errorf("colorbar reason = %q, want cascade from the heatmap", got)
	}
}

func TestOrderFileFixesAxisAgainstHeatmap(t *testing.T) {
	dir := t.TempDir()
	cv := canvas.New()
	b := newBuilder(t, cv)

	want := []string{"g3", "g1", "g2"}
	err := b.Run(context.Background(), map[string]string{
		"genomeAnnot-csv":   writeFile(t, dir, "genomes.csv", genomeAnnotations),
		"genomeAnnot-order": writeFile(t, dir, "order.txt", "g3\ng1\ng2\n"),
		"genomeHeatmap-csv": writeFile(t, dir, "alignments.csv", alignments),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	genome := b.Axis("genome")
	if !genome.IsFixed() {
		t.Fatal("order file must fix the axis")
	}
	if got := genome.Order(); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want the order file's %v despite the heatmap's similarity order", got, want)
	}
}

func TestOrderFileUnknownEntry(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, canvas.New())

	err := b.Run(context.Background(), map[string]string{
		"genomeAnnot-csv":   writeFile(t, dir, "genomes.csv", genomeAnnotations),
		"genomeAnnot-order": writeFile(t, dir, "order.txt", "g1\nno-such-genome\n"),
	})
	if !errors.Is(err, errors.ErrCodeUnknownMember) {
		t.Errorf("err = %v, want UNKNOWN_MEMBER", err)
	}
}

func TestLabelColWithoutCSVDisables(t *testing.T) {
	b := newBuilder(t, canvas.New())

	err := b.Run(context.Background(), map[string]string{
		"genomeAnnot-label-col": "name",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.Enabled("genomeAnnot") {
		t.Error("annotation element should disable without a CSV")
	}
}

func TestHeatmapMissingColumnFatal(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, canvas.New())

	bad := "sseqid,wrong,pident\ngeneA,g1,100\n"
	err := b.Run(context.Background(), map[string]string{
		"genomeHeatmap-csv": writeFile(t, dir, "alignments.csv", bad),
	})
	if !errors.Is(err, errors.ErrCodeMissingColumn) {
		t.Errorf("err = %v, want MISSING_COLUMN", err)
	}
}

func TestHeatmapNonNumericFatal(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, canvas.New())

	bad := "sseqid,genome,pident\ngeneA,g1,high\n"
	err := b.Run(context.Background(), map[string]string{
		"genomeHeatmap-csv": writeFile(t, dir, "alignments.csv", bad),
	})
	if !errors.Is(err, errors.ErrCodeNotNumeric) {
		t.Errorf("err = %v, want NOT_NUMERIC", err)
	}
}

func TestHeatmapSuggestsOrderWhenUnfixed(t *testing.T) {
	// Without a tree or order file the heatmap falls back to similarity
	// ordering, which must not fix the axis.
	dir := t.TempDir()
	b := newBuilder(t, canvas.New())

	err := b.Run(context.Background(), map[string]string{
		"genomeHeatmap-csv": writeFile(t, dir, "alignments.csv", alignments),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	genome := b.Axis("genome")
	if genome.IsFixed() {
		t.Error("similarity order is only a suggestion")
	}
	if genome.Len() != 3 {
		t.Errorf("genome order = %v", genome.Order())
	}
}
