package elements

import (
	"context"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/figure"
	"github.com/genemap/genemap/pkg/njtree"
	"github.com/genemap/genemap/pkg/table"
)

// GenomeTree builds a neighbor-joining tree from a genome distance matrix
// and draws it as a dendrogram panel. The tree's leaf order is the
// semantically true genome comparator, so the element fixes the genome axis
// with it, overriding any similarity-based or annotation-file suggestion.
type GenomeTree struct {
	xIndex int
	yIndex int

	tree *njtree.Tree
}

// NewGenomeTree creates the genome dendrogram element in the leftmost
// column of the main row.
func NewGenomeTree() *GenomeTree {
	return &GenomeTree{xIndex: 0, yIndex: 0}
}

func (t *GenomeTree) ID() string { return "genomeTree" }

func (t *GenomeTree) Arguments() []figure.Argument {
	return []figure.Argument{
		{
			Key:         "distmat",
			Description: "Distance matrix used to generate genome dendrogram (optional)",
			Type:        figure.TypeString,
		},
	}
}

func (t *GenomeTree) Read(_ context.Context, b *figure.Builder, p figure.Params) (figure.Status, error) {
	distmat := p.String("distmat")
	if distmat == "" {
		return figure.Disabled("no distance matrix supplied"), nil
	}

	b.Logger().Info("reading distance matrix", "element", t.ID(), "path", distmat)
	dm, err := table.ReadMatrix(distmat)
	if err != nil {
		return figure.Status{}, err
	}

	// When annotations have already populated the genome axis, restrict the
	// tree to the genomes present in both sources, keeping the distance
	// matrix row order for determinism.
	genomes := dm.RowIDs
	ax := b.Axis("genome")
	if ax.Exists() {
		members := ax.MemberSet()
		var kept []string
		for _, id := range genomes {
			if members[id] {
				kept = append(kept, id)
			}
		}
		genomes = kept
		b.Logger().Info("genomes with annotations and distances",
			"element", t.ID(), "count", len(genomes))
	}

	t.tree, err = njtree.Build(genomes, dm)
	if err != nil {
		return figure.Status{}, err
	}

	// The tree's leaf order overrides all others for the rest of the run.
	if err := ax.SetOrder(t.tree.LeafOrder()); err != nil {
		return figure.Status{}, err
	}
	ax.Fix()

	return figure.Ready(), nil
}

func (t *GenomeTree) Plot(_ context.Context, b *figure.Builder) error {
	cv := b.Canvas()
	if err := cv.Add(t.ID(), canvas.AddOptions{
		XIndex: t.xIndex,
		YIndex: t.yIndex,
		ShareY: true,
	}); err != nil {
		return err
	}

	xs, ys, text := t.tree.Segments()
	if err := cv.Plot(t.ID(), canvas.Lines{
		X:    xs,
		Y:    ys,
		Text: text,
		Name: "Neighbor Joining Tree",
	}); err != nil {
		return err
	}

	// Dotted lines extend each tip so leaves line up with their rows.
	ex, ey := t.tree.Extensions()
	if err := cv.Plot(t.ID(), canvas.Lines{
		X:     ex,
		Y:     ey,
		Color: "black",
		Dash:  "dot",
		Width: 1,
	}); err != nil {
		return err
	}

	maxX := t.tree.MaxDepth()
	if err := cv.FormatAxis(t.ID(), "x", canvas.FormatOptions{
		Range: []float64{maxX * -0.025, maxX * 1.025},
	}); err != nil {
		return err
	}

	ax := b.Axis("genome")
	ticks := make([]float64, ax.Len())
	for i := range ticks {
		ticks[i] = float64(i)
	}
	if err := cv.FormatAxis(t.ID(), "y", canvas.FormatOptions{
		TickValues:     ticks,
		TickText:       ax.Labels(),
		ShowTickLabels: true,
		AutoMargin:     true,
	}); err != nil {
		return err
	}

	cv.AnchorYAxis(t.yIndex, canvas.SideRight)
	return nil
}

// Tree returns the built neighbor-joining tree. Valid after the read phase
// when the element is enabled.
func (t *GenomeTree) Tree() *njtree.Tree { return t.tree }
