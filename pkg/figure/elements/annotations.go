// Package elements provides the concrete figure elements composed into the
// gene-by-genome display: annotation strips, the genome dendrogram, the
// presence heatmap, and its colorbar.
package elements

import (
	"context"
	"fmt"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/figure"
	"github.com/genemap/genemap/pkg/table"
)

// AxisAnnotation loads a table of annotations for one axis and supplies the
// axis membership and display labels. When an explicit order file is given
// the element also fixes the axis order, making it authoritative for the
// rest of the run.
//
// The element draws nothing itself; its entire effect is on the axis
// registry during the read phase.
type AxisAnnotation struct {
	id   string
	axis string
}

// NewGenomeAnnotations annotates the genome axis.
func NewGenomeAnnotations() *AxisAnnotation {
	return &AxisAnnotation{id: "genomeAnnot", axis: "genome"}
}

// NewGeneAnnotations annotates the gene axis.
func NewGeneAnnotations() *AxisAnnotation {
	return &AxisAnnotation{id: "geneAnnot", axis: "gene"}
}

func (a *AxisAnnotation) ID() string { return a.id }

func (a *AxisAnnotation) Arguments() []figure.Argument {
	return []figure.Argument{
		{
			Key:         "csv",
			Description: fmt.Sprintf("File containing %s annotations (CSV)", a.axis),
			Type:        figure.TypeString,
		},
		{
			Key:         "index-col",
			Description: fmt.Sprintf("Column from the CSV identifying each %s", a.axis),
			Type:        figure.TypeString,
			Default:     a.axis + "_id",
		},
		{
			Key:         "label-col",
			Description: "Column from the CSV used for labeling",
			Type:        figure.TypeString,
		},
		{
			Key:         "max-label-len",
			Description: fmt.Sprintf("Maximum number of characters allowed for %s labels", a.axis),
			Type:        figure.TypeInt,
			Default:     60,
		},
		{
			Key:         "order",
			Description: fmt.Sprintf("Text file containing ordered list of %s names (no header)", a.axis),
			Type:        figure.TypeString,
		},
	}
}

func (a *AxisAnnotation) Read(_ context.Context, b *figure.Builder, p figure.Params) (figure.Status, error) {
	csv := p.String("csv")
	labelCol := p.String("label-col")

	if csv == "" {
		if labelCol != "" {
			b.Logger().Warn("label column set but no annotation file supplied",
				"element", a.id, "label-col", labelCol)
		}
		return figure.Disabled("no annotation file supplied"), nil
	}

	b.Logger().Info("reading annotations", "element", a.id, "path", csv)
	tbl, err := table.ReadCSV(csv)
	if err != nil {
		return figure.Status{}, err
	}

	indexCol := p.String("index-col")
	ids, err := tbl.Column(indexCol)
	if err != nil {
		return figure.Status{}, err
	}

	rawLabels := ids
	if labelCol != "" {
		rawLabels, err = tbl.Column(labelCol)
		if err != nil {
			return figure.Status{}, err
		}
	}

	maxLen := p.Int("max-label-len")
	labels := make(map[string]string, len(ids))
	for i, id := range ids {
		labels[id] = truncate(rawLabels[i], maxLen)
	}

	// An explicit order file both reorders and locks the axis.
	var orderIDs []string
	if orderPath := p.String("order"); orderPath != "" {
		lines, err := table.Lines(orderPath)
		if err != nil {
			return figure.Status{}, err
		}
		known := map[string]bool{}
		for _, id := range ids {
			known[id] = true
		}
		for _, line := range lines {
			if !known[line] {
				return figure.Status{}, errors.New(errors.ErrCodeUnknownMember,
					"value %q from %s not found in column %q of %s",
					line, orderPath, indexCol, csv)
			}
		}
		orderIDs = lines
	}

	ax := b.Axis(a.axis)
	ax.Set(ids, labels)
	if orderIDs != nil {
		if err := ax.SetOrder(orderIDs); err != nil {
			return figure.Status{}, err
		}
		ax.Fix()
	}

	b.Logger().Info("annotations loaded", "element", a.id, "axis", a.axis, "members", len(ids))
	return figure.Ready(), nil
}

// Plot is a no-op: the annotation element only feeds the axis registry.
func (a *AxisAnnotation) Plot(context.Context, *figure.Builder) error { return nil }

// truncate trims a label to at most n runes. Applied at read time so every
// downstream consumer sees the truncated value.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
