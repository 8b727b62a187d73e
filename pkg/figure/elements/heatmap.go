package elements

import (
	"context"
	"fmt"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/cluster"
	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/figure"
	"github.com/genemap/genemap/pkg/table"
)

// HeatmapConfig lays out a long-to-wide heatmap element. The CSV is pivoted
// so that rows are members of the y axis, columns are members of the x
// axis, and cells carry the value column.
type HeatmapConfig struct {
	ID        string
	XAxis     string // axis name for columns
	XCol      string // default CSV column holding x members
	YAxis     string // axis name for rows
	YCol      string // default CSV column holding y members
	ValCol    string // default CSV column holding values
	FillValue float64
	XIndex    int
	YIndex    int
}

// Heatmap plots a wide value matrix over two shared axes. When neither axis
// has been fixed by an earlier element, the heatmap suggests a
// similarity-based order for each via the clustering resolver.
type Heatmap struct {
	cfg HeatmapConfig

	wide       *table.Matrix
	minVal     float64
	maxVal     float64
	zmin       float64
	colorscale string
}

// NewGeneGenomeHeatmap is the standard gene presence heatmap: genes across
// the columns, genomes down the rows, percent identity in the cells.
func NewGeneGenomeHeatmap() *Heatmap {
	return NewHeatmap(HeatmapConfig{
		ID:        "genomeHeatmap",
		XAxis:     "gene",
		XCol:      "sseqid",
		YAxis:     "genome",
		YCol:      "genome",
		ValCol:    "pident",
		FillValue: 0,
		XIndex:    1,
		YIndex:    0,
	})
}

// NewHeatmap creates a heatmap element from an explicit layout.
func NewHeatmap(cfg HeatmapConfig) *Heatmap {
	return &Heatmap{cfg: cfg}
}

func (h *Heatmap) ID() string { return h.cfg.ID }

func (h *Heatmap) Arguments() []figure.Argument {
	return []figure.Argument{
		{
			Key:         "csv",
			Description: fmt.Sprintf("File containing %s-%s data", h.cfg.XAxis, h.cfg.YAxis),
			Type:        figure.TypeString,
		},
		{
			Key:         h.cfg.XAxis + "-col",
			Description: fmt.Sprintf("Column in CSV containing %s data", h.cfg.XAxis),
			Type:        figure.TypeString,
			Default:     h.cfg.XCol,
		},
		{
			Key:         h.cfg.YAxis + "-col",
			Description: fmt.Sprintf("Column in CSV containing %s data", h.cfg.YAxis),
			Type:        figure.TypeString,
			Default:     h.cfg.YCol,
		},
		{
			Key:         "val-col",
			Description: "Column in CSV used to populate values",
			Type:        figure.TypeString,
			Default:     h.cfg.ValCol,
		},
		{
			Key:         "colorscale",
			Description: "Color scale used for values in heatmap",
			Type:        figure.TypeString,
			Default:     "blues",
		},
	}
}

func (h *Heatmap) Read(_ context.Context, b *figure.Builder, p figure.Params) (figure.Status, error) {
	csv := p.String("csv")
	if csv == "" {
		return figure.Disabled("no input path supplied"), nil
	}

	b.Logger().Info("reading heatmap data", "element", h.cfg.ID, "path", csv)
	tbl, err := table.ReadCSV(csv)
	if err != nil {
		return figure.Status{}, err
	}

	xCol := p.String(h.cfg.XAxis + "-col")
	yCol := p.String(h.cfg.YAxis + "-col")
	valCol := p.String("val-col")
	h.colorscale = p.String("colorscale")

	if err := tbl.RequireColumns(xCol, yCol, valCol); err != nil {
		return figure.Status{}, err
	}
	values, err := tbl.NumericColumn(valCol)
	if err != nil {
		return figure.Status{}, err
	}
	if len(values) == 0 {
		return figure.Status{}, errors.New(errors.ErrCodeEmptyFile,
			"no rows found in %s", csv)
	}
	h.minVal, h.maxVal = values[0], values[0]
	for _, v := range values[1:] {
		if v < h.minVal {
			h.minVal = v
		}
		if v > h.maxVal {
			h.maxVal = v
		}
	}
	b.Logger().Debug("heatmap value range", "element", h.cfg.ID, "min", h.minVal, "max", h.maxVal)

	h.wide, err = table.Pivot(tbl, yCol, xCol, valCol, h.cfg.FillValue)
	if err != nil {
		return figure.Status{}, err
	}

	// Membership seen in the data extends both axes; existing order and
	// labels are untouched.
	xAx := b.Axis(h.cfg.XAxis)
	yAx := b.Axis(h.cfg.YAxis)
	xAx.Set(h.wide.ColIDs, nil)
	yAx.Set(h.wide.RowIDs, nil)

	// Fall back to a similarity order for any axis that no authoritative
	// source has fixed. The fixed check runs immediately before each
	// clustering call since an earlier element may have locked the axis.
	if !xAx.IsFixed() {
		order, err := cluster.Leaves(h.wide.Transpose(), cluster.Options{})
		if err != nil {
			return figure.Status{}, err
		}
		if err := xAx.SetOrder(order); err != nil {
			return figure.Status{}, err
		}
	}
	if !yAx.IsFixed() {
		order, err := cluster.Leaves(h.wide, cluster.Options{})
		if err != nil {
			return figure.Status{}, err
		}
		if err := yAx.SetOrder(order); err != nil {
			return figure.Status{}, err
		}
	}

	return figure.Ready(), nil
}

func (h *Heatmap) Plot(_ context.Context, b *figure.Builder) error {
	xAx := b.Axis(h.cfg.XAxis)
	yAx := b.Axis(h.cfg.YAxis)

	// Align the wide matrix with the final shared axis orders.
	wide := h.wide.Reindex(yAx.Order(), xAx.Order(), h.cfg.FillValue)

	// The blues scale starts near white: push the bottom of the scale below
	// the observed range so the lowest value lands mid-scale and stays
	// visible against the background.
	if h.colorscale == "blues" {
		h.zmin = h.minVal - (h.maxVal - h.minVal)
	} else {
		h.zmin = h.minVal
	}

	cv := b.Canvas()
	if err := cv.Add(h.cfg.ID, canvas.AddOptions{
		XIndex: h.cfg.XIndex,
		YIndex: h.cfg.YIndex,
		ShareX: true,
		ShareY: true,
	}); err != nil {
		return err
	}

	if err := cv.Plot(h.cfg.ID, canvas.Heatmap{
		X:          xAx.Labels(),
		Y:          yAx.Labels(),
		Z:          wide.Values,
		ZMin:       h.zmin,
		ZMax:       h.maxVal,
		Colorscale: h.colorscale,
		HoverText:  h.hoverText(wide, xAx, yAx),
	}); err != nil {
		return err
	}

	ticks := make([]float64, yAx.Len())
	for i := range ticks {
		ticks[i] = float64(i)
	}
	if err := cv.FormatAxis(h.cfg.ID, "y", canvas.FormatOptions{
		TickValues:     ticks,
		TickText:       yAx.Labels(),
		ShowTickLabels: true,
		AutoMargin:     true,
	}); err != nil {
		return err
	}

	cv.AnchorXAxis(h.cfg.XIndex, canvas.SideBottom)
	cv.AnchorYAxis(h.cfg.YIndex, canvas.SideRight)
	return nil
}

func (h *Heatmap) hoverText(wide *table.Matrix, xAx, yAx *figure.Axis) [][]string {
	xLabels := xAx.Labels()
	yLabels := yAx.Labels()
	text := make([][]string, len(wide.Values))
	for i, row := range wide.Values {
		text[i] = make([]string, len(row))
		for j, v := range row {
			text[i][j] = fmt.Sprintf("%s: %s<br>%s: %s<br>value: %g",
				h.cfg.YAxis, yLabels[i], h.cfg.XAxis, xLabels[j], v)
		}
	}
	return text
}

// MinVal returns the smallest observed value. Valid after the read phase.
func (h *Heatmap) MinVal() float64 { return h.minVal }

// MaxVal returns the largest observed value. Valid after the read phase.
func (h *Heatmap) MaxVal() float64 { return h.maxVal }

// ZMin returns the bottom of the colorscale range. Valid after Plot.
func (h *Heatmap) ZMin() float64 { return h.zmin }

// Colorscale returns the configured colorscale name.
func (h *Heatmap) Colorscale() string { return h.colorscale }
