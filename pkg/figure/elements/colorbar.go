package elements

import (
	"context"
	"fmt"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/figure"
)

// colorbarSteps is the number of gradient samples drawn across the bar.
const colorbarSteps = 100

// HeatmapColorbar draws a thin gradient panel annotating the value range of
// a paired heatmap. The pairing is declared at construction; when the
// heatmap is absent or disabled the colorbar disables itself during its own
// read step.
type HeatmapColorbar struct {
	id        string
	heatmapID string
	xIndex    int
	yIndex    int
	label     string

	heatmap *Heatmap
}

// NewGeneGenomeColorbar annotates the standard gene presence heatmap.
func NewGeneGenomeColorbar() *HeatmapColorbar {
	return &HeatmapColorbar{
		id:        "genomeColorbar",
		heatmapID: "genomeHeatmap",
		xIndex:    2,
		yIndex:    -1,
		label:     "Percent Identity",
	}
}

func (c *HeatmapColorbar) ID() string { return c.id }

func (c *HeatmapColorbar) Arguments() []figure.Argument { return nil }

func (c *HeatmapColorbar) Read(_ context.Context, b *figure.Builder, _ figure.Params) (figure.Status, error) {
	sibling, ok := b.Element(c.heatmapID)
	if !ok {
		return figure.Disabled(fmt.Sprintf("no heatmap element %q found", c.heatmapID)), nil
	}
	if !b.Enabled(c.heatmapID) {
		return figure.Disabled(fmt.Sprintf("heatmap element %q is disabled", c.heatmapID)), nil
	}

	hm, ok := sibling.(*Heatmap)
	if !ok {
		return figure.Status{}, errors.New(errors.ErrCodeInvalidArgument,
			"element %q is not a heatmap", c.heatmapID)
	}
	c.heatmap = hm
	return figure.Ready(), nil
}

func (c *HeatmapColorbar) Plot(_ context.Context, b *figure.Builder) error {
	minVal := c.heatmap.MinVal()
	maxVal := c.heatmap.MaxVal()

	values := make([]float64, colorbarSteps)
	labels := make([]string, colorbarSteps)
	step := (maxVal - minVal) / float64(colorbarSteps-1)
	for i := range values {
		values[i] = minVal + step*float64(i)
		labels[i] = fmt.Sprintf("%.4g", values[i])
	}

	cv := b.Canvas()
	if err := cv.Add(c.id, canvas.AddOptions{
		XIndex:  c.xIndex,
		YIndex:  c.yIndex,
		Height:  0.05,
		Padding: 0.05,
	}); err != nil {
		return err
	}

	hover := make([][]string, 1)
	hover[0] = labels
	if err := cv.Plot(c.id, canvas.Heatmap{
		X:          labels,
		Y:          []string{c.label},
		Z:          [][]float64{values},
		ZMin:       c.heatmap.ZMin(),
		ZMax:       maxVal,
		Colorscale: c.heatmap.Colorscale(),
		HoverText:  hover,
	}); err != nil {
		return err
	}

	if err := cv.FormatAxis(c.id, "y", canvas.FormatOptions{
		TickValues:     []float64{0},
		TickText:       []string{c.label},
		ShowTickLabels: true,
		AutoMargin:     true,
	}); err != nil {
		return err
	}
	if err := cv.FormatAxis(c.id, "x", canvas.FormatOptions{
		TickValues:     []float64{0, colorbarSteps - 1},
		TickText:       []string{fmt.Sprintf("%.4g", minVal), fmt.Sprintf("%.4g", maxVal)},
		ShowTickLabels: true,
	}); err != nil {
		return err
	}

	cv.AnchorYAxis(c.yIndex, canvas.SideRight)
	cv.AnchorXAxis(c.xIndex, canvas.SideBottom)
	return nil
}
