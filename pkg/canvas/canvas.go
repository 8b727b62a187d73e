// Package canvas is the shared multi-panel drawing surface that figure
// elements issue draw calls into.
//
// A canvas is a grid of panels addressed by ordinal (x, y) positions.
// Elements add panels, plot traces into them, format their axes, and
// anchor tick labels to a side of the grid; the composed figure is then
// rendered to SVG (and optionally converted to PNG). The canvas knows
// nothing about genes or genomes: it draws whatever traces it is given,
// in the panel geometry it was given.
package canvas

import (
	"github.com/genemap/genemap/pkg/errors"
)

// Side identifies an edge of the grid for axis label anchoring.
type Side string

// Anchor sides.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// AddOptions positions a panel within the grid.
type AddOptions struct {
	// XIndex and YIndex are ordinal grid positions. They need not be
	// contiguous or non-negative; panels are laid out by sorted rank.
	// Larger YIndex is higher in the figure.
	XIndex int
	YIndex int

	// ShareX and ShareY mark the panel as sharing coordinates with the
	// other panels in its column and row respectively.
	ShareX bool
	ShareY bool

	// Height overrides the relative height share of the panel's row
	// (default 1.0). The colorbar row uses a small value here.
	Height float64

	// Padding adds a fractional margin around the panel within its cell.
	Padding float64
}

// FormatOptions adjusts how a panel axis is drawn.
type FormatOptions struct {
	// TickValues and TickText place explicit tick labels at data
	// positions. Both must have equal length.
	TickValues []float64
	TickText   []string

	// ShowTickLabels enables label drawing for this axis.
	ShowTickLabels bool

	// AutoMargin widens the figure margin to fit the labels.
	AutoMargin bool

	// Range overrides the data range of the axis ([min, max]).
	Range []float64
}

// Trace is a drawable added to a panel. The concrete types are
// [Heatmap] and [Lines].
type Trace interface {
	isTrace()
}

// Heatmap is a colored grid trace. Row i of Z is drawn at vertical slot i
// from the top of the panel; column j at horizontal slot j.
type Heatmap struct {
	X          []string    // column labels
	Y          []string    // row labels
	Z          [][]float64 // row-major values
	ZMin, ZMax float64
	Colorscale string
	HoverText  [][]string // optional, aligned with Z
}

func (Heatmap) isTrace() {}

// Lines is a polyline trace. NaN coordinates lift the pen, separating
// disconnected segments. Text entries align with coordinates and carry
// hover text at the matching points.
type Lines struct {
	X, Y  []float64
	Text  []string
	Color string  // CSS color, default black
	Dash  string  // "", "dot"
	Width float64 // stroke width, default 1.5
	Name  string
}

func (Lines) isTrace() {}

// panel is one cell of the grid with its traces and axis formatting.
type panel struct {
	id      string
	opts    AddOptions
	traces  []Trace
	xFormat FormatOptions
	yFormat FormatOptions
}

// Canvas is the composed figure under construction.
type Canvas struct {
	panels   map[string]*panel
	order    []string // panel IDs in add order
	xAnchors map[int]Side
	yAnchors map[int]Side

	paperColor string
	plotColor  string
}

// New creates an empty canvas.
func New() *Canvas {
	return &Canvas{
		panels:   map[string]*panel{},
		xAnchors: map[int]Side{},
		yAnchors: map[int]Side{},
	}
}

// Add registers a panel at the given grid position.
// Adding the same panel ID twice is an error.
func (c *Canvas) Add(id string, opts AddOptions) error {
	if _, ok := c.panels[id]; ok {
		return errors.New(errors.ErrCodeDuplicatePanel, "panel %q already added", id)
	}
	if opts.Height == 0 {
		opts.Height = 1.0
	}
	c.panels[id] = &panel{id: id, opts: opts}
	c.order = append(c.order, id)
	return nil
}

// Plot appends a trace to a previously added panel.
func (c *Canvas) Plot(id string, tr Trace) error {
	p, ok := c.panels[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidPanel, "no panel %q; call Add first", id)
	}
	p.traces = append(p.traces, tr)
	return nil
}

// FormatAxis sets the formatting of panel axis "x" or "y".
func (c *Canvas) FormatAxis(id, axis string, opts FormatOptions) error {
	p, ok := c.panels[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidPanel, "no panel %q; call Add first", id)
	}
	switch axis {
	case "x":
		p.xFormat = opts
	case "y":
		p.yFormat = opts
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown axis %q", axis)
	}
	return nil
}

// AnchorXAxis pins the x tick labels of the given column to a side.
func (c *Canvas) AnchorXAxis(index int, side Side) {
	c.xAnchors[index] = side
}

// AnchorYAxis pins the y tick labels of the given row to a side.
func (c *Canvas) AnchorYAxis(index int, side Side) {
	c.yAnchors[index] = side
}

// SetBackground sets the paper and plot background colors, applied by the
// global element after all panels are drawn.
func (c *Canvas) SetBackground(paper, plot string) {
	c.paperColor = paper
	c.plotColor = plot
}

// PanelCount returns the number of panels added so far.
func (c *Canvas) PanelCount() int {
	return len(c.panels)
}

// HasPanel reports whether id was added.
func (c *Canvas) HasPanel(id string) bool {
	_, ok := c.panels[id]
	return ok
}
