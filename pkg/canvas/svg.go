package canvas

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ============================================================================
// Layout geometry
// ============================================================================

// cell is the pixel rectangle of one panel plus its data coordinate ranges.
type cell struct {
	p          *panel
	x, y, w, h float64
	xmin, xmax float64
	ymin, ymax float64
	labelSide  Side // where y tick labels go, "" for none
	labelSideX Side // where x tick labels go, "" for none
	showXTicks bool
	showYTicks bool
}

// geometry computes the pixel rectangle and data ranges of every panel for
// a figure of the given outer size.
func (c *Canvas) geometry(width, height float64) []*cell {
	// Distinct grid positions. Larger YIndex is higher in the figure, so
	// rows are sorted descending top to bottom.
	colSet := map[int]bool{}
	rowSet := map[int]bool{}
	for _, id := range c.order {
		p := c.panels[id]
		colSet[p.opts.XIndex] = true
		rowSet[p.opts.YIndex] = true
	}
	cols := sortedKeys(colSet, false)
	rows := sortedKeys(rowSet, true)

	// Row height shares: the smallest explicit share among the row's
	// panels wins, so a short colorbar row stays short.
	rowShare := map[int]float64{}
	for _, id := range c.order {
		p := c.panels[id]
		s, ok := rowShare[p.opts.YIndex]
		if !ok || p.opts.Height < s {
			rowShare[p.opts.YIndex] = p.opts.Height
		}
	}

	margins := c.margins(width, height)
	innerW := width - margins.left - margins.right
	innerH := height - margins.top - margins.bottom
	gap := 8.0

	colW := (innerW - gap*float64(len(cols)-1)) / float64(len(cols))
	colX := map[int]float64{}
	for i, ix := range cols {
		colX[ix] = margins.left + float64(i)*(colW+gap)
	}

	var totalShare float64
	for _, iy := range rows {
		totalShare += rowShare[iy]
	}
	rowY := map[int]float64{}
	rowH := map[int]float64{}
	y := margins.top
	usableH := innerH - gap*float64(len(rows)-1)
	for _, iy := range rows {
		h := usableH * rowShare[iy] / totalShare
		rowY[iy] = y
		rowH[iy] = h
		y += h + gap
	}

	var cells []*cell
	for _, id := range c.order {
		p := c.panels[id]
		cl := &cell{
			p: p,
			x: colX[p.opts.XIndex],
			y: rowY[p.opts.YIndex],
			w: colW,
			h: rowH[p.opts.YIndex],
		}
		if pad := p.opts.Padding; pad > 0 {
			dx, dy := cl.w*pad, cl.h*pad
			cl.x += dx
			cl.y += dy
			cl.w -= 2 * dx
			cl.h -= 2 * dy
		}
		cl.xmin, cl.xmax = p.dataRangeX()
		cl.ymin, cl.ymax = p.dataRangeY()
		if r := p.xFormat.Range; len(r) == 2 {
			cl.xmin, cl.xmax = r[0], r[1]
		}
		if r := p.yFormat.Range; len(r) == 2 {
			cl.ymin, cl.ymax = r[0], r[1]
		}
		cl.showXTicks = p.xFormat.ShowTickLabels
		cl.showYTicks = p.yFormat.ShowTickLabels
		if cl.showXTicks {
			cl.labelSideX = c.xAnchors[p.opts.XIndex]
			if cl.labelSideX == "" {
				cl.labelSideX = SideBottom
			}
		}
		if cl.showYTicks {
			cl.labelSide = c.yAnchors[p.opts.YIndex]
			if cl.labelSide == "" {
				cl.labelSide = SideLeft
			}
		}
		cells = append(cells, cl)
	}
	return cells
}

type marginSet struct {
	top, bottom, left, right float64
}

// margins reserves room around the grid for anchored tick labels.
func (c *Canvas) margins(width, height float64) marginSet {
	m := marginSet{top: 24, bottom: 24, left: 24, right: 24}
	for _, id := range c.order {
		p := c.panels[id]
		if p.yFormat.ShowTickLabels && p.yFormat.AutoMargin {
			side := c.yAnchors[p.opts.YIndex]
			if side == SideRight {
				m.right = math.Max(m.right, 110)
			} else {
				m.left = math.Max(m.left, 110)
			}
		}
		if p.xFormat.ShowTickLabels && p.xFormat.AutoMargin {
			side := c.xAnchors[p.opts.XIndex]
			if side == SideTop {
				m.top = math.Max(m.top, 90)
			} else {
				m.bottom = math.Max(m.bottom, 90)
			}
		}
	}
	return m
}

// dataRangeX returns the default x data range of a panel, before any
// explicit Range override.
func (p *panel) dataRangeX() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, tr := range p.traces {
		switch t := tr.(type) {
		case Heatmap:
			lo = math.Min(lo, -0.5)
			if len(t.Z) > 0 {
				hi = math.Max(hi, float64(len(t.Z[0]))-0.5)
			}
		case Lines:
			for _, v := range t.X {
				if !math.IsNaN(v) {
					lo = math.Min(lo, v)
					hi = math.Max(hi, v)
				}
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

func (p *panel) dataRangeY() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, tr := range p.traces {
		switch t := tr.(type) {
		case Heatmap:
			lo = math.Min(lo, -0.5)
			hi = math.Max(hi, float64(len(t.Z))-0.5)
		case Lines:
			for _, v := range t.Y {
				if !math.IsNaN(v) {
					lo = math.Min(lo, v)
					hi = math.Max(hi, v)
				}
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// px and py map data coordinates to pixels. Data y increases downward so
// that heatmap row 0 and tree leaf 0 both sit at the top of their panels.
func (cl *cell) px(v float64) float64 {
	return cl.x + (v-cl.xmin)/(cl.xmax-cl.xmin)*cl.w
}

func (cl *cell) py(v float64) float64 {
	return cl.y + (v-cl.ymin)/(cl.ymax-cl.ymin)*cl.h
}

func sortedKeys(set map[int]bool, descending bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	if descending {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	return keys
}

// ============================================================================
// SVG output
// ============================================================================

// RenderSVG draws the composed figure as a standalone SVG document of the
// given pixel size.
func (c *Canvas) RenderSVG(width, height float64) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)

	if c.paperColor != "" {
		fmt.Fprintf(&b, `  <rect x="0" y="0" width="%g" height="%g" fill="%s"/>`+"\n",
			width, height, escape(c.paperColor))
	}

	for _, cl := range c.geometry(width, height) {
		fmt.Fprintf(&b, `  <g data-panel="%s">`+"\n", escape(cl.p.id))
		if c.plotColor != "" {
			fmt.Fprintf(&b, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				cl.x, cl.y, cl.w, cl.h, escape(c.plotColor))
		}
		for _, tr := range cl.p.traces {
			switch t := tr.(type) {
			case Heatmap:
				writeHeatmap(&b, cl, t)
			case Lines:
				writeLines(&b, cl, t)
			}
		}
		writeTicks(&b, cl)
		b.WriteString("  </g>\n")
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func writeHeatmap(b *strings.Builder, cl *cell, t Heatmap) {
	span := t.ZMax - t.ZMin
	for i, row := range t.Z {
		for j, v := range row {
			f := 0.0
			if span > 0 {
				f = (v - t.ZMin) / span
			}
			x0, x1 := cl.px(float64(j)-0.5), cl.px(float64(j)+0.5)
			y0, y1 := cl.py(float64(i)-0.5), cl.py(float64(i)+0.5)
			fmt.Fprintf(b, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" shape-rendering="crispEdges">`,
				x0, y0, x1-x0, y1-y0, scaleColor(t.Colorscale, f))
			if t.HoverText != nil && i < len(t.HoverText) && j < len(t.HoverText[i]) && t.HoverText[i][j] != "" {
				fmt.Fprintf(b, `<title>%s</title>`, escape(t.HoverText[i][j]))
			}
			b.WriteString("</rect>\n")
		}
	}
}

func writeLines(b *strings.Builder, cl *cell, t Lines) {
	color := t.Color
	if color == "" {
		color = "#444444"
	}
	width := t.Width
	if width == 0 {
		width = 1.5
	}
	dash := ""
	if t.Dash == "dot" {
		dash = ` stroke-dasharray="2,3"`
	}

	var d strings.Builder
	pen := false
	for i := range t.X {
		if math.IsNaN(t.X[i]) || math.IsNaN(t.Y[i]) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		fmt.Fprintf(&d, "%s%.2f %.2f", cmd, cl.px(t.X[i]), cl.py(t.Y[i]))
	}
	if d.Len() == 0 {
		return
	}
	fmt.Fprintf(b, `    <path d="%s" fill="none" stroke="%s" stroke-width="%g"%s>`,
		d.String(), escape(color), width, dash)
	if t.Name != "" {
		fmt.Fprintf(b, `<title>%s</title>`, escape(t.Name))
	}
	b.WriteString("</path>\n")
}

func writeTicks(b *strings.Builder, cl *cell) {
	const font = `font-family="sans-serif" font-size="10" fill="#333333"`

	if cl.showYTicks {
		f := cl.p.yFormat
		for i, v := range f.TickValues {
			if i >= len(f.TickText) {
				break
			}
			y := cl.py(v)
			if cl.labelSide == SideRight {
				fmt.Fprintf(b, `    <text x="%.2f" y="%.2f" %s text-anchor="start" dominant-baseline="middle">%s</text>`+"\n",
					cl.x+cl.w+4, y, font, escape(f.TickText[i]))
			} else {
				fmt.Fprintf(b, `    <text x="%.2f" y="%.2f" %s text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
					cl.x-4, y, font, escape(f.TickText[i]))
			}
		}
	}

	if cl.showXTicks {
		f := cl.p.xFormat
		for i, v := range f.TickValues {
			if i >= len(f.TickText) {
				break
			}
			x := cl.px(v)
			// Rotated so long labels do not collide.
			if cl.labelSideX == SideTop {
				fmt.Fprintf(b, `    <text x="%.2f" y="%.2f" %s text-anchor="start" transform="rotate(-60 %.2f %.2f)">%s</text>`+"\n",
					x, cl.y-4, font, x, cl.y-4, escape(f.TickText[i]))
			} else {
				fmt.Fprintf(b, `    <text x="%.2f" y="%.2f" %s text-anchor="end" transform="rotate(-60 %.2f %.2f)">%s</text>`+"\n",
					x, cl.y+cl.h+12, font, x, cl.y+cl.h+12, escape(f.TickText[i]))
			}
		}
	}
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
