package canvas

import (
	"math"
	"strings"
	"testing"

	"github.com/genemap/genemap/pkg/errors"
)

func TestAddDuplicatePanel(t *testing.T) {
	c := New()
	if err := c.Add("main", AddOptions{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := c.Add("main", AddOptions{})
	if !errors.Is(err, errors.ErrCodeDuplicatePanel) {
		t.Errorf("err = %v, want DUPLICATE_PANEL", err)
	}
}

func TestPlotUnknownPanel(t *testing.T) {
	c := New()
	err := c.Plot("nope", Lines{X: []float64{0, 1}, Y: []float64{0, 1}})
	if !errors.Is(err, errors.ErrCodeInvalidPanel) {
		t.Errorf("err = %v, want INVALID_PANEL", err)
	}
	if err := c.FormatAxis("nope", "x", FormatOptions{}); !errors.Is(err, errors.ErrCodeInvalidPanel) {
		t.Errorf("FormatAxis err = %v, want INVALID_PANEL", err)
	}
}

func TestFormatAxisUnknownAxis(t *testing.T) {
	c := New()
	if err := c.Add("main", AddOptions{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.FormatAxis("main", "z", FormatOptions{}); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestRenderSVGHeatmapCells(t *testing.T) {
	c := New()
	if err := c.Add("hm", AddOptions{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Plot("hm", Heatmap{
		X:          []string{"c1", "c2"},
		Y:          []string{"r1", "r2"},
		Z:          [][]float64{{0, 50}, {80, 100}},
		ZMin:       0,
		ZMax:       100,
		Colorscale: "blues",
		HoverText:  [][]string{{"cell a", ""}, {"", "cell d"}},
	}); err != nil {
		t.Fatalf("Plot: %v", err)
	}

	svg := string(c.RenderSVG(400, 300))
	if !strings.HasPrefix(svg, "<svg ") {
		t.Fatalf("not an SVG document: %.40s", svg)
	}
	if got := strings.Count(svg, "<rect "); got != 4 {
		t.Errorf("rect count = %d, want 4 heatmap cells", got)
	}
	if !strings.Contains(svg, "<title>cell a</title>") {
		t.Error("hover text missing from output")
	}
	// Minimum and maximum of the blues scale.
	if !strings.Contains(svg, "#f7fbff") {
		t.Error("low end of blues scale missing")
	}
	if !strings.Contains(svg, "#08306b") {
		t.Error("high end of blues scale missing")
	}
}

func TestRenderSVGLinesPenUp(t *testing.T) {
	c := New()
	if err := c.Add("tree", AddOptions{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	nan := math.NaN()
	if err := c.Plot("tree", Lines{
		X: []float64{0, 1, nan, 0, 2},
		Y: []float64{0, 0, nan, 1, 1},
	}); err != nil {
		t.Fatalf("Plot: %v", err)
	}

	svg := string(c.RenderSVG(400, 300))
	// NaN splits the polyline into two subpaths.
	if got := strings.Count(svg, "M"); got < 2 {
		t.Errorf("path M count = %d, want 2 subpaths", got)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into output")
	}
}

func TestRenderSVGTickLabels(t *testing.T) {
	c := New()
	if err := c.Add("hm", AddOptions{XIndex: 1, YIndex: 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Plot("hm", Heatmap{
		Z: [][]float64{{1, 2}, {3, 4}}, ZMax: 4, Colorscale: "blues",
	}); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if err := c.FormatAxis("hm", "y", FormatOptions{
		TickValues:     []float64{0, 1},
		TickText:       []string{"genomeA", "genomeB"},
		ShowTickLabels: true,
		AutoMargin:     true,
	}); err != nil {
		t.Fatalf("FormatAxis: %v", err)
	}
	c.AnchorYAxis(0, SideRight)

	svg := string(c.RenderSVG(500, 300))
	if !strings.Contains(svg, ">genomeA</text>") || !strings.Contains(svg, ">genomeB</text>") {
		t.Errorf("tick labels missing:\n%s", svg)
	}
	if !strings.Contains(svg, `text-anchor="start"`) {
		t.Error("right-anchored labels should use text-anchor=start")
	}
}

func TestRenderSVGBackgrounds(t *testing.T) {
	c := New()
	if err := c.Add("main", AddOptions{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c.SetBackground("white", "rgba(255,255,255,1)")

	svg := string(c.RenderSVG(200, 200))
	if !strings.Contains(svg, `fill="white"`) {
		t.Error("paper background missing")
	}
	if !strings.Contains(svg, `fill="rgba(255,255,255,1)"`) {
		t.Error("plot background missing")
	}
}

func TestRowHeightShare(t *testing.T) {
	// A short colorbar row below the main row must come out shorter.
	c := New()
	if err := c.Add("main", AddOptions{YIndex: 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add("cbar", AddOptions{YIndex: -1, Height: 0.05}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cells := c.geometry(400, 400)
	var main, cbar *cell
	for _, cl := range cells {
		switch cl.p.id {
		case "main":
			main = cl
		case "cbar":
			cbar = cl
		}
	}
	if main == nil || cbar == nil {
		t.Fatal("missing cells")
	}
	if cbar.h >= main.h/2 {
		t.Errorf("colorbar height %v not small relative to main %v", cbar.h, main.h)
	}
	if cbar.y <= main.y {
		t.Errorf("colorbar (YIndex -1) should sit below main: %v vs %v", cbar.y, main.y)
	}
}

func TestScaleColorInterpolation(t *testing.T) {
	if got := scaleColor("blues", 0); got != "#f7fbff" {
		t.Errorf("blues(0) = %s", got)
	}
	if got := scaleColor("blues", 1); got != "#08306b" {
		t.Errorf("blues(1) = %s", got)
	}
	if got := scaleColor("blues", -5); got != "#f7fbff" {
		t.Errorf("clamped blues(-5) = %s", got)
	}
	if got := scaleColor("greys", 0.5); got != "#808080" {
		t.Errorf("greys(0.5) = %s", got)
	}
	if got := scaleColor("no-such-scale", 1); got != "#000000" {
		t.Errorf("fallback(1) = %s", got)
	}
}
