package canvas

import (
	"fmt"
	"math"
	"strings"
)

// colorStop pairs a position in [0, 1] with an RGB color.
type colorStop struct {
	pos     float64
	r, g, b uint8
}

// Named colorscales. "blues" matches the conventional light-to-dark blue
// ramp used for identity heatmaps; the low end is near-white so that rows
// below the minimum threshold fade out.
var colorscales = map[string][]colorStop{
	"blues": {
		{0.000, 247, 251, 255},
		{0.125, 222, 235, 247},
		{0.250, 198, 219, 239},
		{0.375, 158, 202, 225},
		{0.500, 107, 174, 214},
		{0.625, 66, 146, 198},
		{0.750, 33, 113, 181},
		{0.875, 8, 81, 156},
		{1.000, 8, 48, 107},
	},
	"greys": {
		{0.0, 255, 255, 255},
		{1.0, 0, 0, 0},
	},
	"viridis": {
		{0.00, 68, 1, 84},
		{0.25, 59, 82, 139},
		{0.50, 33, 145, 140},
		{0.75, 94, 201, 98},
		{1.00, 253, 231, 37},
	},
}

// scaleColor interpolates the named colorscale at position t in [0, 1] and
// returns a CSS hex color. Unknown names fall back to greys.
func scaleColor(name string, t float64) string {
	stops, ok := colorscales[strings.ToLower(name)]
	if !ok {
		stops = colorscales["greys"]
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))

	for i := 1; i < len(stops); i++ {
		if t > stops[i].pos {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		span := hi.pos - lo.pos
		f := 0.0
		if span > 0 {
			f = (t - lo.pos) / span
		}
		return fmt.Sprintf("#%02x%02x%02x",
			lerp(lo.r, hi.r, f), lerp(lo.g, hi.g, f), lerp(lo.b, hi.b, f))
	}
	last := stops[len(stops)-1]
	return fmt.Sprintf("#%02x%02x%02x", last.r, last.g, last.b)
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
