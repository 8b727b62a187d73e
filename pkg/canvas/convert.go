package canvas

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/genemap/genemap/pkg/errors"
)

const converterBin = "rsvg-convert"

// ToPNG rasterizes SVG bytes at the given scale factor. A scale of 2.0
// doubles the pixel dimensions relative to the SVG viewport.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// ToPDF converts SVG bytes to a single-page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// convert pipes the SVG through rsvg-convert. The binary ships with
// librsvg (brew install librsvg on macOS, apt install librsvg2-bin on
// Linux); SVG output itself never needs it.
func convert(svg []byte, format string, extra ...string) ([]byte, error) {
	if _, err := exec.LookPath(converterBin); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"%s output needs %s on PATH (macOS: brew install librsvg, Linux: apt install librsvg2-bin)",
			format, converterBin)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(converterBin, append([]string{"-f", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err,
			"%s failed: %s", converterBin, stderr.String())
	}
	return stdout.Bytes(), nil
}
