package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/figure"
	"github.com/genemap/genemap/pkg/figure/elements"
)

// newRenderCmd creates the render command for composing the gene-by-genome
// figure. One flag is generated per declared boundary argument, so the
// command surface always matches the composed element list; a TOML config
// file can supply the same keys, with explicit flags taking precedence.
func newRenderCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compose and render the gene-by-genome figure",
		Long: `Compose the annotation, tree, heatmap, and colorbar elements into one
multi-panel figure and render it as SVG (optionally PNG).

Every input is optional: elements whose inputs are absent drop out of the
figure instead of failing. Boundary arguments can also be supplied in a
TOML file via --config; flags set explicitly override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			boundary := map[string]string{}
			if configPath != "" {
				if err := loadConfig(configPath, boundary); err != nil {
					return err
				}
			}
			for key, value := range renderFlagValues(cmd) {
				boundary[key] = value
			}
			return runRender(cmd.Context(), boundary)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML file with boundary arguments")
	registerBoundaryFlags(cmd)
	return cmd
}

// registerBoundaryFlags adds one string flag per declared boundary argument
// of the standard composition.
func registerBoundaryFlags(cmd *cobra.Command) {
	b, err := figure.New(canvas.New(), elements.GlobalArguments(), elements.Compose())
	if err != nil {
		// The standard composition is static; a declaration error here is a
		// programming mistake surfaced at startup.
		panic(err)
	}
	for _, ba := range b.BoundaryArguments() {
		usage := ba.Argument.Description
		if ba.Argument.Default != nil {
			usage = fmt.Sprintf("%s (default: %v)", usage, ba.Argument.Default)
		}
		cmd.Flags().String(ba.BoundaryKey, "", usage)
	}
}

// renderFlagValues collects the boundary flags that were set explicitly.
func renderFlagValues(cmd *cobra.Command) map[string]string {
	values := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		values[f.Name] = f.Value.String()
	})
	return values
}

// loadConfig reads a flat TOML file of boundary arguments into dst.
func loadConfig(path string, dst map[string]string) error {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArgument, err, "reading config %s", path)
	}
	for key, value := range raw {
		switch value.(type) {
		case map[string]any, []any:
			return errors.New(errors.ErrCodeInvalidArgument,
				"config %s: key %q must be a scalar", path, key)
		}
		dst[key] = fmt.Sprintf("%v", value)
	}
	return nil
}

func runRender(ctx context.Context, boundary map[string]string) error {
	logger := loggerFromContext(ctx)
	tracker := newProgress(logger)

	cv := canvas.New()
	b, err := figure.New(cv, elements.GlobalArguments(), elements.Compose(), figure.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := b.Run(ctx, boundary); err != nil {
		return err
	}
	if cv.PanelCount() == 0 {
		printWarning("no inputs supplied, nothing to render")
		return nil
	}

	global := b.Params(figure.GlobalNamespace)
	cv.SetBackground("white", "white")
	svg := cv.RenderSVG(float64(global.Int("width")), float64(global.Int("height")))

	base := filepath.Join(global.String("output-folder"), global.String("output-prefix"))
	svgPath := base + ".svg"
	if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", svgPath)
	}
	printFile(svgPath)

	if global.Bool("png") {
		png, err := canvas.ToPNG(svg, 2.0)
		if err != nil {
			return err
		}
		pngPath := base + ".png"
		if err := os.WriteFile(pngPath, png, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", pngPath)
		}
		printFile(pngPath)
	}

	tracker.done(fmt.Sprintf("Rendered %d panels", cv.PanelCount()))
	return nil
}
