package elements

import "github.com/genemap/genemap/pkg/figure"

// GlobalArguments declares the run-wide arguments not tied to any element.
func GlobalArguments() []figure.Argument {
	return []figure.Argument{
		{
			Key:         "output-prefix",
			Description: "Prefix for output file",
			Type:        figure.TypeString,
			Default:     "genemap-render",
		},
		{
			Key:         "output-folder",
			Description: "Folder for output file",
			Type:        figure.TypeString,
			Default:     "./",
		},
		{
			Key:         "width",
			Description: "Figure width in pixels",
			Type:        figure.TypeInt,
			Default:     1200,
		},
		{
			Key:         "height",
			Description: "Figure height in pixels",
			Type:        figure.TypeInt,
			Default:     800,
		},
		{
			Key:         "png",
			Description: "Also write a PNG alongside the SVG (requires librsvg)",
			Type:        figure.TypeBool,
			Default:     false,
		},
	}
}

// Compose returns the standard gene-by-genome element list in declaration
// order. The order is semantically significant: annotations run first so
// later elements can observe their axis decisions, the tree runs before the
// heatmap so its leaf order wins over the similarity fallback, and the
// colorbar runs last so it can check its paired heatmap.
func Compose() []figure.Element {
	return []figure.Element{
		NewGenomeAnnotations(),
		NewGeneAnnotations(),
		NewGenomeTree(),
		NewGeneGenomeHeatmap(),
		NewGeneGenomeColorbar(),
	}
}
