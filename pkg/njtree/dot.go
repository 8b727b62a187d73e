package njtree

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the tree to Graphviz DOT format for standalone
// visualization. Leaves are drawn as boxes, internal nodes as points, and
// edges carry their branch lengths as labels.
//
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func (t *Tree) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("graph tree {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	next := 0
	var walk func(n *tnode) string
	walk = func(n *tnode) string {
		id := fmt.Sprintf("n%d", next)
		next++
		if n.isLeaf() {
			fmt.Fprintf(&buf, "  %s [label=%q];\n", id, n.name)
			return id
		}
		fmt.Fprintf(&buf, "  %s [shape=point, width=0.08];\n", id)
		for _, c := range n.children {
			childID := walk(c)
			fmt.Fprintf(&buf, "  %s -- %s [label=%q, fontsize=9];\n",
				id, childID, strings.TrimRight(fmt.Sprintf("%.4g", c.length), "."))
		}
		return id
	}
	walk(t.root)

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
