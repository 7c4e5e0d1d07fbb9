package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures hierarchy DOT export.
type DOTOptions struct {
	// Detailed adds the depth and instance counts to labels and edges.
	Detailed bool
	// Highlight marks the named cells with a filled background.
	Highlight []string
}

// ToDOT converts the graph to Graphviz DOT format. Top cells are drawn with a
// bold outline. The output can be rendered with [RenderSVG].
func ToDOT(g *Graph, opts DOTOptions) string {
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, h := range opts.Highlight {
		highlight[h] = true
	}
	depths := g.Depths()

	var buf bytes.Buffer
	buf.WriteString("digraph hierarchy {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, c := range g.cells {
		label := c
		if opts.Detailed {
			label = fmt.Sprintf("%s\ndepth: %d", c, depths[c])
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if len(g.incoming[c]) == 0 {
			attrs = append(attrs, "penwidth=2")
		}
		if highlight[c] {
			attrs = append(attrs, "fillcolor=lightgoldenrod1")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range g.cells {
		for _, c := range g.outgoing[p] {
			if n := g.InstanceCount(p, c); opts.Detailed && n > 1 {
				fmt.Fprintf(&buf, "  %q -> %q [label=\"x%d\"];\n", p, c, n)
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", p, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT text to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
