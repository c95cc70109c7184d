package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/polagram/pkg/ast"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed labels edges with the message texts instead of a count.
	Detailed bool
}

var shapes = map[ast.ParticipantType]string{
	ast.TypeActor:       "oval",
	ast.TypeDatabase:    "cylinder",
	ast.TypeQueue:       "cds",
	ast.TypeCollections: "box3d",
	ast.TypeBoundary:    "circle",
	ast.TypeControl:     "circle",
	ast.TypeEntity:      "circle",
}

type edge struct {
	from, to string
	texts    []string
}

// ToDOT converts a diagram to Graphviz DOT format. Output is deterministic:
// nodes follow declaration order and edges follow first message order.
func ToDOT(r *ast.Root, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	if title := r.Title(); title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", title)
	}
	buf.WriteString("\n")

	grouped := map[string]bool{}
	for i, g := range r.Groups {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", g.Label)
		if g.Color != "" {
			fmt.Fprintf(&buf, "    style=filled;\n    fillcolor=%q;\n", g.Color)
		}
		for _, id := range g.Participants {
			if p, ok := r.Participant(id); ok && !grouped[id] {
				grouped[id] = true
				fmt.Fprintf(&buf, "    %q [%s];\n", p.ID, strings.Join(fmtAttrs(p), ", "))
			}
		}
		buf.WriteString("  }\n")
	}
	for _, p := range r.Participants {
		if !grouped[p.ID] {
			fmt.Fprintf(&buf, "  %q [%s];\n", p.ID, strings.Join(fmtAttrs(p), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range edges(r) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.from, e.to, fmtLabel(e, opts.Detailed))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edges(r *ast.Root) []*edge {
	var out []*edge
	index := map[[2]string]*edge{}
	ast.Walk(r.Events, func(e ast.Event) bool {
		m, ok := e.(*ast.Message)
		if !ok || m.From == "" || m.To == "" {
			return true
		}
		k := [2]string{m.From, m.To}
		ed, ok := index[k]
		if !ok {
			ed = &edge{from: m.From, to: m.To}
			index[k] = ed
			out = append(out, ed)
		}
		ed.texts = append(ed.texts, m.Text)
		return true
	})
	return out
}

func fmtLabel(e *edge, detailed bool) string {
	if !detailed {
		return strconv.Itoa(len(e.texts))
	}
	return strings.Join(e.texts, "\n")
}

func fmtAttrs(p *ast.Participant) []string {
	label := p.DisplayName()
	if p.Stereotype != "" {
		label = "«" + p.Stereotype + "»\n" + label
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if shape, ok := shapes[p.Type]; ok {
		attrs = append(attrs, "shape="+shape)
	}
	if p.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", p.Color))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching pixel size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
