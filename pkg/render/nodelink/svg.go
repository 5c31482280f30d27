package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT graph with neato, honoring pinned positions,
// and renders it to SVG. Each call uses its own Graphviz instance.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return fitViewBox(buf.Bytes()), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg\b[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="[-0-9.]+\s+[-0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
	widthRe   = regexp.MustCompile(`(\swidth=)"[^"]*"`)
	heightRe  = regexp.MustCompile(`(\sheight=)"[^"]*"`)
)

// fitViewBox replaces the point-unit width and height of the root svg
// element with the unitless viewBox size, so the drawing scales with its
// container. Input without a usable viewBox is returned unchanged.
func fitViewBox(svg []byte) []byte {
	loc := svgOpenRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	m := viewBoxRe.FindSubmatch(tag)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	fixed := widthRe.ReplaceAll(tag, fmt.Appendf(nil, `${1}"%.0f"`, w))
	fixed = heightRe.ReplaceAll(fixed, fmt.Appendf(nil, `${1}"%.0f"`, h))

	out := make([]byte, 0, len(svg)+len(fixed)-len(tag))
	out = append(out, svg[:loc[0]]...)
	out = append(out, fixed...)
	return append(out, svg[loc[1]:]...)
}
