package nodelink

import (
	"context"
	"strings"
	"testing"
)

func TestFitViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "points to unitless",
			in:   `<?xml version="1.0"?><svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<?xml version="1.0"?><svg width="100" height="50" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
		},
		{
			name: "inner elements untouched",
			in:   `<svg width="8pt" height="4pt" viewBox="-4 -4 8.4 4"><rect width="3" height="3"/></svg>`,
			want: `<svg width="8" height="4" viewBox="-4 -4 8.4 4"><rect width="3" height="3"/></svg>`,
		},
		{name: "no viewBox", in: "<svg>", want: "<svg>"},
		{name: "zero size", in: `<svg width="0pt" viewBox="0 0 0 10">`, want: `<svg width="0pt" viewBox="0 0 0 10">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(fitViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("fitViewBox() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(snapshotGraph(t), Options{Time: 5}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
	if !strings.Contains(string(svg), "alpha") {
		t.Error("RenderSVG() output missing node label")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {"); err == nil {
		t.Error("RenderSVG() accepted malformed DOT")
	}
}
