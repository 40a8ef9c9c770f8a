package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/model"
)

func squarePaths(t *testing.T) lattice.PathSet {
	t.Helper()
	h, err := model.NewHofstadter(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	return h.Paths()
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(squarePaths(t), Options{})

	if !strings.HasPrefix(dot, "digraph paths {") {
		t.Errorf("unexpected header: %q", dot[:min(len(dot), 40)])
	}
	if got := strings.Count(dot, "->"); got != 4 {
		t.Errorf("edges = %d, want 4", got)
	}
	for _, want := range []string{
		`c_0_0 [label="0,0", pos="0,0!", fillcolor=black, fontcolor=white];`,
		`c_1_0 [label="1,0", pos="1,0!"];`,
		`c_0_-1 [label="0,-1", pos="0,-1!"];`,
		`c_0_0 -> c_-1_0`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "label=\"t1") {
		t.Error("edge labels should only appear in detailed mode")
	}
}

func TestToDOTOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"detailed", Options{Detailed: true}, `label="t1 net 1"`},
		{"scaled", Options{Scale: 2.5}, `pos="2.5,0!"`},
		{"zero scale", Options{Scale: 0}, `pos="1,0!"`},
	}
	set := squarePaths(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dot := ToDOT(set, tt.opts); !strings.Contains(dot, tt.want) {
				t.Errorf("ToDOT missing %q:\n%s", tt.want, dot)
			}
		})
	}
}

func TestToDOTNetColors(t *testing.T) {
	dot := ToDOT(squarePaths(t), Options{})
	// Nets -1, 0, 1 take the first three colors.
	for _, c := range netColors[:3] {
		if !strings.Contains(dot, c) {
			t.Errorf("missing net color %s", c)
		}
	}
	if strings.Contains(dot, netColors[3]) {
		t.Errorf("unexpected fourth net color")
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(lattice.PathSet{}, Options{})
	if strings.Count(dot, "[label=") != 1 || strings.Contains(dot, "->") {
		t.Errorf("empty set should draw only the origin:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(squarePaths(t), Options{Detailed: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("SVG header not normalized: %s", svg[:min(len(svg), 200)])
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(ToDOT(squarePaths(t), Options{}))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderInvalidDOT(t *testing.T) {
	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox = %s, want %s", out, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}
