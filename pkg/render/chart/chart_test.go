package chart

import (
	"bytes"
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"PNG", "png", false},
		{".pdf", "pdf", false},
		{" eps ", "eps", false},
		{"jpg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s, want INVALID_FORMAT", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want Display
		ok   bool
	}{
		{"3D", Display3D, true},
		{"2d", Display2D, true},
		{"4D", "", false},
	}
	for _, tt := range tests {
		got, err := ParseDisplay(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseDisplay(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewPalette(t *testing.T) {
	for _, name := range Palettes {
		t.Run(name, func(t *testing.T) {
			colors, err := Colors(name, 7)
			if err != nil {
				t.Fatalf("Colors: %v", err)
			}
			if len(colors) != 7 {
				t.Errorf("len = %d, want 7", len(colors))
			}
			if one, _ := Colors(name, 1); len(one) != 2 {
				t.Errorf("Colors(%s, 1) has %d colors, want 2", name, len(one))
			}
		})
	}
	if _, err := NewPalette("viridis", 3); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown palette: %v", err)
	}
	if _, err := NewPalette("HEAT", 3); err != nil {
		t.Errorf("palette names should be case-insensitive: %v", err)
	}
}

func squareField(t *testing.T, samples int) (*spectrum.EigenField, *spectrum.PathSpectrum) {
	t.Helper()
	h, err := model.NewHofstadter(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	f, err := spectrum.Compute(context.Background(), h, h.UnitCell(), spectrum.Options{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	ps, err := spectrum.BandPath(h, h.UnitCell(), 8)
	if err != nil {
		t.Fatal(err)
	}
	return f, ps
}

func TestPathChartSVG(t *testing.T) {
	_, ps := squareField(t, 5)
	p, err := PathChart(ps, "square")
	if err != nil {
		t.Fatalf("PathChart: %v", err)
	}
	svg, err := Render(p, FormatSVG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	if len(ticks) != len(ps.Ticks) {
		t.Fatalf("ticks = %d, want %d", len(ticks), len(ps.Ticks))
	}
	for i, tick := range ticks {
		if tick.Label != ps.Ticks[i].Label || tick.Value != ps.Ticks[i].Position {
			t.Errorf("tick %d = %+v, want %+v", i, tick, ps.Ticks[i])
		}
	}

	if _, err := PathChart(&spectrum.PathSpectrum{}, ""); err == nil {
		t.Error("empty path should fail")
	}
}

func TestBandMap(t *testing.T) {
	f, _ := squareField(t, 5)
	for _, d := range []Display{Display2D, Display3D} {
		t.Run(string(d), func(t *testing.T) {
			p, err := BandMap(f, 0, d, PaletteBlueRed)
			if err != nil {
				t.Fatalf("BandMap: %v", err)
			}
			png, err := Render(p, FormatPNG)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(png, []byte("\x89PNG")) {
				t.Error("output is not PNG")
			}
		})
	}

	if _, err := BandMap(f, 3, Display2D, PaletteHeat); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("out of range band: %v", err)
	}
	if _, err := BandMap(f, 0, "4D", PaletteHeat); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown display: %v", err)
	}
}

func TestCurvatureMapFlat(t *testing.T) {
	flat := [][]float64{{0, 0}, {0, 0}}
	p, err := CurvatureMap(flat, "band 0", PaletteRainbow)
	if err != nil {
		t.Fatalf("CurvatureMap: %v", err)
	}
	if _, err := Render(p, FormatSVG); err != nil {
		t.Errorf("Render flat map: %v", err)
	}
	if _, err := CurvatureMap(nil, "", PaletteHeat); err == nil {
		t.Error("empty field should fail")
	}
}

func TestWannierChart(t *testing.T) {
	centers := [][]float64{{0, 0.1, 0.2, 0.3}, {0, -0.1, -0.2, -0.3}}
	p, err := WannierChart(centers, []string{"band 0", "band 1"})
	if err != nil {
		t.Fatalf("WannierChart: %v", err)
	}
	svg, err := Render(p, FormatSVG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(svg) == 0 {
		t.Error("empty SVG")
	}
	if _, err := WannierChart(centers, []string{"only one"}); err == nil {
		t.Error("label mismatch should fail")
	}
}

func testButterfly(t *testing.T) *butterfly.Butterfly {
	t.Helper()
	b, err := butterfly.Sweep(context.Background(), butterfly.Params{Lattice: lattice.SquareLattice, Q: 7})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestButterflyChart(t *testing.T) {
	b := testButterfly(t)
	for _, c := range butterfly.Colorings {
		t.Run(string(c), func(t *testing.T) {
			p, err := ButterflyChart(b, c, PaletteHeat)
			if err != nil {
				t.Fatalf("ButterflyChart: %v", err)
			}
			for _, format := range Formats {
				var buf bytes.Buffer
				if err := Write(p, &buf, format, WithSize(DefaultWidth/2, DefaultHeight/2)); err != nil {
					t.Errorf("Write %s: %v", format, err)
				}
				if buf.Len() == 0 {
					t.Errorf("Write %s produced nothing", format)
				}
			}
		})
	}

	if _, err := ButterflyChart(b, "sparkle", PaletteHeat); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown coloring: %v", err)
	}
	if _, err := ButterflyChart(&butterfly.Butterfly{}, butterfly.ColorNone, PaletteHeat); err == nil {
		t.Error("empty butterfly should fail")
	}
}

func TestGapSegments(t *testing.T) {
	b := &butterfly.Butterfly{
		Lattice: lattice.SquareLattice,
		Q:       3,
		Columns: []butterfly.Column{
			{P: 1, Flux: 1.0 / 3, Energies: []float64{-2, 0, 2}, Gaps: []butterfly.Gap{
				{R: 1, S: 0, T: 1, Lower: -2, Upper: 0},
				{R: 2, S: 1, T: -1, Lower: 0, Upper: 2},
			}},
			{P: 2, Flux: 2.0 / 3, Energies: []float64{-2.5, 0, 2}, Gaps: []butterfly.Gap{
				{R: 1, S: 1, T: -1, Lower: -2.5, Upper: -1},
			}},
		},
	}
	g, err := newGapSegments(b, PaletteRainbow)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.segs) != 3 {
		t.Fatalf("segments = %d, want 3", len(g.segs))
	}
	// Equal Hall values share a color.
	if !sameColor(g.segs[1].color, g.segs[2].color) || sameColor(g.segs[0].color, g.segs[1].color) {
		t.Error("segments should be colored by Hall value")
	}

	xmin, xmax, ymin, ymax := g.DataRange()
	if xmin != 1.0/3 || xmax != 2.0/3 || ymin != -2.5 || ymax != 2 {
		t.Errorf("DataRange = %v %v %v %v", xmin, xmax, ymin, ymax)
	}
	if xmin, xmax, ymin, ymax := (&gapSegments{}).DataRange(); xmin != 0 || xmax != 0 || ymin != 0 || ymax != 0 {
		t.Error("empty DataRange should be zero")
	}
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestWriteUnknownFormat(t *testing.T) {
	b := testButterfly(t)
	p, _ := ButterflyChart(b, butterfly.ColorNone, PaletteHeat)
	err := Write(p, &bytes.Buffer{}, "gif")
	if err == nil || !strings.Contains(err.Error(), "gif") {
		t.Errorf("Write(gif) = %v", err)
	}
}
