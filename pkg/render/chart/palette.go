package chart

import (
	"image/color"
	"slices"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Palette names.
const (
	PaletteHeat    = "heat"
	PaletteRainbow = "rainbow"
	PaletteBlueRed = "bluered"
)

// Palettes lists the palette names.
var Palettes = []string{PaletteHeat, PaletteRainbow, PaletteBlueRed}

// ParsePalette validates a palette name.
func ParsePalette(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(Palettes, name) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown palette %q (want one of %s)", s, strings.Join(Palettes, ", "))
	}
	return name, nil
}

// NewPalette returns n colors of the named palette, at least two.
func NewPalette(name string, n int) (palette.Palette, error) {
	name, err := ParsePalette(name)
	if err != nil {
		return nil, err
	}
	n = max(n, 2)
	switch name {
	case PaletteHeat:
		return palette.Heat(n, 1), nil
	case PaletteRainbow:
		return palette.Rainbow(n, palette.Blue, palette.Red, 1, 1, 1), nil
	default:
		cm := moreland.SmoothBlueRed()
		cm.SetMax(1)
		cm.SetMin(0)
		return cm.Palette(n), nil
	}
}

// Colors is [NewPalette] flattened to its color slice.
func Colors(name string, n int) ([]color.Color, error) {
	p, err := NewPalette(name, n)
	if err != nil {
		return nil, err
	}
	return p.Colors(), nil
}
