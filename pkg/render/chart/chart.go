package chart

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatEPS = "eps"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatEPS}

// ParseFormat normalizes and validates an output format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown figure format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
	return f, nil
}

// Default figure size.
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 12 * vg.Centimeter
)

// Option configures figure output.
type Option func(*writer)

type writer struct {
	width, height vg.Length
}

// WithSize sets the figure size.
func WithSize(w, h vg.Length) Option {
	return func(o *writer) { o.width, o.height = w, h }
}

// Write encodes p in the given format to w.
func Write(p *plot.Plot, w io.Writer, format string, opts ...Option) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	o := writer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(&o)
	}

	wt, err := p.WriterTo(o.width, o.height, f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	return nil
}

// Render is [Write] into a byte slice.
func Render(p *plot.Plot, format string, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(p, &buf, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
