package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

type bundle struct {
	Model model.Record `json:"model"`
	Args  Args         `json:"args"`
	Data  data         `json:"data"`
	Meta  Meta         `json:"meta"`
}

type data struct {
	Field     *field                 `json:"field,omitempty"`
	Path      *spectrum.PathSpectrum `json:"path,omitempty"`
	Sets      []BandSet              `json:"sets,omitempty"`
	Butterfly *butterfly.Butterfly   `json:"butterfly,omitempty"`
}

type field struct {
	Bands   int          `json:"bands"`
	Samples int          `json:"samples"`
	Values  []float64    `json:"values"`
	Vectors [][2]float64 `json:"vectors,omitempty"`
}

func toField(f *spectrum.EigenField) *field {
	if f == nil {
		return nil
	}
	out := &field{Bands: f.Bands, Samples: f.Samples, Values: f.Values}
	if len(f.Vectors) > 0 {
		out.Vectors = make([][2]float64, len(f.Vectors))
		for i, z := range f.Vectors {
			out.Vectors[i] = [2]float64{real(z), imag(z)}
		}
	}
	return out
}

// WriteJSON encodes a bundle as indented JSON and writes it to w.
func WriteJSON(b *Bundle, w io.Writer) error {
	out := bundle{
		Model: b.Model,
		Args:  b.Args,
		Meta:  b.Meta,
		Data: data{
			Field:     toField(b.Data.Field),
			Path:      b.Data.Path,
			Sets:      b.Data.Sets,
			Butterfly: b.Data.Butterfly,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a bundle to a JSON file at path.
func ExportJSON(b *Bundle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(b, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export writes a bundle into dir under its conventional file name and
// returns the full path.
func Export(b *Bundle, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	name := FileName(b, "json")
	if err := errors.ValidateBundleName(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := ExportJSON(b, path); err != nil {
		return "", err
	}
	return path, nil
}
