package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

func fromField(f *field) (*spectrum.EigenField, error) {
	if f == nil {
		return nil, nil
	}
	points := f.Samples * f.Samples
	if f.Bands < 1 || f.Samples < 2 || len(f.Values) != points*f.Bands {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"field: %d values do not fit %d bands on a %dx%d grid", len(f.Values), f.Bands, f.Samples, f.Samples)
	}
	out := &spectrum.EigenField{Bands: f.Bands, Samples: f.Samples, Values: f.Values}
	if len(f.Vectors) == 0 {
		return out, nil
	}
	if len(f.Vectors) != points*f.Bands*f.Bands {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"field: %d vector components do not fit %d bands on a %dx%d grid", len(f.Vectors), f.Bands, f.Samples, f.Samples)
	}
	out.Vectors = make([]complex128, len(f.Vectors))
	for i, z := range f.Vectors {
		out.Vectors[i] = complex(z[0], z[1])
	}
	return out, nil
}

// ReadJSON decodes a bundle from r.
//
// ReadJSON returns an error with code INVALID_FORMAT if:
//   - the JSON is malformed
//   - the model or program is missing or unknown
//   - the field arrays do not match the declared bands and samples
//   - a butterfly bundle carries no butterfly data
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Bundle, error) {
	var in bundle
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode bundle")
	}
	if in.Model.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "bundle has no model")
	}

	switch in.Args.Program {
	case ProgramBands:
	case ProgramButterfly:
		if in.Data.Butterfly == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "butterfly bundle has no butterfly data")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown program %q", in.Args.Program)
	}

	f, err := fromField(in.Data.Field)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Model: in.Model,
		Args:  in.Args,
		Meta:  in.Meta,
		Data: Data{
			Field:     f,
			Path:      in.Data.Path,
			Sets:      in.Data.Sets,
			Butterfly: in.Data.Butterfly,
		},
	}, nil
}

// ImportJSON reads the bundle file at path.
func ImportJSON(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
