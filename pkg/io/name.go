package io

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/lattice"
)

// Name is the parameter set encoded in a bundle or figure file name.
type Name struct {
	Program Program
	Lattice lattice.Name
	P, Q    int // P is zero for butterflies
	T       []float64
	Color   string
	Palette string
	Ext     string // without the dot
}

// FileName returns the conventional file name of a bundle:
//
//	band_structure_<lattice>_nphi_<p>_<q>_t_<amps>.<ext>
//	butterfly_<lattice>_q_<q>_t_<amps>_col_<color>_<palette>.<ext>
func FileName(b *Bundle, ext string) string {
	return Name{
		Program: b.Args.Program,
		Lattice: b.Model.Lattice,
		P:       b.Model.P,
		Q:       b.Model.Q,
		T:       b.Model.T,
		Color:   b.Args.Color,
		Palette: b.Args.Palette,
		Ext:     ext,
	}.String()
}

func (n Name) String() string {
	var sb strings.Builder
	sb.WriteString(string(n.Program))
	sb.WriteString("_")
	sb.WriteString(string(n.Lattice))
	if n.Program == ProgramButterfly {
		sb.WriteString("_q_" + strconv.Itoa(n.Q))
	} else {
		sb.WriteString("_nphi_" + strconv.Itoa(n.P) + "_" + strconv.Itoa(n.Q))
	}
	sb.WriteString("_t_" + amplitudes(n.T))
	if n.Program == ProgramButterfly {
		sb.WriteString("_col_" + n.Color + "_" + n.Palette)
	}
	if n.Ext != "" {
		sb.WriteString("." + n.Ext)
	}
	return sb.String()
}

func amplitudes(t []float64) string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "_")
}

// ParseFileName reverses [FileName]. Directory components are ignored.
func ParseFileName(path string) (Name, error) {
	base := filepath.Base(path)
	if err := errors.ValidateBundleName(base); err != nil {
		return Name{}, err
	}
	var n Name
	if ext := filepath.Ext(base); ext != "" {
		n.Ext = ext[1:]
		base = strings.TrimSuffix(base, ext)
	}
	bad := func(format string, args ...any) (Name, error) {
		return Name{}, errors.New(errors.ErrCodeInvalidFormat, "bundle name %q: "+format, append([]any{filepath.Base(path)}, args...)...)
	}

	var rest string
	switch {
	case strings.HasPrefix(base, string(ProgramBands)+"_"):
		n.Program, rest = ProgramBands, strings.TrimPrefix(base, string(ProgramBands)+"_")
	case strings.HasPrefix(base, string(ProgramButterfly)+"_"):
		n.Program, rest = ProgramButterfly, strings.TrimPrefix(base, string(ProgramButterfly)+"_")
	default:
		return bad("unknown program")
	}

	fields := strings.Split(rest, "_")
	lat, err := lattice.ParseName(fields[0])
	if err != nil {
		return bad("%v", err)
	}
	n.Lattice = lat
	fields = fields[1:]

	ints := func(key string, count int) ([]int, bool) {
		if len(fields) < count+1 || fields[0] != key {
			return nil, false
		}
		out := make([]int, count)
		for i := range out {
			v, err := strconv.Atoi(fields[1+i])
			if err != nil {
				return nil, false
			}
			out[i] = v
		}
		fields = fields[count+1:]
		return out, true
	}

	if n.Program == ProgramButterfly {
		v, ok := ints("q", 1)
		if !ok {
			return bad("missing q")
		}
		n.Q = v[0]
	} else {
		v, ok := ints("nphi", 2)
		if !ok {
			return bad("missing nphi")
		}
		n.P, n.Q = v[0], v[1]
	}

	if len(fields) < 2 || fields[0] != "t" {
		return bad("missing hopping amplitudes")
	}
	fields = fields[1:]
	end := len(fields)
	if n.Program == ProgramButterfly {
		end = -1
		for i, f := range fields {
			if f == "col" {
				end = i
			}
		}
		if end < 1 || len(fields) != end+3 {
			return bad("missing coloring")
		}
		n.Color, n.Palette = fields[end+1], fields[end+2]
	}
	for _, f := range fields[:end] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return bad("hopping amplitude %q: %v", f, err)
		}
		n.T = append(n.T, v)
	}
	if len(n.T) == 0 {
		return bad("missing hopping amplitudes")
	}
	return n, nil
}
