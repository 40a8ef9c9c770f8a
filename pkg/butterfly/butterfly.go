// Package butterfly computes the Hofstadter butterfly: the k = 0 spectrum
// of every coprime flux p/q for a fixed denominator q.
//
// Square and triangular lattices use the model Hamiltonian directly. The
// honeycomb lattice uses the squared sublattice Hamiltonian of
// [HoneycombEnergies], which needs only q sites instead of 2q.
//
// Each column carries its spectral gaps labelled by the Diophantine
// equation r = q s + p t ([Label]); t is the Hall conductance of the gap in
// units of e^2/h and drives the "avron" coloring.
package butterfly

import (
	"context"
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// DefaultGapThreshold is the smallest energy separation recorded as a gap.
const DefaultGapThreshold = 0.01

// Coloring selects how butterfly points are colored.
type Coloring string

const (
	ColorNone  Coloring = "none"  // single color
	ColorPoint Coloring = "point" // by flux
	ColorAvron Coloring = "avron" // gaps by Hall conductance t
)

// Colorings lists the valid colorings.
var Colorings = []Coloring{ColorNone, ColorPoint, ColorAvron}

// ParseColoring converts a string into a Coloring.
func ParseColoring(s string) (Coloring, error) {
	for _, c := range Colorings {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown coloring %q (want one of %v)", s, Colorings)
}

// Params configures a sweep.
type Params struct {
	Lattice lattice.Name
	Q       int
	T       []float64 // hopping amplitudes; ignored for honeycomb
	A0      float64   // lattice constant, default 1

	GapThreshold float64               // default DefaultGapThreshold
	Workers      int                   // default runtime.NumCPU()
	Progress     func(done, total int) // optional; called concurrently
}

// Gap is a spectral gap of one column.
type Gap struct {
	R     int     `json:"r"` // number of levels below the gap
	S     int     `json:"s"`
	T     int     `json:"t"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Column is the spectrum at one flux.
type Column struct {
	P        int       `json:"p"`
	Flux     float64   `json:"flux"`
	Energies []float64 `json:"energies"` // ascending
	Gaps     []Gap     `json:"gaps,omitempty"`
}

// Butterfly is a complete sweep.
type Butterfly struct {
	Lattice lattice.Name `json:"lattice"`
	Q       int          `json:"q"`
	T       []float64    `json:"t"`
	Columns []Column     `json:"columns"`
}

// Numerators returns every p in [1, q) coprime to q.
func Numerators(q int) []int {
	var ps []int
	for p := 1; p < q; p++ {
		if errors.GCD(p, q) == 1 {
			ps = append(ps, p)
		}
	}
	return ps
}

// Sweep computes the butterfly for denominator params.Q. Columns come back
// ordered by p regardless of completion order.
func Sweep(ctx context.Context, params Params) (*Butterfly, error) {
	if params.Q < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFlux, "butterfly denominator must be at least 2, got %d", params.Q)
	}
	if params.A0 == 0 {
		params.A0 = 1
	}
	if len(params.T) == 0 {
		params.T = []float64{1}
	}
	if params.GapThreshold <= 0 {
		params.GapThreshold = DefaultGapThreshold
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var column func(p int) ([]float64, error)
	switch {
	case params.Lattice == lattice.HoneycombLattice:
		column = func(p int) ([]float64, error) { return HoneycombEnergies(p, params.Q) }
	case model.Supported(params.Lattice):
		column = func(p int) ([]float64, error) { return modelEnergies(params, p) }
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedLattice,
			"the butterfly is not implemented on the %s lattice", params.Lattice)
	}

	ps := Numerators(params.Q)
	out := &Butterfly{
		Lattice: params.Lattice,
		Q:       params.Q,
		T:       append([]float64(nil), params.T...),
		Columns: make([]Column, len(ps)),
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range ps {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			energies, err := column(p)
			if err != nil {
				return err
			}
			out.Columns[i] = Column{
				P:        p,
				Flux:     float64(p) / float64(params.Q),
				Energies: energies,
				Gaps:     Gaps(energies, p, params.Q, params.GapThreshold),
			}
			if params.Progress != nil {
				params.Progress(int(done.Add(1)), len(ps))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func modelEnergies(params Params, p int) ([]float64, error) {
	h, err := model.NewHofstadter(p, params.Q,
		model.WithLattice(params.Lattice),
		model.WithHopping(params.T...),
		model.WithLatticeConstant(params.A0))
	if err != nil {
		return nil, err
	}
	m, err := h.Hamiltonian(r2.Vec{})
	if err != nil {
		return nil, err
	}
	e, err := spectrum.Hermitian(m)
	if err != nil {
		return nil, err
	}
	return e.Values, nil
}

// Gaps returns the gaps wider than threshold in an ascending spectrum,
// each labelled with its Diophantine solution.
func Gaps(energies []float64, p, q int, threshold float64) []Gap {
	var gaps []Gap
	for r := 1; r < len(energies); r++ {
		lo, hi := energies[r-1], energies[r]
		if hi-lo <= threshold {
			continue
		}
		s, t := Label(r, p, q)
		gaps = append(gaps, Gap{R: r, S: s, T: t, Lower: lo, Upper: hi})
	}
	return gaps
}

// Label solves r = q s + p t for the t of smallest magnitude, |t| <= q/2.
// For even q the tie at |t| = q/2 goes to the positive t.
func Label(r, p, q int) (s, t int) {
	best := 0
	found := false
	for c := -q / 2; c <= q/2; c++ {
		if mod(r-p*c, q) != 0 {
			continue
		}
		if !found || abs(c) < abs(best) || (abs(c) == abs(best) && c > best) {
			best, found = c, true
		}
	}
	return (r - p*best) / q, best
}

// Points flattens the sweep into scatter coordinates (flux, energy).
func (b *Butterfly) Points() (flux, energy []float64) {
	for _, c := range b.Columns {
		for _, e := range c.Energies {
			flux = append(flux, c.Flux)
			energy = append(energy, e)
		}
	}
	return flux, energy
}

// HallValues returns the distinct Hall conductances t across all gaps,
// ascending.
func (b *Butterfly) HallValues() []int {
	var ts []int
	for _, c := range b.Columns {
		for _, g := range c.Gaps {
			ts = append(ts, g.T)
		}
	}
	slices.Sort(ts)
	return slices.Compact(ts)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
