package hamiltonian

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/lattice"
)

// Params are the model inputs the assembler needs besides the paths.
type Params struct {
	Sites int       // sublattice sites per primitive cell
	P, Q  int       // flux density p/q; Q is the matrix size
	T     []float64 // hopping amplitudes by ascending neighbor order
}

// Flux returns p/q.
func (p Params) Flux() float64 { return float64(p.P) / float64(p.Q) }

// Assemble builds the Q x Q Bloch Hamiltonian at momentum k.
//
// Only groups with a non-negative net index are evaluated. A group with
// net i fills the band (m, (m+i) mod Q) with the path amplitudes taken at
// sub-cell (m+i) mod Q, and the mirrored band with their conjugates. For
// single-hop paths the net-zero group is the diagonal and has no mirror.
func Assemble(params Params, paths lattice.PathSet, k r2.Vec) (*mat.CDense, error) {
	q := params.Q
	if q < 1 {
		return nil, errors.New(errors.ErrCodeInvalidFlux, "flux denominator must be positive, got %d", q)
	}
	area, err := AreaFactor(params.Sites)
	if err != nil {
		return nil, err
	}

	nphi := params.Flux()
	phase := func(hop lattice.DisplacementVector, m int) complex128 {
		return peierls(nphi, area, hop.M, hop.N, m)
	}

	h := mat.NewCDense(q, q, nil)
	for _, g := range paths.Groups {
		if g.Net < 0 {
			continue
		}
		diagonal := !paths.Doubled && g.Net == 0
		for m := 0; m < q; m++ {
			mv := (m + g.Net) % q
			var v complex128
			for _, p := range g.Paths {
				v += p.Amplitude(params.T, q, k, mv, phase)
			}
			h.Set(m, mv, h.At(m, mv)+v)
			if !diagonal {
				h.Set(mv, m, h.At(mv, m)+cmplx.Conj(v))
			}
		}
	}
	return h, nil
}
