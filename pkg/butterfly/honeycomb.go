package butterfly

import (
	"math"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// HoneycombHamiltonian returns the q x q squared A-sublattice Hamiltonian
// of the nearest-neighbor honeycomb lattice at flux p/q and k = 0:
//
//	H[m][m]       = 2 cos(4 pi phi (m - 1/3))
//	H[m][m+2]     = 2 cos(2 pi phi (m + 5/3)) exp(-i 2 pi phi (m + 1))
//	H[m+2][m]     = conj(H[m][m+2])
//
// with row indices taken mod q.
func HoneycombHamiltonian(p, q int) *mat.CDense {
	phi := float64(p) / float64(q)
	h := mat.NewCDense(q, q, nil)
	for m := 0; m < q; m++ {
		fm := float64(m)
		h.Set(m, m, h.At(m, m)+complex(2*math.Cos(4*math.Pi*phi*(fm-1.0/3)), 0))

		c := complex(2*math.Cos(2*math.Pi*phi*(fm+5.0/3)), 0) *
			cmplx.Exp(complex(0, -math.Pi*phi*0.5*(4*fm+4)))
		j := (m + 2) % q
		h.Set(m, j, h.At(m, j)+c)
		h.Set(j, m, h.At(j, m)+cmplx.Conj(c))
	}
	return h
}

// HoneycombEnergies returns the 2q honeycomb levels at flux p/q,
// E = +-sqrt(3 + lambda) for every eigenvalue lambda of
// [HoneycombHamiltonian], ascending. Rounding can push 3 + lambda slightly
// below zero at the band center; those levels are clamped to zero.
func HoneycombEnergies(p, q int) ([]float64, error) {
	if err := errors.ValidateFlux(p, q); err != nil {
		return nil, err
	}
	e, err := spectrum.Hermitian(HoneycombHamiltonian(p, q))
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, 2*q)
	for _, l := range e.Values {
		r := math.Sqrt(math.Max(3+l, 0))
		out = append(out, r, -r)
	}
	slices.Sort(out)
	return out, nil
}
