package model

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r2"
)

// Embedding returns the diagonal d of the gauge transformation D with
// H(k+g) = D H(k) D^dagger, for g a reciprocal lattice vector of the
// magnetic cell. Eigenvectors obey u(k+g) = D u(k) up to a phase, which is
// what closes a Wilson loop across the zone boundary.
//
// Every path with net index i must pick up the same factor exp(i alpha i)
// under k -> k+g, with alpha a multiple of 2pi/q. ok is false when no such
// alpha exists, which means g is not a reciprocal vector of this model.
func (h *Hofstadter) Embedding(g r2.Vec) (d []complex128, ok bool) {
	const tol = 1e-9
	q := h.Q

	for l := 0; l < q; l++ {
		alpha := 2 * math.Pi * float64(l) / float64(q)
		if !h.consistent(g, alpha, tol) {
			continue
		}
		d = make([]complex128, q)
		for m := range d {
			d[m] = cmplx.Exp(complex(0, -alpha*float64(m)))
		}
		return d, true
	}
	return nil, false
}

func (h *Hofstadter) consistent(g r2.Vec, alpha, tol float64) bool {
	for _, grp := range h.paths.Groups {
		for _, p := range grp.Paths {
			var r r2.Vec
			for _, leg := range p.Legs() {
				r = r2.Add(r, leg.R)
			}
			shift := cmplx.Exp(complex(0, r2.Dot(g, r)-alpha*float64(grp.Net)))
			if cmplx.Abs(shift-1) > tol {
				return false
			}
		}
	}
	return true
}
