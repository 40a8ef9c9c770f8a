// Package spectrum diagonalizes Bloch Hamiltonians over the Brillouin zone.
//
// gonum has no complex Hermitian eigensolver, so [Hermitian] embeds the
// n x n matrix H = A + iB into the real symmetric 2n x 2n matrix
// [[A, -B], [B, A]] and solves that with mat.EigenSym. Every eigenvalue of
// H appears twice in the embedding, once for v and once for iv; the
// duplicates are removed by complex Gram-Schmidt.
package spectrum

import (
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// residualTolerance is the norm below which a candidate eigenvector is
// treated as already spanned by the accepted ones.
const residualTolerance = 1e-6

// Matrix is the read access the eigensolver needs.
type Matrix interface {
	Dims() (r, c int)
	At(i, j int) complex128
}

// Eigen is the spectrum of a Hermitian matrix.
type Eigen struct {
	Values  []float64      // ascending
	Vectors [][]complex128 // Vectors[i] is the unit eigenvector of Values[i]
}

// Hermitian diagonalizes a Hermitian matrix. Only the upper triangle of the
// real embedding is read, so tiny non-Hermitian noise is ignored.
func Hermitian(h Matrix) (Eigen, error) {
	n, c := h.Dims()
	if n != c || n == 0 {
		return Eigen{}, errors.New(errors.ErrCodeInvalidArgument, "Hermitian: matrix must be square and non-empty, got %dx%d", n, c)
	}

	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			z := h.At(i, j)
			sym.SetSym(i, j, real(z))
			sym.SetSym(n+i, n+j, real(z))
			sym.SetSym(i, n+j, -imag(z))
			if j > i {
				sym.SetSym(j, n+i, imag(z))
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return Eigen{}, errors.New(errors.ErrCodeInternal, "Hermitian: eigendecomposition did not converge")
	}
	values := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	out := Eigen{
		Values:  make([]float64, 0, n),
		Vectors: make([][]complex128, 0, n),
	}
	for j := 0; j < 2*n && len(out.Values) < n; j++ {
		v := make([]complex128, n)
		for i := range v {
			v[i] = complex(ev.At(i, j), ev.At(n+i, j))
		}
		for _, u := range out.Vectors {
			cmplxs.AddScaled(v, -cmplxs.Dot(u, v), u)
		}
		norm := cmplxs.Norm(v, 2)
		if norm < residualTolerance {
			continue
		}
		cmplxs.Scale(complex(1/norm, 0), v)
		out.Values = append(out.Values, values[j])
		out.Vectors = append(out.Vectors, v)
	}
	if len(out.Values) != n {
		return Eigen{}, errors.New(errors.ErrCodeInternal, "Hermitian: recovered %d of %d eigenvectors", len(out.Values), n)
	}
	return out, nil
}
