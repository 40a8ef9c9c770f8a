package geometry

import (
	"math"
	"math/cmplx"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// WannierCenters returns the hybrid Wannier center of the selection for
// every k1 column, in units of the a2 lattice constant and in (-1/2, 1/2].
//
// Each column is a Wilson loop along k2: the links between consecutive grid
// points, closed by the overlap between the last point and the first one
// mapped through embed (see model.Hofstadter.Embedding). A nil embed means
// the Hamiltonian is periodic along b2.
func WannierCenters(f Field, sel Selection, embed []complex128) ([]float64, error) {
	if err := validate(f, sel); err != nil {
		return nil, err
	}
	bands, n := f.Dims()
	if embed != nil && len(embed) != bands {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "embedding has %d sites, field has %d bands", len(embed), bands)
	}

	centers := make([]float64, n)
	for ix := range centers {
		loop := complex(1, 0)
		for iy := 0; iy < n-1; iy++ {
			u, err := Link(f, sel, K2, ix, iy)
			if err != nil {
				return nil, err
			}
			loop *= u
		}
		first := vectorsAt(f, ix, 0)
		if embed != nil {
			first = func(band int) []complex128 {
				v := f.Vector(band, ix, 0)
				out := make([]complex128, len(v))
				for i := range v {
					out[i] = embed[i] * v[i]
				}
				return out
			}
		}
		loop *= normalize(sel.overlap(vectorsAt(f, ix, n-1), first))

		phase := -imag(Principal(cmplx.Log(loop)))
		centers[ix] = phase / (2 * math.Pi)
	}
	return centers, nil
}

// Winding counts how many times the centers wrap around the unit interval
// from the first column to the last. Steps are taken on the shortest arc.
func Winding(centers []float64) int {
	var total float64
	for i := 1; i < len(centers); i++ {
		d := centers[i] - centers[i-1]
		d -= math.Round(d)
		total += d
	}
	return int(math.Round(total))
}
