// Package hamiltonian assembles the magnetic-unit-cell Bloch Hamiltonian of
// a tight-binding lattice in a perpendicular field.
//
// The field enters through Peierls substitution: every hop carries the
// phase exp(i 2 pi nphi dn (m + dm/2) / A), where (dm, dn) is the hop in
// integer lattice coordinates, m is the magnetic sub-cell the hop leaves,
// and A normalizes by the area of the primitive cell.
package hamiltonian

import (
	"math"
	"math/cmplx"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// AreaFactor returns the area normalization of the Peierls phase for a
// basis with the given number of sites. Only one- and two-site bases are
// derived; larger bases (kagome) are rejected rather than guessed.
func AreaFactor(sites int) (float64, error) {
	switch sites {
	case 1:
		return 1, nil
	case 2:
		return 3, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedBasis,
		"Peierls area factor is not implemented for a %d-site basis", sites)
}

// Peierls returns the gauge factor for hop (dm, dn) leaving sub-cell m at
// flux density nphi.
func Peierls(sites int, nphi float64, dm, dn, m int) (complex128, error) {
	area, err := AreaFactor(sites)
	if err != nil {
		return 0, err
	}
	return peierls(nphi, area, dm, dn, m), nil
}

func peierls(nphi, area float64, dm, dn, m int) complex128 {
	phase := 2 * math.Pi * nphi * float64(dn) * (float64(m) + float64(dm)/2) / area
	return cmplx.Exp(complex(0, phase))
}
