package geometry

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Field is read access to an eigenvector field.
type Field interface {
	Dims() (bands, samples int)
	Vector(band, ix, iy int) []complex128
}

// Direction is a grid direction, 1 for k1 and 2 for k2.
type Direction int

const (
	K1 Direction = 1
	K2 Direction = 2
)

// Selection picks the bands an invariant is computed for. The concrete
// types are [SingleBand] and [BandGroup].
type Selection interface {
	// Span returns the lowest selected band and the number of bands.
	Span() (lowest, size int)

	// overlap returns det <u_i(a)|u_j(b)> over the selected bands.
	overlap(a, b func(band int) []complex128) complex128
	// band returns the band index when exactly one band is selected.
	band() (int, bool)
}

// SingleBand selects one isolated band.
type SingleBand struct {
	Band int
}

func (s SingleBand) Span() (int, int)  { return s.Band, 1 }
func (s SingleBand) band() (int, bool) { return s.Band, true }

func (s SingleBand) overlap(a, b func(int) []complex128) complex128 {
	return cmplxs.Dot(a(s.Band), b(s.Band))
}

// BandGroup selects Size touching bands starting at Band.
type BandGroup struct {
	Band, Size int
}

func (g BandGroup) Span() (int, int)  { return g.Band, g.Size }
func (g BandGroup) band() (int, bool) { return g.Band, g.Size == 1 }

func (g BandGroup) overlap(a, b func(int) []complex128) complex128 {
	m := make([][]complex128, g.Size)
	for i := range m {
		m[i] = make([]complex128, g.Size)
		ui := a(g.Band + i)
		for j := range m[i] {
			m[i][j] = cmplxs.Dot(ui, b(g.Band+j))
		}
	}
	return det(m)
}

// Select returns SingleBand for size 1 and BandGroup otherwise. Sizes
// below 1 stay a BandGroup so that every operation rejects them.
func Select(lowest, size int) Selection {
	if size == 1 {
		return SingleBand{Band: lowest}
	}
	return BandGroup{Band: lowest, Size: size}
}

func validate(f Field, sel Selection) error {
	bands, _ := f.Dims()
	lo, n := sel.Span()
	if lo < 0 || n < 1 || lo+n > bands {
		return errors.New(errors.ErrCodeInvalidArgument,
			"band selection [%d, %d) outside the %d available bands", lo, lo+n, bands)
	}
	return nil
}

func vectorsAt(f Field, ix, iy int) func(int) []complex128 {
	return func(band int) []complex128 { return f.Vector(band, ix, iy) }
}

// Link returns the U(1) link variable between (ix, iy) and its forward
// neighbor along dir.
func Link(f Field, sel Selection, dir Direction, ix, iy int) (complex128, error) {
	jx, jy := ix, iy
	switch dir {
	case K1:
		jx++
	case K2:
		jy++
	default:
		return 0, errors.New(errors.ErrCodeInvalidArgument, "link direction must be 1 or 2, got %d", dir)
	}
	if err := validate(f, sel); err != nil {
		return 0, err
	}
	_, n := f.Dims()
	if ix < 0 || iy < 0 || jx >= n || jy >= n {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "link at (%d, %d) along %d leaves the %dx%d grid", ix, iy, dir, n, n)
	}
	return normalize(sel.overlap(vectorsAt(f, ix, iy), vectorsAt(f, jx, jy))), nil
}

func normalize(z complex128) complex128 {
	return z / complex(cmplx.Abs(z), 0)
}

// Principal maps the imaginary part of z into (-pi, pi] and keeps the real
// part.
func Principal(z complex128) complex128 {
	im := imag(z)
	im -= 2 * math.Pi * math.Ceil((im-math.Pi)/(2*math.Pi))
	return complex(real(z), im)
}

// det computes a complex determinant by LU decomposition with partial
// pivoting. The input is overwritten.
func det(a [][]complex128) complex128 {
	n := len(a)
	d := complex(1, 0)
	for c := 0; c < n; c++ {
		p := c
		for r := c + 1; r < n; r++ {
			if cmplx.Abs(a[r][c]) > cmplx.Abs(a[p][c]) {
				p = r
			}
		}
		if a[p][c] == 0 {
			return 0
		}
		if p != c {
			a[p], a[c] = a[c], a[p]
			d = -d
		}
		d *= a[c][c]
		for r := c + 1; r < n; r++ {
			f := a[r][c] / a[c][c]
			for k := c; k < n; k++ {
				a[r][k] -= f * a[c][k]
			}
		}
	}
	return d
}
