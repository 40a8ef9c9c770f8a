package geometry

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Method selects the Berry curvature discretization.
type Method int

const (
	Fukui         Method = 1 // plaquette product of link variables
	QuantumMetric Method = 2 // from the quantum geometric tensor
)

// Tensor is the quantum geometric tensor on one plaquette.
type Tensor [2][2]complex128

// Metric returns the quantum metric, the real part of the tensor.
func (t Tensor) Metric() [2][2]float64 {
	return [2][2]float64{
		{real(t[0][0]), real(t[0][1])},
		{real(t[1][0]), real(t[1][1])},
	}
}

// Curvature returns -2 Im T12.
func (t Tensor) Curvature() float64 { return -2 * imag(t[0][1]) }

func checkPlaquette(f Field, ix, iy int) error {
	_, n := f.Dims()
	if ix < 0 || iy < 0 || ix+1 >= n || iy+1 >= n {
		return errors.New(errors.ErrCodeInvalidArgument, "plaquette (%d, %d) outside the %dx%d grid", ix, iy, n, n)
	}
	return nil
}

// BerryCurvature returns the Berry curvature on the plaquette whose lower
// left corner is (ix, iy).
func BerryCurvature(f Field, sel Selection, ix, iy int, method Method) (float64, error) {
	switch method {
	case Fukui:
		return fukui(f, sel, ix, iy)
	case QuantumMetric:
		t, err := GeometricTensor(f, sel, ix, iy)
		if err != nil {
			return 0, err
		}
		return t.Curvature(), nil
	}
	return 0, errors.New(errors.ErrCodeInvalidArgument, "curvature method must be 1 or 2, got %d", method)
}

func fukui(f Field, sel Selection, ix, iy int) (float64, error) {
	if err := checkPlaquette(f, ix, iy); err != nil {
		return 0, err
	}
	u1, err := Link(f, sel, K1, ix, iy)
	if err != nil {
		return 0, err
	}
	u2x, err := Link(f, sel, K2, ix+1, iy)
	if err != nil {
		return 0, err
	}
	u1y, err := Link(f, sel, K1, ix, iy+1)
	if err != nil {
		return 0, err
	}
	u2, err := Link(f, sel, K2, ix, iy)
	if err != nil {
		return 0, err
	}
	loop := u1 * u2x / u1y / u2
	return -imag(Principal(cmplx.Log(loop))), nil
}

// GeometricTensor returns the quantum geometric tensor on the plaquette at
// (ix, iy):
//
//	T[mu][nu] = <u_mu|u_nu> - <u_mu|u><u|u_nu>
//
// where u is the eigenvector at (ix, iy) and u_mu its forward neighbor
// along mu. Band groups are not supported.
func GeometricTensor(f Field, sel Selection, ix, iy int) (Tensor, error) {
	if err := validate(f, sel); err != nil {
		return Tensor{}, err
	}
	b, ok := sel.band()
	if !ok {
		_, n := sel.Span()
		return Tensor{}, errors.New(errors.ErrCodeNotImplemented,
			"quantum geometric tensor is only implemented for single bands, got a group of %d", n)
	}
	if err := checkPlaquette(f, ix, iy); err != nil {
		return Tensor{}, err
	}

	u := f.Vector(b, ix, iy)
	nb := [2][]complex128{f.Vector(b, ix+1, iy), f.Vector(b, ix, iy+1)}
	var t Tensor
	for mu := range 2 {
		for nu := range 2 {
			t[mu][nu] = cmplxs.Dot(nb[mu], nb[nu]) - cmplxs.Dot(nb[mu], u)*cmplxs.Dot(u, nb[nu])
		}
	}
	return t, nil
}

// CurvatureField returns the Berry curvature on every plaquette, indexed
// [ix][iy].
func CurvatureField(f Field, sel Selection, method Method) ([][]float64, error) {
	_, n := f.Dims()
	out := make([][]float64, n-1)
	for ix := range out {
		out[ix] = make([]float64, n-1)
		for iy := range out[ix] {
			v, err := BerryCurvature(f, sel, ix, iy, method)
			if err != nil {
				return nil, err
			}
			out[ix][iy] = v
		}
	}
	return out, nil
}

// TensorField returns the quantum geometric tensor on every plaquette.
func TensorField(f Field, sel Selection) ([][]Tensor, error) {
	_, n := f.Dims()
	out := make([][]Tensor, n-1)
	for ix := range out {
		out[ix] = make([]Tensor, n-1)
		for iy := range out[ix] {
			t, err := GeometricTensor(f, sel, ix, iy)
			if err != nil {
				return nil, err
			}
			out[ix][iy] = t
		}
	}
	return out, nil
}

// Chern returns the Chern number of the selection, the Fukui curvature
// summed over the zone divided by 2 pi. For a gapped selection on a grid
// covering one full zone the result is an integer up to rounding.
func Chern(f Field, sel Selection) (float64, error) {
	curv, err := CurvatureField(f, sel, Fukui)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, col := range curv {
		for _, v := range col {
			sum += v
		}
	}
	return sum / (2 * math.Pi), nil
}
