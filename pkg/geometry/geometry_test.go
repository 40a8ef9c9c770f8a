package geometry

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// constField returns the same basis, i times the unit vectors, at every
// grid point.
type constField struct {
	bands, samples int
}

func (c constField) Dims() (int, int) { return c.bands, c.samples }

func (c constField) Vector(band, _, _ int) []complex128 {
	v := make([]complex128, c.bands)
	v[band] = 1i
	return v
}

func hofstadterField(t *testing.T, p, q, samples int) (*model.Hofstadter, *spectrum.EigenField) {
	t.Helper()
	h, err := model.NewHofstadter(p, q)
	require.NoError(t, err)
	f, err := spectrum.Compute(context.Background(), h, h.UnitCell(), spectrum.Options{Samples: samples})
	require.NoError(t, err)
	return h, f
}

func TestPrincipal(t *testing.T) {
	tests := []struct {
		in, want complex128
	}{
		{complex(2, 0.5), complex(2, 0.5)},
		{complex(0, math.Pi), complex(0, math.Pi)},
		{complex(0, -math.Pi), complex(0, math.Pi)},
		{complex(-1, 2.5*math.Pi), complex(-1, 0.5*math.Pi)},
		{complex(0, -1.5*math.Pi), complex(0, 0.5*math.Pi)},
		{complex(0, 2*math.Pi+0.25), complex(0, 0.25)},
	}
	for _, tt := range tests {
		got := Principal(tt.in)
		assert.Equal(t, real(tt.want), real(got))
		assert.InDelta(t, imag(tt.want), imag(got), 1e-12, "Principal(%v)", tt.in)
	}

	for im := -20.0; im <= 20; im += 0.137 {
		got := imag(Principal(complex(1, im)))
		assert.Greater(t, got, -math.Pi)
		assert.LessOrEqual(t, got, math.Pi)
		if im > -math.Pi && im <= math.Pi {
			assert.Equal(t, im, got)
		}
	}
}

func TestConstantFieldHasNoCurvature(t *testing.T) {
	f := constField{bands: 3, samples: 4}

	for _, sel := range []Selection{SingleBand{Band: 1}, BandGroup{Band: 0, Size: 2}} {
		curv, err := CurvatureField(f, sel, Fukui)
		require.NoError(t, err)
		require.Len(t, curv, 3)
		for _, col := range curv {
			for _, v := range col {
				assert.Equal(t, 0.0, v)
			}
		}
	}

	curv, err := CurvatureField(f, SingleBand{Band: 2}, QuantumMetric)
	require.NoError(t, err)
	for _, col := range curv {
		for _, v := range col {
			assert.Equal(t, 0.0, v)
		}
	}

	tensors, err := TensorField(f, SingleBand{Band: 0})
	require.NoError(t, err)
	for _, col := range tensors {
		for _, tt := range col {
			for mu := range 2 {
				for nu := range 2 {
					assert.InDelta(t, 0, cmplx.Abs(tt[mu][nu]), 1e-15)
				}
			}
		}
	}

	centers, err := WannierCenters(f, SingleBand{Band: 0}, nil)
	require.NoError(t, err)
	for _, c := range centers {
		assert.Equal(t, 0.0, c)
	}
}

func TestChernHofstadterThird(t *testing.T) {
	h, f := hofstadterField(t, 1, 3, 25)

	var chern []int
	sum := 0
	for b := 0; b < 3; b++ {
		c, err := Chern(f, SingleBand{Band: b})
		require.NoError(t, err)
		rounded := int(math.Round(c))
		assert.InDelta(t, float64(rounded), c, 1e-6, "band %d", b)
		chern = append(chern, rounded)
		sum += rounded
	}
	assert.Equal(t, 1, abs(chern[0]))
	assert.Equal(t, 2, abs(chern[1]))
	assert.Equal(t, 0, sum)

	all, err := Chern(f, BandGroup{Band: 0, Size: 3})
	require.NoError(t, err)
	assert.InDelta(t, 0, all, 1e-6)

	pair, err := Chern(f, BandGroup{Band: 0, Size: 2})
	require.NoError(t, err)
	assert.InDelta(t, float64(chern[0]+chern[1]), pair, 1e-6)

	embed, ok := h.Embedding(h.UnitCell().Reciprocal[1])
	require.True(t, ok)
	centers, err := WannierCenters(f, SingleBand{Band: 0}, embed)
	require.NoError(t, err)
	assert.Len(t, centers, 25)
	assert.Equal(t, 1, abs(Winding(centers)))
}

func TestGeometricTensorProperties(t *testing.T) {
	_, f := hofstadterField(t, 1, 4, 6)

	tensors, err := TensorField(f, SingleBand{Band: 0})
	require.NoError(t, err)
	for _, col := range tensors {
		for _, tt := range col {
			g := tt.Metric()
			assert.GreaterOrEqual(t, g[0][0], -1e-12)
			assert.GreaterOrEqual(t, g[1][1], -1e-12)
			assert.InDelta(t, 0, cmplx.Abs(tt[1][0]-cmplx.Conj(tt[0][1])), 1e-12)
		}
	}
}

func TestErrors(t *testing.T) {
	f := constField{bands: 3, samples: 4}

	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"bad direction", second(Link(f, SingleBand{}, 3, 0, 0)), errors.ErrCodeInvalidArgument},
		{"link off grid", second(Link(f, SingleBand{}, K1, 3, 0)), errors.ErrCodeInvalidArgument},
		{"bad method", second(BerryCurvature(f, SingleBand{}, 0, 0, 3)), errors.ErrCodeInvalidArgument},
		{"metric on group", second(BerryCurvature(f, BandGroup{Band: 0, Size: 2}, 0, 0, QuantumMetric)), errors.ErrCodeNotImplemented},
		{"tensor on group", second(GeometricTensor(f, BandGroup{Band: 1, Size: 2}, 0, 0)), errors.ErrCodeNotImplemented},
		{"selection too wide", second(BerryCurvature(f, BandGroup{Band: 2, Size: 2}, 0, 0, Fukui)), errors.ErrCodeInvalidArgument},
		{"plaquette off grid", second(BerryCurvature(f, SingleBand{}, 3, 3, Fukui)), errors.ErrCodeInvalidArgument},
		{"embedding size", second(WannierCenters(f, SingleBand{}, []complex128{1})), errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.code, errors.GetCode(tt.err))
		})
	}
}

func TestDet(t *testing.T) {
	m := [][]complex128{{1, 2i}, {3, 4}}
	assert.InDelta(t, 0, cmplx.Abs(det(m)-complex(4, -6)), 1e-14)

	// needs a pivot swap
	m = [][]complex128{{0, 1, 0}, {1, 0, 0}, {0, 0, 1i}}
	assert.InDelta(t, 0, cmplx.Abs(det(m)-complex(0, -1)), 1e-15)

	assert.Equal(t, complex(0, 0), det([][]complex128{{1, 1}, {1, 1}}))
}

func TestSelect(t *testing.T) {
	assert.Equal(t, SingleBand{Band: 2}, Select(2, 1))
	assert.Equal(t, BandGroup{Band: 1, Size: 3}, Select(1, 3))
	assert.Equal(t, BandGroup{Band: 0, Size: 0}, Select(0, 0))
	assert.Equal(t, BandGroup{Band: 0, Size: -2}, Select(0, -2))

	f := constField{bands: 3, samples: 4}
	for _, size := range []int{0, -1} {
		_, err := Chern(f, Select(0, size))
		require.Error(t, err, "size %d", size)
		assert.Equal(t, errors.ErrCodeInvalidArgument, errors.GetCode(err), "size %d", size)
	}
}

func TestWinding(t *testing.T) {
	assert.Equal(t, 0, Winding([]float64{0, 0.1, 0.2, 0.1, 0}))
	assert.Equal(t, 1, Winding([]float64{-0.4, -0.1, 0.2, 0.45, -0.4}))
	assert.Equal(t, -1, Winding([]float64{0.4, 0.1, -0.2, -0.45, 0.4}))
}

func second[T any](_ T, err error) error { return err }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
