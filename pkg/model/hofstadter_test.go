package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/lattice"
)

func TestNewHofstadterDefaults(t *testing.T) {
	h, err := NewHofstadter(1, 4)
	require.NoError(t, err)

	assert.Equal(t, 1.0, h.A0)
	assert.Equal(t, []float64{1}, h.T)
	assert.Equal(t, lattice.SquareLattice, h.Lattice)
	assert.Equal(t, 0.25, h.Flux())
	assert.Equal(t, []int{-1, 0, 1}, h.Paths().Nets())
}

func TestNewHofstadterErrors(t *testing.T) {
	tests := []struct {
		name string
		p, q int
		opts []Option
		code errors.Code
	}{
		{"not coprime", 2, 4, nil, errors.ErrCodeInvalidFlux},
		{"zero q", 1, 0, nil, errors.ErrCodeInvalidFlux},
		{"no hopping", 1, 3, []Option{WithHopping(0, 0)}, errors.ErrCodeNoHopping},
		{"honeycomb", 1, 3, []Option{WithLattice(lattice.HoneycombLattice)}, errors.ErrCodeUnsupportedLattice},
		{"kagome", 1, 3, []Option{WithLattice(lattice.KagomeLattice)}, errors.ErrCodeUnsupportedLattice},
		{"bravais", 1, 3, []Option{WithLattice(lattice.BravaisLattice)}, errors.ErrCodeUnsupportedLattice},
		{"bad a0", 1, 3, []Option{WithLatticeConstant(0)}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHofstadter(tt.p, tt.q, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestUnitCellSquare(t *testing.T) {
	h, err := NewHofstadter(1, 4, WithLatticeConstant(2))
	require.NoError(t, err)

	cell := h.UnitCell()
	assert.Equal(t, 4, cell.Bands)
	assert.Equal(t, r2.Vec{X: 8}, cell.Vectors[0])
	assert.Equal(t, r2.Vec{Y: 2}, cell.Vectors[1])
	assert.InDelta(t, 2*math.Pi/8, cell.Reciprocal[0].X, 1e-12)
	assert.InDelta(t, 0, cell.Reciprocal[0].Y, 1e-12)
	assert.InDelta(t, math.Pi, cell.Reciprocal[1].Y, 1e-12)

	require.Len(t, cell.Symmetry, 4)
	labels := []string{"Γ", "Y", "S", "X"}
	for i, p := range cell.Symmetry {
		assert.Equal(t, labels[i], p.Label)
	}
}

func TestUnitCellDuality(t *testing.T) {
	for _, lat := range []lattice.Name{lattice.SquareLattice, lattice.TriangularLattice} {
		for _, q := range []int{1, 2, 3, 4, 7} {
			h, err := NewHofstadter(1, q, WithLattice(lat))
			require.NoError(t, err)

			cell := h.UnitCell()
			for i := range 2 {
				for j := range 2 {
					want := 0.0
					if i == j {
						want = 2 * math.Pi
					}
					got := r2.Dot(cell.Vectors[i], cell.Reciprocal[j])
					assert.InDelta(t, want, got, 1e-12, "%s q=%d a%d.b%d", lat, q, i+1, j+1)
				}
			}
		}
	}
}

// Shifting k by a reciprocal vector must leave the spectrum unchanged,
// which only holds if the unit cell matches the gauge.
func TestHamiltonianReciprocalPeriodicity(t *testing.T) {
	for _, q := range []int{3, 4} {
		h, err := NewHofstadter(1, q, WithLattice(lattice.TriangularLattice))
		require.NoError(t, err)
		cell := h.UnitCell()

		k := r2.Vec{X: 0.37, Y: -0.21}
		h0, err := h.Hamiltonian(k)
		require.NoError(t, err)
		for _, b := range cell.Reciprocal {
			h1, err := h.Hamiltonian(r2.Add(k, b))
			require.NoError(t, err)
			// traces of H and H^2 are similarity invariants
			assert.InDelta(t, real(trace(h0, 1)), real(trace(h1, 1)), 1e-9)
			assert.InDelta(t, real(trace(h0, 2)), real(trace(h1, 2)), 1e-9)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	h, err := NewHofstadter(2, 5, WithHopping(1, 0, -0.25), WithLattice(lattice.SquareLattice))
	require.NoError(t, err)

	rec := h.Record()
	assert.Equal(t, HofstadterName, rec.Name)

	back, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, rec, back.Record())

	_, err = FromRecord(Record{Name: "Haldane", P: 1, Q: 3, T: []float64{1}})
	assert.Error(t, err)
}

func trace(h interface {
	At(i, j int) complex128
	Dims() (int, int)
}, power int) complex128 {
	n, _ := h.Dims()
	var tr complex128
	switch power {
	case 1:
		for i := 0; i < n; i++ {
			tr += h.At(i, i)
		}
	case 2:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				tr += h.At(i, j) * h.At(j, i)
			}
		}
	}
	return tr
}
