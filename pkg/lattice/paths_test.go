package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func groupFor(t *testing.T, geom Geometry, amps []float64) PathSet {
	t.Helper()
	table, err := Table(geom, amps)
	require.NoError(t, err)
	set, err := GroupPaths(table)
	require.NoError(t, err)
	return set
}

func TestGroupPathsSquare(t *testing.T) {
	set := groupFor(t, Square(1), []float64{1})

	assert.False(t, set.Doubled)
	assert.Equal(t, []int{-1, 0, 1}, set.Nets())
	assert.Equal(t, 4, set.Len())

	zero, ok := set.Group(0)
	require.True(t, ok)
	assert.Len(t, zero.Paths, 2)
	for _, p := range zero.Paths {
		assert.IsType(t, SingleHopPath{}, p)
		assert.Equal(t, 0, p.Legs()[0].M)
	}

	_, ok = set.Group(2)
	assert.False(t, ok)
}

func TestGroupPathsHoneycomb(t *testing.T) {
	set := groupFor(t, Honeycomb(1), []float64{1})

	assert.True(t, set.Doubled)
	assert.Equal(t, []int{-3, -1, 3}, set.Nets())
	assert.Equal(t, 6, set.Len())

	for _, g := range set.Groups {
		for _, p := range g.Paths {
			require.IsType(t, DoubledHopPath{}, p)
			legs := p.Legs()
			require.Len(t, legs, 2)
			assert.Equal(t, Cell{}, legs[0].Ref)
			assert.Equal(t, legs[0].Endpoint(), legs[1].Ref)
			assert.False(t, legs[1].Backtracks())
		}
	}
}

func TestGroupPathsPartition(t *testing.T) {
	for _, tc := range []struct {
		geom Geometry
		amps []float64
	}{
		{Square(1), []float64{1, 0.3, -0.25}},
		{Triangular(1), []float64{1, 0.2}},
		{Honeycomb(1), []float64{1}},
	} {
		table, err := Table(tc.geom, tc.amps)
		require.NoError(t, err)
		set, err := GroupPaths(table)
		require.NoError(t, err)

		for i := 1; i < len(set.Groups); i++ {
			assert.Less(t, set.Groups[i-1].Net, set.Groups[i].Net)
		}

		seen := map[DisplacementVector]int{}
		for _, g := range set.Groups {
			for _, p := range g.Paths {
				assert.Equal(t, g.Net, p.Net())
				if !set.Doubled {
					seen[p.Legs()[0]]++
				}
			}
		}
		if !set.Doubled {
			origin := 0
			for _, v := range table {
				if v.Ref == (Cell{}) && !v.Backtracks() {
					origin++
					assert.Equal(t, 1, seen[v], "hop %+v", v)
				}
			}
			assert.Equal(t, origin, set.Len())
		}
	}
}

func TestGroupPathsEmpty(t *testing.T) {
	_, err := GroupPaths(nil)
	assert.Error(t, err)
}

func TestDoubledTieBreak(t *testing.T) {
	tests := []struct {
		name          string
		first, second int
		want          int
	}{
		{"continuation larger", 1, 3, 3},
		{"first larger", -3, 0, -3},
		{"tie goes to continuation", 2, -2, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewDoubledHopPath(DisplacementVector{Target: tt.first}, DisplacementVector{Target: tt.second})
			assert.Equal(t, tt.want, p.Net())
		})
	}
}

func TestSingleHopAmplitude(t *testing.T) {
	hop := DisplacementVector{R: r2.Vec{X: 1}, M: 1, Shell: 2}
	p := SingleHopPath{Hop: hop}
	unit := func(DisplacementVector, int) complex128 { return 1 }

	got := p.Amplitude([]float64{1, 0.5}, 4, r2.Vec{}, 0, unit)
	assert.InDelta(t, -0.5, real(got), 1e-15)
	assert.InDelta(t, 0, imag(got), 1e-15)
}

func TestDoubledHopAmplitudeModulus(t *testing.T) {
	first := DisplacementVector{M: 2, Target: 2}
	second := DisplacementVector{M: 1, N: 1, Ref: Cell{M: -1, N: 1}, Target: 0}
	p := NewDoubledHopPath(first, second)

	var got []int
	record := func(_ DisplacementVector, m int) complex128 {
		got = append(got, m)
		return 1
	}
	amp := p.Amplitude(nil, 3, r2.Vec{}, 0, record)

	assert.Equal(t, complex(1, 0), amp)
	// second leg: (0 - 1) mod (3 + 1)
	assert.Equal(t, []int{0, 3}, got)
}
