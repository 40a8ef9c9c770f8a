package lattice

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// radiusDecimals is the precision radii are rounded to before they are
// compared for shell membership.
const radiusDecimals = 1e10

// ErrNoHopping is returned when every hopping amplitude is zero.
var ErrNoHopping = errors.New(errors.ErrCodeNoHopping, "no nonzero hopping amplitude supplied")

// Cell is an integer cell coordinate in the (m, n) grid.
type Cell struct {
	M, N int
}

// DisplacementVector is one candidate hop from a reference cell.
type DisplacementVector struct {
	R      r2.Vec  // Cartesian offset
	Radius float64 // |R| rounded to 10 decimals
	Angle  float64 // polar angle in [0, 2pi)
	M, N   int     // integer offset in units of the Cartesian steps
	Shell  int     // neighbor order, starting at 1
	Ref    Cell    // reference cell the offset is measured from
	Target int     // Ref.M + M, the magnetic translation index reached
}

// Endpoint returns the cell the displacement ends in.
func (d DisplacementVector) Endpoint() Cell {
	return Cell{M: d.Ref.M + d.M, N: d.Ref.N + d.N}
}

// Backtracks reports whether the displacement returns to the origin cell.
func (d DisplacementVector) Backtracks() bool {
	return d.Ref.M+d.M == 0 && d.Ref.N+d.N == 0
}

// NeighborShell groups the displacements that share one radius.
type NeighborShell struct {
	Index   int
	Radius  float64
	Vectors []DisplacementVector
}

// Orders returns the neighbor orders with a nonzero amplitude, ascending.
func Orders(t []float64) []int {
	var orders []int
	for i, v := range t {
		if v != 0 {
			orders = append(orders, i+1)
		}
	}
	return orders
}

// Enumerate lists the displacements from ref to every site in the
// requested neighbor shells.
//
// Candidates come from the window [-K, K]^2 of primitive translations,
// where K is the highest requested order, combined with every basis
// offset. The result is sorted by radius, then angle.
func Enumerate(g Geometry, t []float64, ref Cell) ([]DisplacementVector, error) {
	orders := Orders(t)
	if len(orders) == 0 {
		return nil, ErrNoHopping
	}
	if len(g.Basis) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "lattice geometry has no basis sites")
	}

	k := orders[len(orders)-1]
	origin := r2.Add(r2.Scale(float64(ref.M), g.Cartesian[0]), r2.Scale(float64(ref.N), g.Cartesian[1]))

	var candidates []DisplacementVector
	for i := -k; i <= k; i++ {
		for j := -k; j <= k; j++ {
			cell := r2.Add(r2.Scale(float64(i), g.Vectors[0]), r2.Scale(float64(j), g.Vectors[1]))
			for _, b := range g.Basis {
				r := r2.Sub(r2.Add(cell, b), origin)
				r = r2.Vec{X: snap(r.X), Y: snap(r.Y)}
				radius := math.Round(r2.Norm(r)*radiusDecimals) / radiusDecimals
				if radius == 0 {
					continue
				}
				m := int(math.Round(r.X / g.Cartesian[0].X))
				n := int(math.Round(r.Y / g.Cartesian[1].Y))
				candidates = append(candidates, DisplacementVector{
					R:      r,
					Radius: radius,
					Angle:  angle(r),
					M:      m,
					N:      n,
					Ref:    ref,
					Target: ref.M + m,
				})
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b DisplacementVector) int {
		if c := cmp.Compare(a.Radius, b.Radius); c != 0 {
			return c
		}
		return cmp.Compare(a.Angle, b.Angle)
	})

	// Label shells by distinct radius.
	shell, last := 0, -1.0
	for i := range candidates {
		if candidates[i].Radius != last {
			shell++
			last = candidates[i].Radius
		}
		candidates[i].Shell = shell
	}
	if k > shell {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"neighbor order %d requested but only %d shells found", k, shell)
	}

	keep := make(map[int]bool, len(orders))
	for _, o := range orders {
		keep[o] = true
	}
	out := candidates[:0]
	for _, c := range candidates {
		if keep[c.Shell] {
			out = append(out, c)
		}
	}
	return slices.Clip(out), nil
}

// Shells regroups enumerated displacements by shell index.
// The input must be sorted by radius, as returned by [Enumerate].
func Shells(vectors []DisplacementVector) []NeighborShell {
	var shells []NeighborShell
	for _, v := range vectors {
		if n := len(shells); n > 0 && shells[n-1].Index == v.Shell {
			shells[n-1].Vectors = append(shells[n-1].Vectors, v)
			continue
		}
		shells = append(shells, NeighborShell{
			Index:   v.Shell,
			Radius:  v.Radius,
			Vectors: []DisplacementVector{v},
		})
	}
	return shells
}

// Table builds the displacement table consumed by [GroupPaths].
//
// For single-site lattices it is the enumeration from the origin cell.
// Multi-site lattices also need the continuation hops, so the table
// additionally holds the enumeration from every cell an origin hop ends in.
func Table(g Geometry, t []float64) ([]DisplacementVector, error) {
	rows, err := Enumerate(g, t, Cell{})
	if err != nil {
		return nil, err
	}
	if g.Sites() < 2 {
		return rows, nil
	}

	seen := map[Cell]bool{{}: true}
	origin := len(rows)
	for _, v := range rows[:origin] {
		end := v.Endpoint()
		if seen[end] {
			continue
		}
		seen[end] = true
		next, err := Enumerate(g, t, end)
		if err != nil {
			return nil, err
		}
		rows = append(rows, next...)
	}
	return rows, nil
}

// snap clears rounding noise so that axis-aligned vectors get exact angles.
func snap(v float64) float64 {
	if math.Abs(v) < 1e-12 {
		return 0
	}
	return v
}

func angle(r r2.Vec) float64 {
	a := math.Atan2(r.Y, r.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
