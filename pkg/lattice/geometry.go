package lattice

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Name identifies a lattice family.
type Name string

// Lattice families accepted at the configuration layer.
const (
	SquareLattice     Name = "square"
	TriangularLattice Name = "triangular"
	BravaisLattice    Name = "bravais"
	HoneycombLattice  Name = "honeycomb"
	KagomeLattice     Name = "kagome"
)

// Names lists every lattice family in display order.
var Names = []Name{SquareLattice, TriangularLattice, BravaisLattice, HoneycombLattice, KagomeLattice}

// ParseName converts a string to a lattice Name.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnsupportedLattice, "unknown lattice %q (want one of %v)", s, Names)
}

// Geometry describes a lattice well enough to enumerate its neighbors.
type Geometry struct {
	Vectors   [2]r2.Vec // primitive translations
	Cartesian [2]r2.Vec // unit steps defining the integer (m, n) coordinates
	Basis     []r2.Vec  // sublattice offsets within a primitive cell
}

// Sites returns the number of sublattice sites per primitive cell.
func (g Geometry) Sites() int { return len(g.Basis) }

// Square returns the square lattice with lattice constant a0.
func Square(a0 float64) Geometry {
	return Geometry{
		Vectors:   [2]r2.Vec{{X: a0}, {Y: a0}},
		Cartesian: [2]r2.Vec{{X: a0}, {Y: a0}},
		Basis:     []r2.Vec{{}},
	}
}

// Triangular returns the triangular lattice with lattice constant a0.
// Its integer x coordinate counts half lattice constants.
func Triangular(a0 float64) Geometry {
	s := math.Sqrt(3) / 2
	return Geometry{
		Vectors:   [2]r2.Vec{{X: a0}, {X: a0 / 2, Y: a0 * s}},
		Cartesian: [2]r2.Vec{{X: a0 / 2}, {Y: a0 * s}},
		Basis:     []r2.Vec{{}},
	}
}

// Honeycomb returns the two-site honeycomb lattice with bond length a0.
func Honeycomb(a0 float64) Geometry {
	s := math.Sqrt(3) / 2
	return Geometry{
		Vectors:   [2]r2.Vec{{X: 1.5 * a0, Y: a0 * s}, {X: 1.5 * a0, Y: -a0 * s}},
		Cartesian: [2]r2.Vec{{X: a0 / 2}, {Y: a0 * s}},
		Basis:     []r2.Vec{{}, {X: a0}},
	}
}

// GeometryFor returns the enumeration geometry for a lattice family.
// Families without a geometry return ok == false.
func GeometryFor(name Name, a0 float64) (Geometry, bool) {
	switch name {
	case SquareLattice:
		return Square(a0), true
	case TriangularLattice:
		return Triangular(a0), true
	case HoneycombLattice:
		return Honeycomb(a0), true
	}
	return Geometry{}, false
}
