// Package model provides lattice models that expose a Bloch Hamiltonian at
// any momentum.
//
// The only model is [Hofstadter]: nearest and further-neighbor hopping on a
// square or triangular lattice threaded by a rational flux p/q. The
// honeycomb, kagome and generic Bravais tags are accepted by configuration
// but rejected here with errors.ErrCodeUnsupportedLattice.
package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/hamiltonian"
	"github.com/qmatter/hofstadter/pkg/lattice"
)

// HofstadterName is the model name recorded in bundles.
const HofstadterName = "Hofstadter"

// SymmetryPoint is a high-symmetry point in fractional reciprocal
// coordinates.
type SymmetryPoint struct {
	Label string
	Frac  r2.Vec
}

// SymmetryPoints are the points of the rectangular magnetic Brillouin zone.
var SymmetryPoints = []SymmetryPoint{
	{Label: "Γ", Frac: r2.Vec{}},
	{Label: "Y", Frac: r2.Vec{Y: 0.5}},
	{Label: "S", Frac: r2.Vec{X: 0.5, Y: 0.5}},
	{Label: "X", Frac: r2.Vec{X: 0.5}},
}

// UnitCell describes the magnetic unit cell of a model.
type UnitCell struct {
	Bands      int
	Vectors    [2]r2.Vec
	Reciprocal [2]r2.Vec
	Symmetry   []SymmetryPoint
}

// Momentum converts fractional reciprocal coordinates into a momentum.
func (c UnitCell) Momentum(frac r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(frac.X, c.Reciprocal[0]), r2.Scale(frac.Y, c.Reciprocal[1]))
}

// Record is the serializable parameter set of a model.
type Record struct {
	Name    string       `json:"name"`
	P       int          `json:"p"`
	Q       int          `json:"q"`
	A0      float64      `json:"a0"`
	T       []float64    `json:"t"`
	Lattice lattice.Name `json:"lattice"`
}

// Hofstadter is the Hofstadter model on a square or triangular lattice.
// Paths are derived once at construction; Hamiltonian is safe for
// concurrent use.
type Hofstadter struct {
	P, Q    int
	A0      float64
	T       []float64
	Lattice lattice.Name

	geom  lattice.Geometry
	paths lattice.PathSet
}

// Option configures a Hofstadter model.
type Option func(*Hofstadter)

// WithLatticeConstant sets a0 (default 1).
func WithLatticeConstant(a0 float64) Option {
	return func(h *Hofstadter) { h.A0 = a0 }
}

// WithHopping sets the hopping amplitudes in ascending neighbor order
// (default [1]).
func WithHopping(t ...float64) Option {
	return func(h *Hofstadter) { h.T = append([]float64(nil), t...) }
}

// WithLattice selects the lattice (default square).
func WithLattice(name lattice.Name) Option {
	return func(h *Hofstadter) { h.Lattice = name }
}

// Supported reports whether the Hofstadter model is wired for a lattice.
func Supported(name lattice.Name) bool {
	return name == lattice.SquareLattice || name == lattice.TriangularLattice
}

// NewHofstadter builds the model for flux p/q.
func NewHofstadter(p, q int, opts ...Option) (*Hofstadter, error) {
	h := &Hofstadter{P: p, Q: q, A0: 1, T: []float64{1}, Lattice: lattice.SquareLattice}
	for _, opt := range opts {
		opt(h)
	}

	if err := errors.ValidateFlux(p, q); err != nil {
		return nil, err
	}
	if err := errors.ValidateHopping(h.T); err != nil {
		return nil, err
	}
	if !(h.A0 > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "lattice constant must be positive, got %g", h.A0)
	}
	if !Supported(h.Lattice) {
		return nil, errors.New(errors.ErrCodeUnsupportedLattice,
			"the Hofstadter model is not implemented on the %s lattice", h.Lattice)
	}

	h.geom, _ = lattice.GeometryFor(h.Lattice, h.A0)
	table, err := lattice.Table(h.geom, h.T)
	if err != nil {
		return nil, err
	}
	if h.paths, err = lattice.GroupPaths(table); err != nil {
		return nil, err
	}
	return h, nil
}

// FromRecord rebuilds a model from its record.
func FromRecord(r Record) (*Hofstadter, error) {
	if r.Name != "" && r.Name != HofstadterName {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown model %q", r.Name)
	}
	a0 := r.A0
	if a0 == 0 {
		a0 = 1
	}
	return NewHofstadter(r.P, r.Q, WithLatticeConstant(a0), WithHopping(r.T...), WithLattice(r.Lattice))
}

// Record returns the model parameters.
func (h *Hofstadter) Record() Record {
	return Record{
		Name:    HofstadterName,
		P:       h.P,
		Q:       h.Q,
		A0:      h.A0,
		T:       append([]float64(nil), h.T...),
		Lattice: h.Lattice,
	}
}

// Flux returns p/q.
func (h *Hofstadter) Flux() float64 { return float64(h.P) / float64(h.Q) }

// Geometry returns the enumeration geometry.
func (h *Hofstadter) Geometry() lattice.Geometry { return h.geom }

// Paths returns the grouped hopping paths.
func (h *Hofstadter) Paths() lattice.PathSet { return h.paths }

// UnitCell returns the magnetic unit cell.
//
// Square: a1 = a0 (q, 0), a2 = a0 (0, 1).
// Triangular: a2 = a0 (0, sqrt3) and a1 = a0 (q/2, sqrt3/2) for odd q or
// a0 (q/2, 0) for even q, the smallest translations that map the
// half-column Landau gauge onto itself.
func (h *Hofstadter) UnitCell() UnitCell {
	q := float64(h.Q)
	var a [2]r2.Vec
	switch h.Lattice {
	case lattice.TriangularLattice:
		a[0] = r2.Vec{X: h.A0 * q / 2}
		if h.Q%2 == 1 {
			a[0].Y = h.A0 * math.Sqrt(3) / 2
		}
		a[1] = r2.Vec{Y: h.A0 * math.Sqrt(3)}
	default:
		a[0] = r2.Vec{X: h.A0 * q}
		a[1] = r2.Vec{Y: h.A0}
	}
	return UnitCell{
		Bands:      h.Q,
		Vectors:    a,
		Reciprocal: Reciprocal(a),
		Symmetry:   SymmetryPoints,
	}
}

// Hamiltonian returns the Bloch Hamiltonian at momentum k.
func (h *Hofstadter) Hamiltonian(k r2.Vec) (*mat.CDense, error) {
	params := hamiltonian.Params{Sites: h.geom.Sites(), P: h.P, Q: h.Q, T: h.T}
	return hamiltonian.Assemble(params, h.paths, k)
}

// Reciprocal returns B = 2pi (A^-1)^T for the direct vectors a.
// Degenerate vectors give a zero result.
func Reciprocal(a [2]r2.Vec) [2]r2.Vec {
	A := mat.NewDense(2, 2, []float64{a[0].X, a[0].Y, a[1].X, a[1].Y})
	var inv mat.Dense
	if err := inv.Inverse(A); err != nil {
		return [2]r2.Vec{}
	}
	return [2]r2.Vec{
		{X: 2 * math.Pi * inv.At(0, 0), Y: 2 * math.Pi * inv.At(1, 0)},
		{X: 2 * math.Pi * inv.At(0, 1), Y: 2 * math.Pi * inv.At(1, 1)},
	}
}
