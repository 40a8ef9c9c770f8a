package lattice

import (
	"cmp"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// Phase returns the gauge factor a hop picks up when it leaves magnetic
// sub-cell m.
type Phase func(hop DisplacementVector, m int) complex128

// HoppingPath is one independent route from the origin cell to a
// neighbor. The concrete types are [SingleHopPath] and [DoubledHopPath].
type HoppingPath interface {
	// Net is the magnetic translation index the path contributes to.
	Net() int
	// Legs returns the displacements the path is made of, in order.
	Legs() []DisplacementVector
	// Amplitude evaluates the path's Hamiltonian term at momentum k for
	// band index m of a q-site magnetic cell.
	Amplitude(t []float64, q int, k r2.Vec, m int, phase Phase) complex128

	isPath()
}

// SingleHopPath is a path made of one displacement.
type SingleHopPath struct {
	Hop DisplacementVector
}

func (p SingleHopPath) Net() int                   { return p.Hop.Target }
func (p SingleHopPath) Legs() []DisplacementVector { return []DisplacementVector{p.Hop} }
func (SingleHopPath) isPath()                      {}

// Amplitude returns -t_s * phase(hop, m) * exp(i k.r).
func (p SingleHopPath) Amplitude(t []float64, q int, k r2.Vec, m int, phase Phase) complex128 {
	amp := complex(-t[p.Hop.Shell-1], 0)
	return amp * phase(p.Hop, m) * planeWave(k, p.Hop.R)
}

// DoubledHopPath is a hop from the origin followed by a continuation hop
// from the first hop's endpoint cell.
type DoubledHopPath struct {
	First, Second DisplacementVector
	net           int
}

// NewDoubledHopPath pairs an origin hop with its continuation. The net
// index is the larger of the two targets in magnitude, and the
// continuation wins a tie.
func NewDoubledHopPath(first, second DisplacementVector) DoubledHopPath {
	net := first.Target
	if abs(second.Target) >= abs(first.Target) {
		net = second.Target
	}
	return DoubledHopPath{First: first, Second: second, net: net}
}

func (p DoubledHopPath) Net() int                   { return p.net }
func (p DoubledHopPath) Legs() []DisplacementVector { return []DisplacementVector{p.First, p.Second} }
func (DoubledHopPath) isPath()                      {}

// Amplitude multiplies the phase and plane wave of both legs. Each leg's
// sub-cell index is m shifted by the leg's reference cell, taken modulo
// q+1.
func (p DoubledHopPath) Amplitude(_ []float64, q int, k r2.Vec, m int, phase Phase) complex128 {
	term := complex(1, 0)
	for _, leg := range p.Legs() {
		term *= phase(leg, mod(m+leg.Ref.M, q+1)) * planeWave(k, leg.R)
	}
	return term
}

// PathGroup holds every path with one net translation index.
type PathGroup struct {
	Net   int
	Paths []HoppingPath
}

// PathSet is the output of [GroupPaths].
type PathSet struct {
	Doubled bool        // paths are two-leg paths
	Groups  []PathGroup // sorted by strictly increasing Net
}

// Group returns the group with the given net index.
func (s PathSet) Group(net int) (PathGroup, bool) {
	i, ok := slices.BinarySearchFunc(s.Groups, net, func(g PathGroup, n int) int {
		return cmp.Compare(g.Net, n)
	})
	if !ok {
		return PathGroup{}, false
	}
	return s.Groups[i], true
}

// Nets returns the net indices in ascending order.
func (s PathSet) Nets() []int {
	nets := make([]int, len(s.Groups))
	for i, g := range s.Groups {
		nets[i] = g.Net
	}
	return nets
}

// Len returns the total number of paths.
func (s PathSet) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Paths)
	}
	return n
}

// GroupPaths turns a displacement table into independent hopping paths.
//
// Backtracking rows are dropped first. If any origin row has a
// continuation (a row whose reference cell is the origin row's endpoint)
// every path is doubled; otherwise each origin row is its own path.
func GroupPaths(table []DisplacementVector) (PathSet, error) {
	rows := make([]DisplacementVector, 0, len(table))
	for _, v := range table {
		if !v.Backtracks() {
			rows = append(rows, v)
		}
	}

	var origin []DisplacementVector
	continuations := make(map[Cell][]DisplacementVector)
	for _, v := range rows {
		if v.Ref == (Cell{}) {
			origin = append(origin, v)
		}
		continuations[v.Ref] = append(continuations[v.Ref], v)
	}
	if len(origin) == 0 {
		return PathSet{}, errors.New(errors.ErrCodeNoHopping, "no hopping paths leave the origin cell")
	}

	var paths []HoppingPath
	for _, v := range origin {
		for _, w := range continuations[v.Endpoint()] {
			paths = append(paths, NewDoubledHopPath(v, w))
		}
	}
	doubled := len(paths) > 0
	if !doubled {
		for _, v := range origin {
			paths = append(paths, SingleHopPath{Hop: v})
		}
	}

	byNet := make(map[int][]HoppingPath)
	for _, p := range paths {
		byNet[p.Net()] = append(byNet[p.Net()], p)
	}
	set := PathSet{Doubled: doubled, Groups: make([]PathGroup, 0, len(byNet))}
	for net, ps := range byNet {
		set.Groups = append(set.Groups, PathGroup{Net: net, Paths: ps})
	}
	slices.SortFunc(set.Groups, func(a, b PathGroup) int { return cmp.Compare(a.Net, b.Net) })
	return set, nil
}

func planeWave(k, r r2.Vec) complex128 {
	return cmplx.Exp(complex(0, r2.Dot(k, r)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// mod returns a non-negative remainder.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
