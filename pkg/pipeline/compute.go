package pipeline

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/geometry"
	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// =============================================================================
// Band Structure
// =============================================================================

// NewModel builds the Hofstadter model the options describe.
func NewModel(opts Options) (*model.Hofstadter, error) {
	return model.NewHofstadter(opts.P, opts.Q,
		model.WithLattice(lattice.Name(opts.Lattice)),
		model.WithHopping(opts.T...),
		model.WithLatticeConstant(opts.A0),
	)
}

// HoppingPaths groups the hopping paths of the lattice the options
// describe. It needs only the lattice geometry, so lattices without a
// Hofstadter model (honeycomb) can still be drawn.
func HoppingPaths(opts Options) (lattice.PathSet, error) {
	name := lattice.Name(opts.Lattice)
	geom, ok := lattice.GeometryFor(name, opts.A0)
	if !ok {
		return lattice.PathSet{}, errors.New(errors.ErrCodeUnsupportedLattice, "no geometry for the %s lattice", name)
	}
	table, err := lattice.Table(geom, opts.T)
	if err != nil {
		return lattice.PathSet{}, err
	}
	return lattice.GroupPaths(table)
}

// ComputeSpectrum diagonalizes h on the momentum grid and along the band
// path.
func ComputeSpectrum(ctx context.Context, h *model.Hofstadter, opts Options) (*spectrum.EigenField, *spectrum.PathSpectrum, error) {
	cell := h.UnitCell()
	field, err := spectrum.Compute(ctx, h, cell, spectrum.Options{
		Samples:  opts.Samples,
		Workers:  opts.Workers,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, nil, err
	}
	path, err := spectrum.BandPath(h, cell, opts.PathPoints)
	if err != nil {
		return nil, nil, fmt.Errorf("band path: %w", err)
	}
	return field, path, nil
}

// Invariants splits the field into isolated band sets and computes the
// Chern number and Berry curvature of each. With opts.Wilson it also
// computes the hybrid Wannier centers along k2 and their winding.
func Invariants(h *model.Hofstadter, field *spectrum.EigenField, opts Options) ([]hio.BandSet, error) {
	var embed []complex128
	if opts.Wilson {
		var err error
		if embed, err = wilsonEmbedding(h, h.UnitCell().Reciprocal[1]); err != nil {
			return nil, err
		}
	}

	groups := spectrum.BandGroups(field, opts.GapThreshold)
	sets := make([]hio.BandSet, 0, len(groups))
	for _, g := range groups {
		sel := geometry.Select(g.Lowest, g.Size)
		set := hio.BandSet{Lowest: g.Lowest, Size: g.Size}

		curv, err := geometry.CurvatureField(field, sel, geometry.Fukui)
		if err != nil {
			return nil, fmt.Errorf("curvature of bands %d+%d: %w", g.Lowest, g.Size, err)
		}
		set.Curvature = curv
		set.Chern = chern(curv)

		if opts.Wilson {
			centers, err := geometry.WannierCenters(field, sel, embed)
			if err != nil {
				return nil, fmt.Errorf("wannier centers of bands %d+%d: %w", g.Lowest, g.Size, err)
			}
			set.Wannier = centers
			set.Winding = geometry.Winding(centers)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// wilsonEmbedding returns the orbital phases that carry the eigenvectors
// at k + g back to k for Wilson loops along g.
func wilsonEmbedding(h *model.Hofstadter, g r2.Vec) ([]complex128, error) {
	embed, ok := h.Embedding(g)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotImplemented,
			"no Wilson-loop embedding for the %s lattice at n_phi = %d/%d", h.Lattice, h.P, h.Q)
	}
	return embed, nil
}

// chern sums a Fukui curvature field, the same sum geometry.Chern takes,
// without recomputing the field.
func chern(curv [][]float64) float64 {
	var sum float64
	for _, col := range curv {
		for _, v := range col {
			sum += v
		}
	}
	return sum / (2 * math.Pi)
}

func bandsBundle(h *model.Hofstadter, opts Options, data hio.Data, version string) *hio.Bundle {
	return &hio.Bundle{
		Model: h.Record(),
		Args: hio.Args{
			Program:      hio.ProgramBands,
			Samples:      opts.Samples,
			PathPoints:   opts.PathPoints,
			GapThreshold: opts.GapThreshold,
			Display:      opts.Display,
			Wilson:       opts.Wilson,
		},
		Data: data,
		Meta: hio.NewMeta(version),
	}
}

// =============================================================================
// Butterfly
// =============================================================================

// Sweep runs the butterfly sweep the options describe.
func Sweep(ctx context.Context, opts Options) (*butterfly.Butterfly, error) {
	return butterfly.Sweep(ctx, butterfly.Params{
		Lattice:      lattice.Name(opts.Lattice),
		Q:            opts.Q,
		T:            opts.T,
		A0:           opts.A0,
		GapThreshold: opts.GapThreshold,
		Workers:      opts.Workers,
		Progress:     opts.Progress,
	})
}

func butterflyBundle(b *butterfly.Butterfly, opts Options, version string) *hio.Bundle {
	return &hio.Bundle{
		Model: model.Record{
			Name:    model.HofstadterName,
			Q:       opts.Q,
			A0:      opts.A0,
			T:       opts.T,
			Lattice: lattice.Name(opts.Lattice),
		},
		Args: hio.Args{
			Program:      hio.ProgramButterfly,
			GapThreshold: opts.GapThreshold,
			Color:        opts.Color,
			Palette:      opts.Palette,
		},
		Data: hio.Data{Butterfly: b},
		Meta: hio.NewMeta(version),
	}
}
