package spectrum

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/model"
)

// Tick marks a high-symmetry point along a band path.
type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// PathSpectrum is the band structure along a closed path through the
// high-symmetry points.
type PathSpectrum struct {
	Distance []float64   `json:"distance"` // cumulative |dk|
	Energies [][]float64 `json:"energies"` // [band][point]
	Ticks    []Tick      `json:"ticks"`
}

// BandPath samples h along the symmetry points of cell and back to the
// first one (Γ-Y-S-X-Γ), with perSegment points per leg.
func BandPath(h Hamiltonian, cell model.UnitCell, perSegment int) (*PathSpectrum, error) {
	if perSegment < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "band path needs at least 2 points per segment, got %d", perSegment)
	}
	pts := cell.Symmetry
	if len(pts) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "band path needs at least 2 symmetry points")
	}

	out := &PathSpectrum{Energies: make([][]float64, cell.Bands)}
	var (
		dist float64
		prev r2.Vec
	)
	for s := range pts {
		from := cell.Momentum(pts[s].Frac)
		to := cell.Momentum(pts[(s+1)%len(pts)].Frac)

		for i := 0; i < perSegment; i++ {
			// Segments share endpoints; only the last one keeps its end.
			if i == perSegment-1 && s != len(pts)-1 {
				break
			}
			f := float64(i) / float64(perSegment-1)
			k := r2.Add(from, r2.Scale(f, r2.Sub(to, from)))
			if len(out.Distance) > 0 {
				dist += r2.Norm(r2.Sub(k, prev))
			}
			prev = k
			if i == 0 {
				out.Ticks = append(out.Ticks, Tick{Position: dist, Label: pts[s].Label})
			}

			m, err := h.Hamiltonian(k)
			if err != nil {
				return nil, err
			}
			if r, _ := m.Dims(); r != cell.Bands {
				return nil, errors.New(errors.ErrCodeInternal, "Hamiltonian has %d rows, unit cell has %d bands", r, cell.Bands)
			}
			e, err := Hermitian(m)
			if err != nil {
				return nil, err
			}
			out.Distance = append(out.Distance, dist)
			for b := range out.Energies {
				out.Energies[b] = append(out.Energies[b], e.Values[b])
			}
		}
	}
	out.Ticks = append(out.Ticks, Tick{Position: dist, Label: pts[0].Label})
	return out, nil
}
