package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Extent is the energy range covered by one band.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Width returns Max - Min.
func (e Extent) Width() float64 { return e.Max - e.Min }

// Extents returns the energy range of every band over the grid.
func Extents(f *EigenField) []Extent {
	out := make([]Extent, f.Bands)
	col := make([]float64, f.Samples*f.Samples)
	for b := range out {
		for p := range col {
			col[p] = f.Values[p*f.Bands+b]
		}
		out[b] = Extent{Min: floats.Min(col), Max: floats.Max(col)}
	}
	return out
}

// MinGaps returns, for each pair of adjacent bands (b, b+1), the smallest
// direct gap E_{b+1}(k) - E_b(k) over the grid.
func MinGaps(f *EigenField) []float64 {
	if f.Bands < 2 {
		return nil
	}
	gaps := make([]float64, f.Bands-1)
	for b := range gaps {
		gaps[b] = math.Inf(1)
	}
	for p := 0; p < f.Samples*f.Samples; p++ {
		vals := f.Values[p*f.Bands : (p+1)*f.Bands]
		for b := range gaps {
			gaps[b] = math.Min(gaps[b], vals[b+1]-vals[b])
		}
	}
	return gaps
}

// BandGroup is a run of contiguous bands that touch somewhere on the grid.
type BandGroup struct {
	Lowest int `json:"lowest"`
	Size   int `json:"size"`
}

// BandGroups partitions the bands into groups. Adjacent bands whose
// smallest direct gap is below threshold belong to the same group.
func BandGroups(f *EigenField, threshold float64) []BandGroup {
	if f.Bands == 0 {
		return nil
	}
	gaps := MinGaps(f)
	groups := []BandGroup{{Lowest: 0, Size: 1}}
	for b, g := range gaps {
		if g < threshold {
			groups[len(groups)-1].Size++
			continue
		}
		groups = append(groups, BandGroup{Lowest: b + 1, Size: 1})
	}
	return groups
}
