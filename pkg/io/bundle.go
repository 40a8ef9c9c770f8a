package io

import (
	"time"

	"github.com/google/uuid"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/model"
	"github.com/qmatter/hofstadter/pkg/spectrum"
)

// Program identifies what produced a bundle.
type Program string

const (
	ProgramBands     Program = "band_structure"
	ProgramButterfly Program = "butterfly"
)

// Args are the run arguments that affect how results are drawn.
type Args struct {
	Program      Program `json:"program"`
	Samples      int     `json:"samples,omitempty"`
	PathPoints   int     `json:"path_points,omitempty"` // per leg of the band path
	GapThreshold float64 `json:"bgt,omitempty"`
	Display      string  `json:"display,omitempty"` // "3D" or "2D"
	Wilson       bool    `json:"wilson,omitempty"`
	Color        string  `json:"color,omitempty"`
	Palette      string  `json:"palette,omitempty"`
}

// BandSet is the invariants of one isolated band or band group.
type BandSet struct {
	Lowest    int         `json:"lowest"`
	Size      int         `json:"size"`
	Chern     float64     `json:"chern"`
	Curvature [][]float64 `json:"curvature,omitempty"` // [ix][iy] per plaquette
	Wannier   []float64   `json:"wannier,omitempty"`   // center per k1 column
	Winding   int         `json:"winding,omitempty"`
}

// Data holds the computed results. Band-structure runs fill Field, Path
// and Sets; butterfly runs fill Butterfly.
type Data struct {
	Field     *spectrum.EigenField
	Path      *spectrum.PathSpectrum
	Sets      []BandSet
	Butterfly *butterfly.Butterfly
}

// Meta identifies a run.
type Meta struct {
	ID      uuid.UUID     `json:"id"`
	Created time.Time     `json:"created"`
	Version string        `json:"version,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// NewMeta returns metadata with a fresh random ID.
func NewMeta(version string) Meta {
	return Meta{ID: uuid.New(), Created: time.Now().UTC().Truncate(time.Second), Version: version}
}

// Bundle is one saved run.
type Bundle struct {
	Model model.Record
	Args  Args
	Data  Data
	Meta  Meta
}
