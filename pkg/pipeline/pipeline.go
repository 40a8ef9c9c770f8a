// Package pipeline runs the Hofstadter computations end to end.
//
// This package implements the compute → invariants → render → save flow
// shared by every CLI command. Centralizing it keeps caching, logging,
// catalog recording and observability hooks identical across entry points.
//
// # Architecture
//
// A band-structure run has four stages:
//
//  1. Compute: diagonalize the Bloch Hamiltonian on the N x N momentum grid
//     and along the Γ-Y-S-X-Γ path
//  2. Invariants: group bands by gap, then Chern number, Berry curvature and
//     (optionally) Wannier centers per group
//  3. Render: draw the requested figures
//  4. Save: write the bundle and figures, record the run in the catalog
//
// A butterfly run replaces the first two stages with a flux sweep.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Bands(ctx, pipeline.Options{
//	    Lattice: "square",
//	    P: 1, Q: 3,
//	    Formats: []string{"svg"},
//	})
//	svg := res.Artifacts["path.svg"]
//
// Stages can be run on their own:
//
//	res, hit, err := runner.ComputeBandsWithCacheInfo(ctx, opts)
//	artifacts, err := pipeline.Render(bundle, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qmatter/hofstadter/pkg/butterfly"
	"github.com/qmatter/hofstadter/pkg/cache"
	"github.com/qmatter/hofstadter/pkg/errors"
	hio "github.com/qmatter/hofstadter/pkg/io"
	"github.com/qmatter/hofstadter/pkg/lattice"
	"github.com/qmatter/hofstadter/pkg/render/chart"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultSamples is the number of grid points per reciprocal direction.
	DefaultSamples = 101

	// DefaultPathPoints is the number of points per leg of the band path.
	DefaultPathPoints = 50

	// DefaultGapThreshold is the smallest direct gap that separates two
	// band groups.
	DefaultGapThreshold = butterfly.DefaultGapThreshold

	// DefaultLatticeConstant is the default lattice constant a0.
	DefaultLatticeConstant = 1.0

	// DefaultDisplay is the default band-map display.
	DefaultDisplay = chart.Display3D

	// DefaultColoring is the default butterfly coloring.
	DefaultColoring = butterfly.ColorNone

	// DefaultPalette is the default color palette.
	DefaultPalette = chart.PaletteHeat
)

// DefaultLattice is the default lattice.
const DefaultLattice = lattice.SquareLattice

// Format constants for output files.
const (
	FormatSVG  = chart.FormatSVG
	FormatPNG  = chart.FormatPNG
	FormatPDF  = chart.FormatPDF
	FormatEPS  = chart.FormatEPS
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported figure formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatEPS: true,
}

// ValidPathFormats is the set of formats the hopping-path diagram supports.
var ValidPathFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a run. It serializes to JSON so a
// run can be described in a config file or a log line.
type Options struct {
	// Model options
	Lattice string    `json:"lattice"`
	P       int       `json:"p,omitempty"` // unused by butterflies
	Q       int       `json:"q"`
	T       []float64 `json:"t,omitempty"`
	A0      float64   `json:"a0,omitempty"`

	// Compute options
	Samples      int     `json:"samples,omitempty"`
	PathPoints   int     `json:"path_points,omitempty"`
	GapThreshold float64 `json:"bgt,omitempty"`
	Wilson       bool    `json:"wilson,omitempty"`
	Workers      int     `json:"workers,omitempty"`
	Refresh      bool    `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Display  string   `json:"display,omitempty"`
	Color    string   `json:"color,omitempty"`
	Palette  string   `json:"palette,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // edge labels on path diagrams

	// Save options
	OutDir string `json:"out_dir,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger           `json:"-"`
	Progress func(done, total int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a run.
type Result struct {
	// Bundle is the saved form of the run.
	Bundle *hio.Bundle

	// Artifacts contains rendered figures keyed by "<kind>.<format>",
	// e.g. "path.svg" or "curvature_0.png".
	Artifacts map[string][]byte

	// Path is the bundle file, if the run was saved.
	Path string

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Points         int // Hamiltonians diagonalized
	Sets           int // isolated band sets
	ComputeTime    time.Duration
	InvariantsTime time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	ComputeHit bool // spectrum and invariants came from cache
	RenderHit  bool // every figure came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a figure format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, eps)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePathFormat checks that a path-diagram format is valid.
func ValidatePathFormat(format string) error {
	if !ValidPathFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid path diagram format: %q (must be one of: svg, png, dot)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills every zero field with its default.
func (o *Options) SetDefaults() {
	if o.Lattice == "" {
		o.Lattice = string(DefaultLattice)
	}
	if len(o.T) == 0 {
		o.T = []float64{1}
	}
	if o.A0 == 0 {
		o.A0 = DefaultLatticeConstant
	}
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.PathPoints == 0 {
		o.PathPoints = DefaultPathPoints
	}
	if o.GapThreshold == 0 {
		o.GapThreshold = DefaultGapThreshold
	}
	if o.Display == "" {
		o.Display = string(DefaultDisplay)
	}
	if o.Color == "" {
		o.Color = string(DefaultColoring)
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and normalizes the enumerated
// options. Flux and model checks are left to the stage that builds the
// model. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	name, err := lattice.ParseName(o.Lattice)
	if err != nil {
		return err
	}
	o.Lattice = string(name)

	display, err := chart.ParseDisplay(o.Display)
	if err != nil {
		return err
	}
	o.Display = string(display)

	coloring, err := butterfly.ParseColoring(o.Color)
	if err != nil {
		return err
	}
	o.Color = string(coloring)

	if o.Palette, err = chart.ParsePalette(o.Palette); err != nil {
		return err
	}
	if err := errors.ValidateSamples(o.Samples); err != nil {
		return err
	}
	if o.PathPoints < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "path points must be at least 2, got %d", o.PathPoints)
	}
	if !(o.GapThreshold > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "band gap threshold must be positive, got %g", o.GapThreshold)
	}
	o.validated = true
	return nil
}

// ValidateForBands validates the options of a band-structure run.
func (o *Options) ValidateForBands() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := errors.ValidateFlux(o.P, o.Q); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ValidateForButterfly validates the options of a butterfly sweep.
func (o *Options) ValidateForButterfly() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.Q < 2 {
		return errors.New(errors.ErrCodeInvalidFlux, "butterfly denominator q must be at least 2, got %d", o.Q)
	}
	return ValidateFormats(o.Formats)
}

// ValidateForPaths validates the options of a hopping-path diagram.
func (o *Options) ValidateForPaths() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := errors.ValidateFlux(o.P, o.Q); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if err := ValidatePathFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// BandsKeyOpts returns cache key options for a band-structure result.
func (o *Options) BandsKeyOpts() cache.BandsKeyOpts {
	return cache.BandsKeyOpts{
		Lattice:      o.Lattice,
		P:            o.P,
		Q:            o.Q,
		A0:           o.A0,
		T:            o.T,
		Samples:      o.Samples,
		PathPoints:   o.PathPoints,
		GapThreshold: o.GapThreshold,
		Wilson:       o.Wilson,
	}
}

// ButterflyKeyOpts returns cache key options for a butterfly sweep.
func (o *Options) ButterflyKeyOpts() cache.ButterflyKeyOpts {
	return cache.ButterflyKeyOpts{
		Lattice:      o.Lattice,
		Q:            o.Q,
		A0:           o.A0,
		T:            o.T,
		GapThreshold: o.GapThreshold,
	}
}

// ArtifactKeyOpts returns cache key options for one figure.
func (o *Options) ArtifactKeyOpts(kind, format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:    kind,
		Format:  format,
		Display: o.Display,
		Color:   o.Color,
		Palette: o.Palette,
	}
}

// applyArgs fills render options from the arguments a bundle was saved
// with, where the options leave them unset.
func (o *Options) applyArgs(a hio.Args) {
	if o.Display == "" {
		o.Display = a.Display
	}
	if o.Color == "" {
		o.Color = a.Color
	}
	if o.Palette == "" {
		o.Palette = a.Palette
	}
}

func artifactName(kind, format string) string {
	return fmt.Sprintf("%s.%s", kind, format)
}
