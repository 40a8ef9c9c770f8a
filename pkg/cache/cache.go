// Package cache stores computed spectra, butterflies and rendered figures
// by content key.
//
// Everything the pipeline computes is a pure function of its parameters, so
// entries never need invalidation; TTLs only bound disk and memory use.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several machines sweeping one
//     parameter space
//   - [NullCache]: disables caching
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the parameters that
// determine a result; [ScopedKeyer] prefixes another keyer to separate
// projects that share a backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports a miss with (nil, false, nil); errors mean the backend
// itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	TTLSpectrum  = 30 * 24 * time.Hour
	TTLButterfly = 30 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	BandsKey(opts BandsKeyOpts) string
	ButterflyKey(opts ButterflyKeyOpts) string
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// BandsKeyOpts are the parameters that determine a band-structure result.
type BandsKeyOpts struct {
	Lattice      string    `json:"lattice"`
	P            int       `json:"p"`
	Q            int       `json:"q"`
	A0           float64   `json:"a0"`
	T            []float64 `json:"t"`
	Samples      int       `json:"samples"`
	PathPoints   int       `json:"path_points"`
	GapThreshold float64   `json:"bgt"`
	Wilson       bool      `json:"wilson"`
}

// ButterflyKeyOpts are the parameters that determine a butterfly sweep.
type ButterflyKeyOpts struct {
	Lattice      string    `json:"lattice"`
	Q            int       `json:"q"`
	A0           float64   `json:"a0"`
	T            []float64 `json:"t"`
	GapThreshold float64   `json:"bgt"`
}

// ArtifactKeyOpts are the rendering parameters of a figure.
type ArtifactKeyOpts struct {
	Kind    string `json:"kind"` // "bands", "path", "curvature", "wannier", "butterfly", "paths"
	Format  string `json:"format"`
	Display string `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
	Palette string `json:"palette,omitempty"`
}

// DefaultKeyer hashes the full option struct into every key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BandsKey returns "bands:<sha256>".
func (DefaultKeyer) BandsKey(opts BandsKeyOpts) string {
	return hashKey("bands", opts)
}

// ButterflyKey returns "butterfly:<sha256>".
func (DefaultKeyer) ButterflyKey(opts ButterflyKeyOpts) string {
	return hashKey("butterfly", opts)
}

// ArtifactKey returns "artifact:<sha256>" over the result hash and opts.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
