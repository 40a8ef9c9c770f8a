// Package catalog records finished runs so they can be listed and reopened
// later without scanning bundle directories.
//
// A catalog entry is a summary ([Run]): parameters, the bundle path, the
// Chern numbers of the isolated band sets and timing. The bundle itself
// stays on disk.
//
// Backends are [SQLiteCatalog] (local default, pure-Go driver) and
// [MongoCatalog] (shared across machines). [Open] picks one from
// configuration.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/qmatter/hofstadter/pkg/errors"
	"github.com/qmatter/hofstadter/pkg/io"
)

// Run summarizes one finished run.
type Run struct {
	ID      uuid.UUID     `json:"id"`
	Program string        `json:"program"`
	Lattice string        `json:"lattice"`
	P       int           `json:"p"`
	Q       int           `json:"q"`
	T       []float64     `json:"t"`
	Samples int           `json:"samples,omitempty"`
	Chern   []float64     `json:"chern,omitempty"`
	Path    string        `json:"path"`
	Version string        `json:"version,omitempty"`
	Created time.Time     `json:"created"`
	Elapsed time.Duration `json:"elapsed"`
}

// RunFromBundle summarizes a bundle saved at path.
func RunFromBundle(b *io.Bundle, path string) Run {
	r := Run{
		ID:      b.Meta.ID,
		Program: string(b.Args.Program),
		Lattice: string(b.Model.Lattice),
		P:       b.Model.P,
		Q:       b.Model.Q,
		T:       append([]float64(nil), b.Model.T...),
		Samples: b.Args.Samples,
		Path:    path,
		Version: b.Meta.Version,
		Created: b.Meta.Created,
		Elapsed: b.Meta.Elapsed,
	}
	for _, s := range b.Data.Sets {
		r.Chern = append(r.Chern, s.Chern)
	}
	return r
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Program string
	Lattice string
	Q       int
	Limit   int // default 50
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return 50
	}
	return f.Limit
}

// Catalog stores run summaries. List returns the newest runs first.
type Catalog interface {
	Record(ctx context.Context, run Run) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, filter Filter) ([]Run, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string // "sqlite", "mongo" or "none"
	Path     string // SQLite database file
	URI      string // MongoDB connection string
	Database string // MongoDB database, default "hofstadter"
}

// Open returns the configured catalog. Backend "none" or "" returns a
// catalog that stores nothing.
func Open(ctx context.Context, cfg Config) (Catalog, error) {
	switch cfg.Backend {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "mongo":
		return OpenMongo(ctx, cfg.URI, cfg.Database)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown catalog backend %q (want sqlite, mongo or none)", cfg.Backend)
}

// Nop is a catalog that stores nothing.
type Nop struct{}

func (Nop) Record(context.Context, Run) error { return nil }

func (Nop) Get(_ context.Context, id uuid.UUID) (*Run, error) {
	return nil, notFound(id)
}

func (Nop) List(context.Context, Filter) ([]Run, error) { return nil, nil }

func (Nop) Delete(_ context.Context, id uuid.UUID) error { return notFound(id) }

func (Nop) Close() error { return nil }

func notFound(id uuid.UUID) error {
	return errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

var (
	_ Catalog = Nop{}
	_ Catalog = (*SQLiteCatalog)(nil)
	_ Catalog = (*MongoCatalog)(nil)
)
