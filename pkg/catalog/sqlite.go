package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/qmatter/hofstadter/pkg/errors"
)

// SQLiteCatalog stores runs in a local SQLite database.
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory catalog.
func OpenSQLite(path string) (*SQLiteCatalog, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes
	// writers on the file.
	db.SetMaxOpenConns(1)

	c := &SQLiteCatalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

func (c *SQLiteCatalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		program TEXT NOT NULL,
		lattice TEXT NOT NULL,
		p INTEGER NOT NULL,
		q INTEGER NOT NULL,
		t TEXT NOT NULL,
		samples INTEGER NOT NULL DEFAULT 0,
		chern TEXT,
		path TEXT NOT NULL,
		version TEXT,
		created_ns INTEGER NOT NULL,
		elapsed_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_ns);
	CREATE INDEX IF NOT EXISTS idx_runs_lattice_q ON runs(lattice, q);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Record inserts or replaces a run.
func (c *SQLiteCatalog) Record(ctx context.Context, run Run) error {
	t, err := json.Marshal(run.T)
	if err != nil {
		return err
	}
	var chern []byte
	if len(run.Chern) > 0 {
		if chern, err = json.Marshal(run.Chern); err != nil {
			return err
		}
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, program, lattice, p, q, t, samples, chern, path, version, created_ns, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.Program, run.Lattice, run.P, run.Q, string(t), run.Samples,
		nullString(string(chern)), run.Path, nullString(run.Version),
		run.Created.UnixNano(), int64(run.Elapsed))
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

const selectRuns = `
	SELECT id, program, lattice, p, q, t, samples, chern, path, version, created_ns, elapsed_ns
	FROM runs`

// Get returns one run, or a NOT_FOUND error.
func (c *SQLiteCatalog) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := c.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns matching runs, newest first.
func (c *SQLiteCatalog) List(ctx context.Context, f Filter) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if f.Program != "" {
		where = append(where, "program = ?")
		args = append(args, f.Program)
	}
	if f.Lattice != "" {
		where = append(where, "lattice = ?")
		args = append(args, f.Lattice)
	}
	if f.Q > 0 {
		where = append(where, "q = ?")
		args = append(args, f.Q)
	}

	query := selectRuns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_ns DESC, id LIMIT ?"
	args = append(args, f.limit())

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run, or returns NOT_FOUND.
func (c *SQLiteCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCatalog) Close() error { return c.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		id, t            string
		chern, version   sql.NullString
		created, elapsed int64
		run              Run
	)
	err := s.Scan(&id, &run.Program, &run.Lattice, &run.P, &run.Q, &t, &run.Samples,
		&chern, &run.Path, &version, &created, &elapsed)
	if err != nil {
		return nil, err
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "run id %q", id)
	}
	if err := json.Unmarshal([]byte(t), &run.T); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "run %s hopping", id)
	}
	if chern.Valid && chern.String != "" {
		if err := json.Unmarshal([]byte(chern.String), &run.Chern); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "run %s chern", id)
		}
	}
	run.Version = version.String
	run.Created = time.Unix(0, created).UTC()
	run.Elapsed = time.Duration(elapsed)
	return &run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
