// Package catalog records generation runs and the files they wrote in a
// SQLite database, so outputs can be listed and checked for drift later.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeFormat is fixed width so created_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrRunNotFound is returned by Get and Verify for an unknown run id.
	ErrRunNotFound = errors.New("catalog: run not found")

	// ErrSchemaVersion is returned by Open for a database written with a
	// schema version this build does not know.
	ErrSchemaVersion = errors.New("catalog: unsupported schema version")
)

// File is one output file of a run.
type File struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Run is one recorded generation call.
type Run struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Naming    string    `json:"naming"`
	Scene     string    `json:"scene,omitempty"`
	OutputDir string    `json:"output_dir"`
	CreatedAt time.Time `json:"created_at"`
	Files     []File    `json:"files,omitempty"`
}

// Catalog is a SQLite-backed run registry. It is safe for concurrent use.
type Catalog struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the catalog database at path, creating parent
// directories as needed.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Catalog{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *Catalog) Path() string { return c.path }

// Record hashes files and stores them as a new run.
func (c *Catalog) Record(ctx context.Context, kind, naming, scene, outputDir string, files []string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Naming:    naming,
		Scene:     scene,
		OutputDir: outputDir,
		CreatedAt: time.Now().UTC(),
	}
	for _, p := range files {
		f, err := hashFile(p)
		if err != nil {
			return nil, err
		}
		run.Files = append(run.Files, f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, naming, scene, output_dir, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Naming, nullString(run.Scene), run.OutputDir, run.CreatedAt.Format(timeFormat),
	); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	for _, f := range run.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_files (run_id, path, sha256, size) VALUES (?, ?, ?, ?)`,
			run.ID, f.Path, f.SHA256, f.Size,
		); err != nil {
			return nil, fmt.Errorf("failed to insert run file: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first, without files. A limit of zero
// or less returns every run.
func (c *Catalog) List(ctx context.Context, limit int) ([]Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := `SELECT id, kind, naming, scene, output_dir, created_at FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Get returns a run with its files.
func (c *Catalog) Get(ctx context.Context, id string) (*Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getUnlocked(ctx, id)
}

func (c *Catalog) getUnlocked(ctx context.Context, id string) (*Run, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, kind, naming, scene, output_dir, created_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT path, sha256, size FROM run_files WHERE run_id = ? ORDER BY path`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Path, &f.SHA256, &f.Size); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		run.Files = append(run.Files, f)
	}
	return run, rows.Err()
}

// Verify re-hashes the files of a run and returns the paths whose content
// is missing or differs from what was recorded.
func (c *Catalog) Verify(ctx context.Context, id string) ([]string, error) {
	run, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, f := range run.Files {
		now, err := hashFile(f.Path)
		if err != nil || now.SHA256 != f.SHA256 {
			changed = append(changed, f.Path)
		}
	}
	return changed, nil
}

// Delete removes a run and its file records. The files themselves are kept.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r       Run
		scene   sql.NullString
		created string
	)
	if err := s.Scan(&r.ID, &r.Kind, &r.Naming, &scene, &r.OutputDir, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	r.Scene = scene.String
	t, err := time.Parse(timeFormat, created)
	if err != nil {
		return nil, fmt.Errorf("run %s created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return &r, nil
}

func hashFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return File{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return File{Path: path, SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
