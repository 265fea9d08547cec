package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	dir := t.TempDir()
	geo := writeFile(t, dir, "run_geometry_base.json", "{}")
	spline := writeFile(t, dir, "run_f_0.vspl", "abc")

	run, err := c.Record(ctx, "geometry", "run", "single-bundle", dir, []string{geo, spline})
	require.NoError(t, err)
	require.Len(t, run.ID, 36)

	got, err := c.Get(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, "geometry", got.Kind)
	require.Equal(t, "single-bundle", got.Scene)
	require.Equal(t, dir, got.OutputDir)
	require.True(t, run.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Files, 2)

	// Ordered by path: "run_f_0.vspl" < "run_geometry_base.json".
	require.Equal(t, spline, got.Files[0].Path)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got.Files[0].SHA256)
	require.Equal(t, int64(3), got.Files[0].Size)
}

func TestRecord_MissingFile(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.Record(context.Background(), "geometry", "run", "", t.TempDir(), []string{"/does/not/exist"})
	require.Error(t, err)

	runs, err := c.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	dir := t.TempDir()

	var ids []string
	for _, kind := range []string{"geometry", "simulation", "geometry"} {
		run, err := c.Record(ctx, kind, "run", "", dir, nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := c.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	got := []string{runs[0].ID, runs[1].ID, runs[2].ID}
	require.ElementsMatch(t, ids, got)
	require.False(t, runs[0].CreatedAt.Before(runs[2].CreatedAt))
	require.Empty(t, runs[0].Scene)

	runs, err = c.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vspl", "one")
	b := writeFile(t, dir, "b.vspl", "two")

	run, err := c.Record(ctx, "geometry", "run", "", dir, []string{a, b})
	require.NoError(t, err)

	changed, err := c.Verify(ctx, run.ID)
	require.NoError(t, err)
	require.Empty(t, changed)

	writeFile(t, dir, "a.vspl", "changed")
	require.NoError(t, os.Remove(b))

	changed, err = c.Verify(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, []string{a, b}, changed)
}

func TestGetDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
	_, err = c.Verify(ctx, "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
	require.ErrorIs(t, c.Delete(ctx, "missing"), ErrRunNotFound)
}

func TestDelete_CascadesFiles(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vspl", "one")

	run, err := c.Record(ctx, "geometry", "run", "", dir, []string{a})
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, run.ID))

	var n int
	require.NoError(t, c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_files`).Scan(&n))
	require.Zero(t, n)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path)
	require.NoError(t, err)
	run, err := c.Record(ctx, "simulation", "run", "", t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	version, err := getSchemaVersion(ctx, c.db)
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, version)

	got, err := c.Get(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, "simulation", got.Kind)
}

func TestOpen_UnknownSchemaVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, SchemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = Open(path)
	require.ErrorIs(t, err, ErrSchemaVersion)
}
