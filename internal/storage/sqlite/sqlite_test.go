package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage/sqlite"
)

var savedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
		Now:    func() time.Time { return savedAt },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	d := model.SheetData{
		ID:      "id-1",
		Name:    "people",
		Columns: []string{"name", "age", "score"},
		Rows: [][]any{
			{"ann", 31, 4.5},
			{"bob", nil},
		},
	}
	require.NoError(t, repo.SaveSheet(ctx, d))

	got, err := repo.GetSheetByName(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, []string{"name", "age", "score"}, got.Columns)
	assert.Equal(t, [][]any{{"ann", 31, 4.5}, {"bob", nil}}, got.Rows)
	assert.Equal(t, savedAt, got.SavedAt)

	all, err := repo.ListSheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.SheetSummary{{ID: "id-1", Name: "people", NRows: 2, NColumns: 3, SavedAt: savedAt}}, all)

	require.NoError(t, repo.DeleteSheet(ctx, "people"))
	_, err = repo.GetSheetByName(ctx, "people")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteSheet(ctx, "people"), model.ErrNotFound)
}

func TestRepositorySaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people", Columns: []string{"a"}}))
	require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-2", Name: "people", Columns: []string{"a", "b"}, Rows: [][]any{{1, 2}}}))

	got, err := repo.GetSheetByName(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, [][]any{{1, 2}}, got.Rows)

	all, err := repo.ListSheets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepositorySaveWithoutID(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.SaveSheet(ctx, model.SheetData{Name: "people"}))

	got, err := repo.GetSheetByName(ctx, "people")
	require.NoError(t, err)
	assert.Len(t, got.ID, 26)
	assert.Empty(t, got.Rows)
}

func TestRepositorySaveInvalid(t *testing.T) {
	repo := newRepo(t)

	err := repo.SaveSheet(context.Background(), model.SheetData{ID: "id-1"})
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestRepositoryPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: path})
	require.NoError(t, err)
	require.NoError(t, repo.SaveSheet(ctx, model.SheetData{Name: "people", Columns: []string{"a"}, Rows: [][]any{{"x"}}}))
	require.NoError(t, repo.Close())

	repo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: path})
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetSheetByName(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"x"}}, got.Rows)
}

func TestRepositorySheetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	sh := model.NewSheet("people", "name", "city")
	sh.AppendRow("ann", "oslo")
	sh.AppendRow("bob", nil)
	sh.AddColumn(1, "team")
	want := sh.Data()
	require.NoError(t, repo.SaveSheet(ctx, want))

	got, err := repo.GetSheetByName(ctx, "people")
	require.NoError(t, err)
	loaded, err := model.NewSheetFromData(*got)
	require.NoError(t, err)

	// Loaded sheets are new sheets with the same contents.
	if diff := cmp.Diff(want, loaded.Data(), cmpopts.IgnoreFields(model.SheetData{}, "ID", "SavedAt")); diff != "" {
		t.Errorf("sheet mismatch (-want +got):\n%s", diff)
	}
}
