package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage/memory"
)

func TestRepositoryCRUD(t *testing.T) {
	savedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository)
	}{
		"Saving a sheet should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				err := repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people", Columns: []string{"name"}, Rows: [][]any{{"ann"}}})
				require.NoError(t, err)

				got, err := repo.GetSheetByName(ctx, "people")
				require.NoError(t, err)
				assert.Equal(t, "id-1", got.ID)
				assert.Equal(t, [][]any{{"ann"}}, got.Rows)
				assert.Equal(t, savedAt, got.SavedAt)
			},
		},

		"Saving a sheet with an existing name should replace it and keep the ID": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people", Columns: []string{"a"}}))
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-2", Name: "people", Columns: []string{"a", "b"}}))

				got, err := repo.GetSheetByName(ctx, "people")
				require.NoError(t, err)
				assert.Equal(t, "id-1", got.ID)
				assert.Equal(t, []string{"a", "b"}, got.Columns)
			},
		},

		"Saving an invalid sheet should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				err := repo.SaveSheet(ctx, model.SheetData{ID: "id-1"})
				assert.ErrorIs(t, err, model.ErrNotValid)
			},
		},

		"Getting a missing sheet should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				_, err := repo.GetSheetByName(ctx, "missing")
				assert.ErrorIs(t, err, model.ErrNotFound)
			},
		},

		"Returned sheets should be copies": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people", Columns: []string{"a"}, Rows: [][]any{{1}}}))

				got, err := repo.GetSheetByName(ctx, "people")
				require.NoError(t, err)
				got.Rows[0][0] = 42

				got, err = repo.GetSheetByName(ctx, "people")
				require.NoError(t, err)
				assert.Equal(t, 1, got.Rows[0][0])
			},
		},

		"Listing sheets should return summaries sorted by name": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-2", Name: "zoo", Columns: []string{"a"}}))
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people", Columns: []string{"a", "b"}, Rows: [][]any{{1, 2}, {3}}}))

				got, err := repo.ListSheets(ctx)
				require.NoError(t, err)
				assert.Equal(t, []model.SheetSummary{
					{ID: "id-1", Name: "people", NRows: 2, NColumns: 2, SavedAt: savedAt},
					{ID: "id-2", Name: "zoo", NRows: 0, NColumns: 1, SavedAt: savedAt},
				}, got)
			},
		},

		"Deleting a sheet should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.SaveSheet(ctx, model.SheetData{ID: "id-1", Name: "people"}))
				require.NoError(t, repo.DeleteSheet(ctx, "people"))

				_, err := repo.GetSheetByName(ctx, "people")
				assert.ErrorIs(t, err, model.ErrNotFound)
				assert.ErrorIs(t, repo.DeleteSheet(ctx, "people"), model.ErrNotFound)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Now: func() time.Time { return savedAt }})
			require.NoError(t, err)

			test.actions(context.Background(), t, repo)
		})
	}
}
