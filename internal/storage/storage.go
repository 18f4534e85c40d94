package storage

import (
	"context"

	"github.com/slok/vgrid/internal/model"
)

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository

// Repository is the interface for sheet persistence. Sheets are stored by name,
// saving a sheet with a name that already exists replaces it.
type Repository interface {
	SaveSheet(ctx context.Context, d model.SheetData) error
	GetSheetByName(ctx context.Context, name string) (*model.SheetData, error)
	ListSheets(ctx context.Context) ([]model.SheetSummary, error)
	DeleteSheet(ctx context.Context, name string) error
}
