package io

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/slok/vgrid/internal/model"
)

// CSVSheetLoader loads sheets from CSV files, the first record is the header.
type CSVSheetLoader struct {
	fs fs.FS
}

// NewCSVSheetLoader returns a new CSV sheet loader.
func NewCSVSheetLoader(filesystem fs.FS) *CSVSheetLoader {
	return &CSVSheetLoader{fs: filesystem}
}

// LoadSheet loads the CSV file as sheet data named after the file.
func (l *CSVSheetLoader) LoadSheet(ctx context.Context, p string) (*model.SheetData, error) {
	f, err := l.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv file %s has no header: %w", p, model.ErrNotValid)
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	d := &model.SheetData{
		Name:    strings.TrimSuffix(path.Base(p), path.Ext(p)),
		Columns: header,
		Rows:    [][]any{},
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record: %w", err)
		}

		row := make([]any, 0, len(record))
		for _, v := range record[:min(len(record), len(header))] {
			row = append(row, v)
		}
		d.Rows = append(d.Rows, row)
	}

	return d, nil
}

// IsCSVPath returns true when the path looks like a CSV file.
func IsCSVPath(p string) bool {
	return strings.EqualFold(path.Ext(p), ".csv")
}

// FileSheetLoader loads CSV sheets from paths of the local filesystem.
type FileSheetLoader struct{}

// LoadSheet loads the CSV file at the path, relative paths are resolved from the working directory.
func (FileSheetLoader) LoadSheet(ctx context.Context, p string) (*model.SheetData, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path: %w", err)
	}

	return NewCSVSheetLoader(os.DirFS(filepath.Dir(abs))).LoadSheet(ctx, filepath.Base(abs))
}
