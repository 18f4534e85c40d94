package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
	Now    func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
	now    func() time.Time
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger, now: cfg.Now}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SaveSheet stores a sheet, replacing the one with the same name. The stored ID
// of a replaced sheet is kept.
func (r *Repository) SaveSheet(ctx context.Context, d model.SheetData) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid sheet: %w", err)
	}
	if d.ID == "" {
		d.ID = ulid.Make().String()
	}

	columns, err := json.Marshal(d.Columns)
	if err != nil {
		return fmt.Errorf("could not encode columns: %w", err)
	}
	rows := d.Rows
	if rows == nil {
		rows = [][]any{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("could not encode rows: %w", err)
	}

	query := `
		INSERT INTO sheets (id, name, columns, rows, nrows, ncolumns, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			columns = excluded.columns,
			rows = excluded.rows,
			nrows = excluded.nrows,
			ncolumns = excluded.ncolumns,
			saved_at = excluded.saved_at
	`

	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		string(columns),
		string(rowsJSON),
		len(d.Rows),
		len(d.Columns),
		r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not save sheet: %w", err)
	}

	r.logger.Debugf("Saved sheet in repository: %s", d.Name)
	return nil
}

// GetSheetByName retrieves a sheet by name.
func (r *Repository) GetSheetByName(ctx context.Context, name string) (*model.SheetData, error) {
	query := `SELECT id, name, columns, rows, saved_at FROM sheets WHERE name = ?`

	var d model.SheetData
	var columns, rows string
	var savedAt int64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&d.ID, &d.Name, &columns, &rows, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sheet with name %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get sheet: %w", err)
	}

	if err := json.Unmarshal([]byte(columns), &d.Columns); err != nil {
		return nil, fmt.Errorf("could not decode columns: %w", err)
	}
	d.Rows, err = decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("could not decode rows: %w", err)
	}
	d.SavedAt = timeFromUnix(savedAt)

	return &d, nil
}

// ListSheets returns all the sheets sorted by name.
func (r *Repository) ListSheets(ctx context.Context) ([]model.SheetSummary, error) {
	query := `SELECT id, name, nrows, ncolumns, saved_at FROM sheets ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not list sheets: %w", err)
	}
	defer rows.Close()

	sheets := []model.SheetSummary{}
	for rows.Next() {
		var s model.SheetSummary
		var savedAt int64
		if err := rows.Scan(&s.ID, &s.Name, &s.NRows, &s.NColumns, &savedAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		s.SavedAt = timeFromUnix(savedAt)
		sheets = append(sheets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate rows: %w", err)
	}

	return sheets, nil
}

// DeleteSheet deletes a sheet by name.
func (r *Repository) DeleteSheet(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sheets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("could not delete sheet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sheet with name %s: %w", name, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted sheet from repository: %s", name)
	return nil
}

// decodeRows decodes the stored rows keeping integers as ints.
func decodeRows(data string) ([][]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	for _, r := range raw {
		for i, v := range r {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if iv, err := n.Int64(); err == nil {
				r[i] = int(iv)
			} else if fv, err := n.Float64(); err == nil {
				r[i] = fv
			}
		}
	}

	return raw, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
