// Package migrations has the sheet store schema and applies it.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

// MigratorConfig is the configuration of the schema migrator.
type MigratorConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *MigratorConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.sqlite.Migrator"})

	return nil
}

// Migrator moves the sheet store schema between versions.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a new migrator.
func NewMigrator(cfg MigratorConfig) (*Migrator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Migrator{db: cfg.DB, logger: cfg.Logger}, nil
}

// Up brings the schema to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return m.with(ctx, func(mg *migrate.Migrate) error {
		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not apply schema: %w", err)
		}

		v, _, err := mg.Version()
		if err != nil {
			return fmt.Errorf("could not get schema version: %w", err)
		}
		m.logger.Debugf("Sheet store schema at version %d", v)

		return nil
	})
}

// Down removes the whole schema, stored sheets included.
func (m *Migrator) Down(ctx context.Context) error {
	return m.with(ctx, func(mg *migrate.Migrate) error {
		if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not revert schema: %w", err)
		}
		return nil
	})
}

// Version returns the applied schema version, 0 when there is no schema. A schema
// left dirty by a failed migration is not valid.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var version uint
	err := m.with(ctx, func(mg *migrate.Migrate) error {
		v, dirty, err := mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not get schema version: %w", err)
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty: %w", v, model.ErrNotValid)
		}
		version = v
		return nil
	})

	return version, err
}

func (m *Migrator) with(ctx context.Context, fn func(mg *migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(schemaFiles, "sql")
	if err != nil {
		return fmt.Errorf("could not load schema files: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Warningf("Could not close schema files: %s", err)
		}
	}()

	mg, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration: %w", err)
	}

	return fn(mg)
}
