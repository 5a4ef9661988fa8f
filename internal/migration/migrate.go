package migration

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Rqwannn/Moodiary/internal/config"
)

// Migrator applies the SQL files in migrations/ with goose.
type Migrator struct {
	db     *sql.DB
	config *config.DatabaseConfig
}

func NewMigrator(config *config.DatabaseConfig) (*Migrator, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Migrator{
		db:     db,
		config: config,
	}, nil
}

// NewMigratorForDB runs migrations over an already opened postgres connection.
func NewMigratorForDB(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// prepare selects the postgres dialect and resolves the migrations directory.
func (m *Migrator) prepare() (string, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return "", fmt.Errorf("failed to set dialect: %w", err)
	}

	dir, err := getMigrationsDir()
	if err != nil {
		return "", fmt.Errorf("failed to get migrations directory: %w", err)
	}
	return dir, nil
}

func (m *Migrator) Up() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}

	if err := goose.Up(m.db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}

	if err := goose.Down(m.db, dir); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// DownTo rolls back until the schema is at version.
func (m *Migrator) DownTo(version int64) error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}

	if err := goose.DownTo(m.db, dir, version); err != nil {
		return fmt.Errorf("failed to migrate down to version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Status() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}

	if err := goose.Status(m.db, dir); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

// Version returns the version currently applied to the database.
func (m *Migrator) Version() (int64, error) {
	if _, err := m.prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(m.db)
}

// LatestVersion returns the newest version available on disk.
func (m *Migrator) LatestVersion() (int64, error) {
	dir, err := getMigrationsDir()
	if err != nil {
		return 0, err
	}

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

func (m *Migrator) Reset() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}

	if err := goose.Reset(m.db, dir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return goose.Up(m.db, dir)
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
