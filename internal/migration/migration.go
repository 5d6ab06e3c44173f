// Package migration applies the numbered NNN_name.sql schema files of a
// backend. Every applied file is recorded in schema_version; the highest
// recorded version is the schema version of the database.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrSchemaTooNew means the database was migrated by a newer release.
var ErrSchemaTooNew = errors.New("database schema is newer than this version of habitcycle supports")

type Migration struct {
	Version int
	Name    string
	SQL     string
}

type Runner struct {
	db     *sql.DB
	fs     fs.FS
	driver Driver
}

// NewRunner reads migrations from the root of migrationFS.
func NewRunner(db *sql.DB, migrationFS fs.FS, driver Driver) *Runner {
	return &Runner{db: db, fs: migrationFS, driver: driver}
}

// placeholder returns the nth bind parameter of the runner's dialect.
func (r *Runner) placeholder(n int) string {
	if r.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (r *Runner) EnsureSchemaVersionTable() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// GetCurrentVersion returns the highest applied version, 0 for a fresh database.
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}
	var version sql.NullInt64
	if err := r.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func parseFilename(name string) (int, string, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
	if !ok || rest == "" {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number in filename %s: %w", name, err)
	}
	if version < 1 {
		return 0, "", fmt.Errorf("invalid version number in filename %s: version must be at least 1", name)
	}
	return version, rest, nil
}

// ReadMigrationFiles returns the migrations sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		version, name, err := parseFilename(e.Name())
		if err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(r.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}
	return migrations, nil
}

func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil || len(migrations) == 0 {
		return 0, err
	}
	return migrations[len(migrations)-1].Version, nil
}

// pending returns the migrations newer than the database.
func (r *Runner) pending() (current int, todo []Migration, err error) {
	current, err = r.GetCurrentVersion()
	if err != nil {
		return 0, nil, err
	}
	all, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, nil, err
	}
	if n := len(all); n > 0 && current > all[n-1].Version {
		return 0, nil, fmt.Errorf("%w (database %d, supported %d)", ErrSchemaTooNew, current, all[n-1].Version)
	}
	for _, m := range all {
		if m.Version > current {
			todo = append(todo, m)
		}
	}
	return current, todo, nil
}

// apply runs one migration and records it in the same transaction.
func (r *Runner) apply(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	insert := fmt.Sprintf("INSERT INTO schema_version (version, name) VALUES (%s, %s)", r.placeholder(1), r.placeholder(2))
	if _, err := tx.Exec(insert, m.Version, m.Name); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}
	return tx.Commit()
}

// ApplyMigrations applies every pending migration in order and returns how
// many were applied. logFn receives progress lines and may be nil.
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	current, todo, err := r.pending()
	if err != nil {
		return 0, err
	}
	if len(todo) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating schema from version %d to %d", current, todo[len(todo)-1].Version))
	start := time.Now()
	for i, m := range todo {
		logFn(fmt.Sprintf("  Applying %03d_%s", m.Version, m.Name))
		if err := r.apply(m); err != nil {
			return i, fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", len(todo), time.Since(start).Round(time.Millisecond)))
	return len(todo), nil
}

// ValidateVersion fails when the database is newer than the embedded migrations.
func (r *Runner) ValidateVersion() error {
	_, _, err := r.pending()
	return err
}
