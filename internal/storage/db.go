// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required) with per-connection pragmas.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	db     *sql.DB
	dbPath string
}

// connPragmas are applied by the driver to every pooled connection, so
// foreign keys (and therefore cascades) hold no matter which connection
// serves a query.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// dsn builds the driver DSN. _txlock=immediate makes every BEGIN take the
// write lock up front, which serializes read-modify-write transactions.
func dsn(dbPath string) string {
	params := make([]string, 0, len(connPragmas)+1)
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, "_txlock=immediate")
	return dbPath + "?" + strings.Join(params, "&")
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath}

	if err := d.checkForeignKeys(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return d, nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "biosync")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "biosync.db")
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// SQL exposes the underlying handle for diagnostics and tests.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// checkForeignKeys fails fast if the driver ignored the DSN pragmas;
// cascading deletes depend on them.
func (d *DB) checkForeignKeys() error {
	var on int
	if err := d.db.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&on); err != nil {
		return fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if on != 1 {
		return fmt.Errorf("foreign keys are disabled on this connection")
	}
	return nil
}
