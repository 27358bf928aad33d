// Package sqlitedb holds the SQLite plumbing shared by the document store
// and the database registry: opening a file with the required pragmas,
// schema application with PRAGMA user_version migrations, transactions,
// and classification of driver errors.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity (cascading deletes)
//   - _txlock=immediate: write transactions take the write lock up front
//
// One *sql.DB is limited to a single connection. SQLite allows one writer
// at a time, and the pragmas above are per connection.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used for every file.
const DriverName = "sqlite3"

// pragmas are applied to every opened database.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Open opens (creating if needed) the SQLite file at path and applies the
// required pragmas. The parent directory must exist.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("open sqlite: path is empty")
	}
	if strings.ContainsRune(path, '?') {
		return nil, fmt.Errorf("open sqlite: path %q must not contain '?'", path)
	}

	db, err := sql.Open(DriverName, path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Migration upgrades a schema to Version. Migrations run in ascending
// version order, each in its own transaction together with the
// user_version bump.
type Migration struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, tx *sql.Tx) error
}

// ApplySchema executes schemaSQL (which must be idempotent, e.g. CREATE
// TABLE IF NOT EXISTS) and then every migration whose version is above the
// stored PRAGMA user_version.
//
// This function is idempotent.
func ApplySchema(ctx context.Context, db *sql.DB, schemaSQL string, migrations []Migration) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	version, err := UserVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= version {
			continue
		}
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			if err := m.Apply(ctx, tx); err != nil {
				return err
			}
			// PRAGMA does not accept bound parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version))
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.Version, m.Name, err)
		}
		version = m.Version
	}

	return nil
}

// UserVersion reads PRAGMA user_version.
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unwrapped so
// typed errors reach the caller intact.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RequireFTS5 returns an error when the linked SQLite library was built
// without the FTS5 extension. With github.com/mattn/go-sqlite3 it is
// enabled by the sqlite_fts5 build tag.
func RequireFTS5(ctx context.Context, db *sql.DB) error {
	var enabled bool
	if err := db.QueryRowContext(ctx, "SELECT sqlite_compileoption_used('ENABLE_FTS5')").Scan(&enabled); err != nil {
		return fmt.Errorf("check fts5: %w", err)
	}
	if !enabled {
		return errors.New("sqlite was built without FTS5: build with -tags sqlite_fts5")
	}
	return nil
}

// ErrCheckpointBusy is returned by Checkpoint when another connection
// kept part of the write-ahead log from being written back.
var ErrCheckpointBusy = errors.New("checkpoint incomplete: database is in use")

// Checkpoint writes every frame of the file's write-ahead log back into the
// main database file and truncates the log, so a plain copy of the main
// file holds all committed data. A file without a non-empty -wal sidecar
// is left untouched.
func Checkpoint(ctx context.Context, path string) error {
	info, err := os.Stat(path + "-wal")
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if strings.ContainsRune(path, '?') {
		return fmt.Errorf("checkpoint: path %q must not contain '?'", path)
	}

	db, err := sql.Open(DriverName, path+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("checkpoint: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var busy, logFrames, checkpointed int
	err = db.QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if busy != 0 {
		return ErrCheckpointBusy
	}
	return nil
}
