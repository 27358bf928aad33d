package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

const (
	entityDatabase     = "database"
	entityDatabasePath = "database path"
)

// Registry is a handle on the system database.
type Registry struct {
	db   *sql.DB
	path string
	root string
	log  *slog.Logger
	now  func() time.Time
	ids  model.IDGenerator
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for debug records of every mutation.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock sets the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator sets the generator of entry ids. Defaults to UUIDv7.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(r *Registry) {
		if g != nil {
			r.ids = g
		}
	}
}

// Open opens (creating if needed) the system database at path and the
// managed root directory that holds the store files.
func Open(ctx context.Context, path, root string, opts ...Option) (*Registry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("open registry: resolve root: %w", err)
	}

	r := &Registry{
		path: path,
		root: absRoot,
		log:  slog.Default(),
		now:  time.Now,
		ids:  model.UUIDv7{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("open registry: create root: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open registry: create directory: %w", err)
	}

	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.ApplySchema(ctx, db, schemaSQL, nil); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	r.db = db

	r.log.Debug("registry opened", "path", path, "root", absRoot)
	return r, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Root returns the absolute managed root directory.
func (r *Registry) Root() string {
	return r.root
}

// Add registers a database under a path derived from its name (see
// FileName). Duplicate names and names that sanitize to an already
// registered path are AlreadyExists.
func (r *Registry) Add(ctx context.Context, name string) (model.DatabaseEntry, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return model.DatabaseEntry{}, model.InvalidArgument("database name must not be blank")
	}
	return r.insert(ctx, name, filepath.Join(r.root, FileName(name)))
}

// AddExisting registers a database for a file already placed under the
// root. Relative paths are resolved against the root.
func (r *Registry) AddExisting(ctx context.Context, name, path string) (model.DatabaseEntry, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return model.DatabaseEntry{}, model.InvalidArgument("database name must not be blank")
	}
	resolved, err := r.resolve(path)
	if err != nil {
		return model.DatabaseEntry{}, err
	}
	return r.insert(ctx, name, resolved)
}

func (r *Registry) insert(ctx context.Context, name, path string) (model.DatabaseEntry, error) {
	entry := model.DatabaseEntry{
		ID:        r.ids.NewID(),
		Name:      name,
		Path:      path,
		CreatedAt: r.now().UTC(),
	}

	err := sqlitedb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkFree(ctx, tx, "name", name, "", entityDatabase); err != nil {
			return err
		}
		if err := checkFree(ctx, tx, "path", path, "", entityDatabasePath); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO user_databases (id, name, path, created_at) VALUES (?, ?, ?, ?)",
			entry.ID, entry.Name, entry.Path, entry.CreatedAt,
		)
		if err != nil {
			if sqlitedb.IsUniqueViolation(err) {
				return model.AlreadyExists(entityDatabase, name)
			}
			return fmt.Errorf("add database: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.DatabaseEntry{}, err
	}

	r.log.Debug("database registered", "id", entry.ID, "name", entry.Name, "path", entry.Path)
	return entry, nil
}

// GetByID returns the entry with the given id.
func (r *Registry) GetByID(ctx context.Context, id string) (model.DatabaseEntry, error) {
	return getBy(ctx, r.db, "id", id)
}

// GetByName returns the entry with the given name.
func (r *Registry) GetByName(ctx context.Context, name string) (model.DatabaseEntry, error) {
	return getBy(ctx, r.db, "name", model.NormalizeName(name))
}

// GetByPath returns the entry whose file is path. Relative paths are
// resolved against the root.
func (r *Registry) GetByPath(ctx context.Context, path string) (model.DatabaseEntry, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	return getBy(ctx, r.db, "path", filepath.Clean(path))
}

// List returns every entry in creation order.
//
// Returns an empty slice (not nil) if nothing is registered.
func (r *Registry) List(ctx context.Context) ([]model.DatabaseEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+model.DatabaseColumns+" FROM user_databases ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	entries := []model.DatabaseEntry{}
	for rows.Next() {
		e, err := model.ScanDatabaseEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list databases: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list databases: iterate: %w", err)
	}
	return entries, nil
}

// Update changes the name and/or path of an entry and returns the updated
// entry. An empty update still reports NotFound for an unknown id.
func (r *Registry) Update(ctx context.Context, id string, upd model.DatabaseUpdate) (model.DatabaseEntry, error) {
	var name, path string
	if upd.Name != nil {
		name = model.NormalizeName(*upd.Name)
		if name == "" {
			return model.DatabaseEntry{}, model.InvalidArgument("database name must not be blank")
		}
	}
	if upd.Path != nil {
		resolved, err := r.resolve(*upd.Path)
		if err != nil {
			return model.DatabaseEntry{}, err
		}
		path = resolved
	}

	var entry model.DatabaseEntry
	err := sqlitedb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		entry, err = getBy(ctx, tx, "id", id)
		if err != nil {
			return err
		}
		if upd.IsEmpty() {
			return nil
		}

		if upd.Name != nil {
			if err := checkFree(ctx, tx, "name", name, id, entityDatabase); err != nil {
				return err
			}
			entry.Name = name
		}
		if upd.Path != nil {
			if err := checkFree(ctx, tx, "path", path, id, entityDatabasePath); err != nil {
				return err
			}
			entry.Path = path
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE user_databases SET name = ?, path = ? WHERE id = ?",
			entry.Name, entry.Path, id,
		)
		if err != nil {
			if sqlitedb.IsUniqueViolation(err) {
				return model.AlreadyExists(entityDatabase, entry.Name)
			}
			return fmt.Errorf("update database: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.DatabaseEntry{}, err
	}

	if !upd.IsEmpty() {
		r.log.Debug("database updated", "id", id, "name", entry.Name, "path", entry.Path)
	}
	return entry, nil
}

// Delete removes an entry and returns it. The store file is left alone.
func (r *Registry) Delete(ctx context.Context, id string) (model.DatabaseEntry, error) {
	var entry model.DatabaseEntry
	err := sqlitedb.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		entry, err = getBy(ctx, tx, "id", id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_databases WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete database: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.DatabaseEntry{}, err
	}

	r.log.Debug("database unregistered", "id", id, "name", entry.Name)
	return entry, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getBy selects one entry by a unique column. column is never caller input.
func getBy(ctx context.Context, db queryer, column, value string) (model.DatabaseEntry, error) {
	e, err := model.ScanDatabaseEntry(db.QueryRowContext(ctx,
		"SELECT "+model.DatabaseColumns+" FROM user_databases WHERE "+column+" = ?", value,
	))
	if errors.Is(err, sql.ErrNoRows) {
		entity := entityDatabase
		if column == "path" {
			entity = entityDatabasePath
		}
		return model.DatabaseEntry{}, model.NotFound(entity, value)
	}
	if err != nil {
		return model.DatabaseEntry{}, fmt.Errorf("get database by %s: %w", column, err)
	}
	return e, nil
}

// checkFree returns AlreadyExists when an entry other than exceptID holds
// value in column.
func checkFree(ctx context.Context, tx *sql.Tx, column, value, exceptID, entity string) error {
	var owner string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM user_databases WHERE "+column+" = ?", value,
	).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check %s: %w", column, err)
	case owner != exceptID:
		return model.AlreadyExists(entity, value)
	default:
		return nil
	}
}
