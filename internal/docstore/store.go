package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
	"github.com/roach88/outliner/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (external-content FTS tables, maintained by hand)
// 1 - Standalone FTS5 index tables owned by internal/search
const currentSchemaVersion = 1

var migrations = []sqlitedb.Migration{
	{Version: 1, Name: "standalone search index", Apply: migrateToV1},
}

// Store is a handle on one document store file.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
	now  func() time.Time
	ids  model.IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug records of every mutation.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator of page and block ids.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// Open creates or opens the document store at path.
// Applies pragmas, the schema, migrations and the default workspace.
//
// This function is idempotent - safe to call multiple times on the same
// file.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path: path,
		log:  slog.Default(),
		now:  time.Now,
		ids:  model.RandomHex{},
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := sqlitedb.RequireFTS5(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := sqlitedb.ApplySchema(ctx, db, schemaSQL, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.db = db
	if err := s.ensureDefaultWorkspace(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug("document store opened", "path", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.log.Debug("document store closed", "path", s.path)
	return err
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - writes that bypass Store methods skip the index.
func (s *Store) DB() *sql.DB {
	return s.db
}

// timestamp returns the creation time for a new row.
func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// withTx runs fn in a transaction. See sqlitedb.WithTx.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return sqlitedb.WithTx(ctx, s.db, fn)
}

// migrateToV1 replaces whatever search tables exist (older files carry
// external-content tables that were never cleaned up on cascades) with the
// standalone index and fills it from the primary tables.
func migrateToV1(ctx context.Context, tx *sql.Tx) error {
	if err := search.Install(ctx, tx); err != nil {
		return err
	}
	return search.Rebuild(ctx, tx)
}

// ensureDefaultWorkspace creates workspace 0 if it is missing.
func (s *Store) ensureDefaultWorkspace(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO workspaces (workspace_id, name, color) VALUES (?, ?, ?)",
		model.DefaultWorkspaceID, model.DefaultWorkspaceName, model.DefaultWorkspaceColor,
	)
	if err != nil {
		return fmt.Errorf("create default workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Debug("default workspace created", "workspace_id", model.DefaultWorkspaceID)
	}
	return nil
}

// SchemaVersion returns the stored PRAGMA user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return sqlitedb.UserVersion(ctx, s.db)
}
