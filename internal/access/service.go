package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

// LockFileName is the provisioning lock created in the managed root.
const LockFileName = ".registry.lock"

const (
	defaultLockTimeout = 10 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// Registry is the subset of *registry.Registry the façade needs.
type Registry interface {
	Root() string
	Add(ctx context.Context, name string) (model.DatabaseEntry, error)
	AddExisting(ctx context.Context, name, path string) (model.DatabaseEntry, error)
	GetByID(ctx context.Context, id string) (model.DatabaseEntry, error)
	GetByName(ctx context.Context, name string) (model.DatabaseEntry, error)
	List(ctx context.Context) ([]model.DatabaseEntry, error)
	Update(ctx context.Context, id string, upd model.DatabaseUpdate) (model.DatabaseEntry, error)
	Delete(ctx context.Context, id string) (model.DatabaseEntry, error)
}

// Service binds the registry to document stores.
type Service struct {
	reg         Registry
	log         *slog.Logger
	removeFiles bool
	storeOpts   []docstore.Option
	lockTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Stores opened by the service get the same
// logger unless WithStoreOptions overrides it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRemoveFiles makes DeleteDatabase remove the store file as well as
// the registry entry. Off by default.
func WithRemoveFiles(remove bool) Option {
	return func(s *Service) { s.removeFiles = remove }
}

// WithStoreOptions sets options passed to every docstore.Open.
func WithStoreOptions(opts ...docstore.Option) Option {
	return func(s *Service) { s.storeOpts = append(s.storeOpts, opts...) }
}

// WithLockTimeout bounds the wait for the provisioning lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// New creates a Service over reg.
func New(reg Registry, opts ...Option) *Service {
	s := &Service{
		reg:         reg,
		log:         slog.Default(),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withLock runs fn while holding the provisioning lock.
func (s *Service) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(filepath.Join(s.reg.Root(), LockFileName))

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire provisioning lock: %w", err)
	}
	if !locked {
		return errors.New("acquire provisioning lock: not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.log.Warn("release provisioning lock", "error", err)
		}
	}()

	return fn()
}

// CreateDatabase registers a database and initializes its store file.
//
// The two steps are not atomic. When initialization fails the entry stays
// registered and the error is returned; Open initializes the file on first
// use, so the database remains usable.
func (s *Service) CreateDatabase(ctx context.Context, name string) (model.DatabaseEntry, error) {
	var entry model.DatabaseEntry
	err := s.withLock(ctx, func() error {
		var err error
		entry, err = s.reg.Add(ctx, name)
		if err != nil {
			return err
		}

		store, err := s.openStore(ctx, entry.Path)
		if err != nil {
			return fmt.Errorf("initialize database %s: %w", entry.ID, err)
		}
		return store.Close()
	})
	if err != nil {
		return entry, err
	}

	s.log.Info("database created", "id", entry.ID, "name", entry.Name, "path", entry.Path)
	return entry, nil
}

// GetDatabase returns the registry entry with the given id.
func (s *Service) GetDatabase(ctx context.Context, id string) (model.DatabaseEntry, error) {
	return s.reg.GetByID(ctx, id)
}

// GetDatabaseByName returns the registry entry with the given name.
func (s *Service) GetDatabaseByName(ctx context.Context, name string) (model.DatabaseEntry, error) {
	return s.reg.GetByName(ctx, name)
}

// ListDatabases returns every registry entry in creation order.
func (s *Service) ListDatabases(ctx context.Context) ([]model.DatabaseEntry, error) {
	return s.reg.List(ctx)
}

// RenameDatabase changes the name of a database. Its file keeps its path.
func (s *Service) RenameDatabase(ctx context.Context, id, newName string) (model.DatabaseEntry, error) {
	var entry model.DatabaseEntry
	err := s.withLock(ctx, func() error {
		var err error
		entry, err = s.reg.Update(ctx, id, model.DatabaseUpdate{Name: &newName})
		return err
	})
	if err != nil {
		return model.DatabaseEntry{}, err
	}

	s.log.Info("database renamed", "id", id, "name", entry.Name)
	return entry, nil
}

// DeleteDatabase removes a database from the registry and returns the
// removed entry. The store file is removed only with WithRemoveFiles, and
// before the entry, so a failed removal leaves the entry in place and the
// call can be retried.
func (s *Service) DeleteDatabase(ctx context.Context, id string) (model.DatabaseEntry, error) {
	var entry model.DatabaseEntry
	err := s.withLock(ctx, func() error {
		if s.removeFiles {
			current, err := s.reg.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := removeStoreFiles(current.Path); err != nil {
				return err
			}
		}
		var err error
		entry, err = s.reg.Delete(ctx, id)
		return err
	})
	if err != nil {
		return entry, err
	}

	s.log.Info("database deleted", "id", entry.ID, "name", entry.Name, "files_removed", s.removeFiles)
	return entry, nil
}

// Open resolves a database and opens a handle on its store. The caller
// must Close it; prefer Do.
func (s *Service) Open(ctx context.Context, id string) (*docstore.Store, error) {
	entry, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openStore(ctx, entry.Path)
}

// Do runs fn with a store handle for database id and closes the handle
// afterwards, whatever fn returns.
func (s *Service) Do(ctx context.Context, id string, fn func(*docstore.Store) error) (err error) {
	store, err := s.Open(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(store)
}

// Reindex rebuilds the search index of a database.
func (s *Service) Reindex(ctx context.Context, id string) (model.StoreStats, error) {
	var stats model.StoreStats
	err := s.Do(ctx, id, func(store *docstore.Store) error {
		var err error
		stats, err = store.RebuildSearch(ctx)
		return err
	})
	return stats, err
}

func (s *Service) openStore(ctx context.Context, path string) (*docstore.Store, error) {
	opts := append([]docstore.Option{docstore.WithLogger(s.log)}, s.storeOpts...)
	return docstore.Open(ctx, path, opts...)
}

// removeStoreFiles removes a store file and its WAL sidecars.
func removeStoreFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove store file: %w", err)
		}
	}
	return nil
}
