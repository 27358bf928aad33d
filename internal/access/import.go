package access

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/registry"
	"github.com/roach88/outliner/internal/sqlitedb"
)

// ImportExtensions are the file extensions ImportDatabase accepts.
var ImportExtensions = []string{".db", ".sqlite", ".sqlite3"}

// ImportDatabase copies the SQLite file at src into the managed root and
// registers it as name. An empty name defaults to the file name without
// its extension. The copy is opened once, which upgrades its schema,
// before it is registered; on any failure the copy is removed.
func (s *Service) ImportDatabase(ctx context.Context, name, src string) (model.DatabaseEntry, error) {
	ext := strings.ToLower(filepath.Ext(src))
	if !validImportExt(ext) {
		return model.DatabaseEntry{}, model.InvalidArgumentf(
			"invalid file type %q: expected one of %s", filepath.Base(src), strings.Join(ImportExtensions, ", "))
	}
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	var entry model.DatabaseEntry
	err := s.withLock(ctx, func() error {
		if _, err := s.reg.GetByName(ctx, name); err == nil {
			return model.AlreadyExists(entityDatabase, model.NormalizeName(name))
		} else if !model.IsNotFound(err) {
			return err
		}

		dest := filepath.Join(s.reg.Root(), registry.FileName(name))
		if _, err := os.Stat(dest); err == nil {
			return model.AlreadyExists(entityDatabasePath, dest)
		}

		if err := copyFile(ctx, src, dest); err != nil {
			return err
		}

		var err error
		entry, err = s.initImported(ctx, name, dest)
		if err != nil {
			if rerr := removeStoreFiles(dest); rerr != nil {
				s.log.Warn("remove failed import", "path", dest, "error", rerr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.DatabaseEntry{}, err
	}

	s.log.Info("database imported", "id", entry.ID, "name", entry.Name, "source", src, "path", entry.Path)
	return entry, nil
}

func (s *Service) initImported(ctx context.Context, name, dest string) (model.DatabaseEntry, error) {
	store, err := s.openStore(ctx, dest)
	if err != nil {
		return model.DatabaseEntry{}, &model.Error{
			Kind:    model.KindInvalidArgument,
			Message: fmt.Sprintf("imported file %s is not a usable outliner database", filepath.Base(dest)),
			Err:     err,
		}
	}
	if err := store.Close(); err != nil {
		return model.DatabaseEntry{}, fmt.Errorf("close imported database: %w", err)
	}
	return s.reg.AddExisting(ctx, name, dest)
}

// copyFile writes a copy of src to dest through a temporary file, so dest
// is either complete or absent. A write-ahead log next to src is
// checkpointed first so committed writes still in the log are copied.
func copyFile(ctx context.Context, src, dest string) error {
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return model.NotFound("file", src)
	}
	if err := sqlitedb.Checkpoint(ctx, src); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NotFound("file", src)
		}
		return fmt.Errorf("import: open source: %w", err)
	}
	defer f.Close()

	if err := atomic.WriteFile(dest, f); err != nil {
		return fmt.Errorf("import: copy: %w", err)
	}
	return nil
}

func validImportExt(ext string) bool {
	for _, e := range ImportExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

const (
	entityDatabase     = "database"
	entityDatabasePath = "database path"
)
