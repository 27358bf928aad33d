package cli

import (
	"context"
	"errors"

	"github.com/roach88/outliner/internal/access"
	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/registry"
)

// withService opens the registry named by the loaded config, runs fn
// against an access.Service over it and closes the registry.
func withService(ctx context.Context, opts *RootOptions, fn func(*access.Service) error) (err error) {
	cfg := opts.Config

	regOpts := append([]registry.Option{registry.WithLogger(opts.Logger)}, opts.RegistryOptions...)
	reg, err := registry.Open(ctx, cfg.RegistryPath, cfg.DataDir, regOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open registry", err)
	}
	defer func() {
		if closeErr := reg.Close(); closeErr != nil {
			opts.Logger.Error("error closing registry", "error", closeErr)
			if err == nil {
				err = WrapExitError(ExitCommandError, "failed to close registry", closeErr)
			}
		}
	}()

	svc := access.New(reg,
		access.WithLogger(opts.Logger),
		access.WithRemoveFiles(cfg.RemoveFiles),
		access.WithLockTimeout(cfg.LockTimeout),
		access.WithStoreOptions(opts.StoreOptions...),
	)
	return fn(svc)
}

// resolveDB finds a database by id, falling back to its name.
func resolveDB(ctx context.Context, svc *access.Service, ref string) (model.DatabaseEntry, error) {
	entry, err := svc.GetDatabase(ctx, ref)
	if err == nil || !model.IsNotFound(err) {
		return entry, err
	}
	entry, err = svc.GetDatabaseByName(ctx, ref)
	if model.IsNotFound(err) {
		return model.DatabaseEntry{}, model.NotFound("database", ref)
	}
	return entry, err
}

// withStore resolves ref and runs fn against its document store.
func withStore(ctx context.Context, opts *RootOptions, ref string, fn func(*docstore.Store) error) error {
	if ref == "" {
		return errors.New("no database selected: pass --db")
	}
	return withService(ctx, opts, func(svc *access.Service) error {
		entry, err := resolveDB(ctx, svc, ref)
		if err != nil {
			return err
		}
		opts.Logger.Debug("using database", "id", entry.ID, "name", entry.Name)
		return svc.Do(ctx, entry.ID, fn)
	})
}
