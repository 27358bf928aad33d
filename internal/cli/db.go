package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/access"
	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage registered databases",
		Long: `Create, inspect, rename, delete and import databases.

Databases are referenced by id or by name.`,
	}

	cmd.AddCommand(newDBCreateCommand(rootOpts))
	cmd.AddCommand(newDBListCommand(rootOpts))
	cmd.AddCommand(newDBGetCommand(rootOpts))
	cmd.AddCommand(newDBRenameCommand(rootOpts))
	cmd.AddCommand(newDBDeleteCommand(rootOpts))
	cmd.AddCommand(newDBImportCommand(rootOpts))
	cmd.AddCommand(newDBStatsCommand(rootOpts))

	return cmd
}

func newDBCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a database",
		Example: `  outliner db create "Travel Notes"
  outliner db create work --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBEntry(cmd, opts, func(ctx context.Context, svc *access.Service) (model.DatabaseEntry, error) {
				return svc.CreateDatabase(ctx, args[0])
			})
		},
	}
}

func newDBListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List databases in creation order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var entries []model.DatabaseEntry
			err := withService(ctx, opts, func(svc *access.Service) error {
				var err error
				entries, err = svc.ListDatabases(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(entries, func(w io.Writer) {
				renderDatabases(w, entries)
			})
		},
	}
}

func newDBGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id|name>",
		Short:         "Show a database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBEntry(cmd, opts, func(ctx context.Context, svc *access.Service) (model.DatabaseEntry, error) {
				return resolveDB(ctx, svc, args[0])
			})
		},
	}
}

func newDBRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <id|name> <new-name>",
		Short:         "Rename a database (its file keeps its path)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBEntry(cmd, opts, func(ctx context.Context, svc *access.Service) (model.DatabaseEntry, error) {
				entry, err := resolveDB(ctx, svc, args[0])
				if err != nil {
					return model.DatabaseEntry{}, err
				}
				return svc.RenameDatabase(ctx, entry.ID, args[1])
			})
		},
	}
}

func newDBDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a database from the registry",
		Long: `Delete a database from the registry.

The database file is left on disk unless remove_files is enabled in the
config (or OUTLINER_REMOVE_FILES=true).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBEntry(cmd, opts, func(ctx context.Context, svc *access.Service) (model.DatabaseEntry, error) {
				entry, err := resolveDB(ctx, svc, args[0])
				if err != nil {
					return model.DatabaseEntry{}, err
				}
				return svc.DeleteDatabase(ctx, entry.ID)
			})
		},
	}
}

func newDBImportCommand(opts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Copy an existing database file into the data directory",
		Long: `Copy an existing .db, .sqlite or .sqlite3 file into the data directory
and register it. The name defaults to the file name without its extension.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBEntry(cmd, opts, func(ctx context.Context, svc *access.Service) (model.DatabaseEntry, error) {
				return svc.ImportDatabase(ctx, name, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to register the database under")

	return cmd
}

func newDBStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats <id|name>",
		Short:         "Show row and index counts of a database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var stats model.StoreStats
			err := withStore(ctx, opts, args[0], func(store *docstore.Store) error {
				var err error
				stats, err = store.Stats(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(stats, func(w io.Writer) {
				renderStats(w, stats)
			})
		},
	}
}

// runDBEntry runs fn against the service and prints the returned entry.
func runDBEntry(cmd *cobra.Command, opts *RootOptions, fn func(context.Context, *access.Service) (model.DatabaseEntry, error)) error {
	ctx := cmd.Context()
	var entry model.DatabaseEntry
	err := withService(ctx, opts, func(svc *access.Service) error {
		var err error
		entry, err = fn(ctx, svc)
		return err
	})
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Success(entry, func(w io.Writer) {
		renderDatabase(w, entry)
	})
}
