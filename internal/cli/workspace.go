package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

// NewWorkspaceCommand creates the workspace command group.
func NewWorkspaceCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces of a database",
		Long: `Create, list, update and delete workspaces. Every database starts with
workspace 0, "Default".`,
	}

	cmd.PersistentFlags().StringVar(&db, "db", "", "database id or name (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newWorkspaceCreateCommand(rootOpts, &db))
	cmd.AddCommand(newWorkspaceGetCommand(rootOpts, &db))
	cmd.AddCommand(newWorkspaceListCommand(rootOpts, &db))
	cmd.AddCommand(newWorkspaceUpdateCommand(rootOpts, &db))
	cmd.AddCommand(newWorkspaceDeleteCommand(rootOpts, &db))

	return cmd
}

func newWorkspaceCreateCommand(opts *RootOptions, db *string) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:           "create <name>",
		Short:         "Create a workspace",
		Example:       `  outliner workspace create --db notes Travel --color "#34A853"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.ParseColor(color)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var ws model.Workspace
			err = withStore(ctx, opts, *db, func(store *docstore.Store) error {
				id, err := store.AddWorkspace(ctx, args[0], c)
				if err != nil {
					return err
				}
				ws, err = store.GetWorkspace(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(ws, func(w io.Writer) {
				renderWorkspace(w, ws)
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", model.DefaultWorkspaceColor.String(), "color as #RRGGBB")

	return cmd
}

func newWorkspaceGetCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "get <workspace-id>",
		Short:         "Show a workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkspaceID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var ws model.Workspace
			err = withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				ws, err = store.GetWorkspace(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(ws, func(w io.Writer) {
				renderWorkspace(w, ws)
			})
		},
	}
}

func newWorkspaceListCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List workspaces",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var workspaces []model.Workspace
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				workspaces, err = store.ListWorkspaces(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(workspaces, func(w io.Writer) {
				renderWorkspaces(w, workspaces)
			})
		},
	}
}

func newWorkspaceUpdateCommand(opts *RootOptions, db *string) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:           "update <workspace-id>",
		Short:         "Change the name or color of a workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkspaceID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var ws model.Workspace
			err = withStore(ctx, opts, *db, func(store *docstore.Store) error {
				current, err := store.GetWorkspace(ctx, id)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					current.Name = name
				}
				if cmd.Flags().Changed("color") {
					if current.Color, err = model.ParseColor(color); err != nil {
						return err
					}
				}
				if err := store.UpdateWorkspace(ctx, id, current.Name, current.Color); err != nil {
					return err
				}
				ws = current
				return nil
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(ws, func(w io.Writer) {
				renderWorkspace(w, ws)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color as #RRGGBB")
	cmd.MarkFlagsOneRequired("name", "color")

	return cmd
}

func newWorkspaceDeleteCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <workspace-id>",
		Short:         "Delete a workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkspaceID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			err = withStore(ctx, opts, *db, func(store *docstore.Store) error {
				return store.DeleteWorkspace(ctx, id)
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(map[string]int64{"workspace_id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted workspace %d\n", id)
			})
		},
	}
}

func parseWorkspaceID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, model.InvalidArgumentf("invalid workspace id %q", s)
	}
	return id, nil
}
