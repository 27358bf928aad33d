package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

// NewPageCommand creates the page command group.
func NewPageCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages of a database",
		Long: `Create, list, rename and delete pages, and print a page's block outline.

Deleting a page deletes all of its blocks.`,
	}

	cmd.PersistentFlags().StringVar(&db, "db", "", "database id or name (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newPageCreateCommand(rootOpts, &db))
	cmd.AddCommand(newPageGetCommand(rootOpts, &db))
	cmd.AddCommand(newPageListCommand(rootOpts, &db))
	cmd.AddCommand(newPageRenameCommand(rootOpts, &db))
	cmd.AddCommand(newPageDeleteCommand(rootOpts, &db))
	cmd.AddCommand(newPageOutlineCommand(rootOpts, &db))

	return cmd
}

func newPageCreateCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "create <title>",
		Short:         "Create a page",
		Example:       `  outliner page create --db notes "Trip to Lisbon"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var page model.Page
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				id, err := store.AddPage(ctx, args[0])
				if err != nil {
					return err
				}
				page, err = store.GetPage(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(page, func(w io.Writer) {
				renderPage(w, page)
			})
		},
	}
}

func newPageGetCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "get <page-id>",
		Short:         "Show a page",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var page model.Page
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				page, err = store.GetPage(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(page, func(w io.Writer) {
				renderPage(w, page)
			})
		},
	}
}

func newPageListCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List pages in creation order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var pages []model.Page
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				pages, err = store.ListPages(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(pages, func(w io.Writer) {
				renderPages(w, pages)
			})
		},
	}
}

func newPageRenameCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <page-id> <new-title>",
		Short:         "Rename a page",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var page model.Page
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				if err := store.RenamePage(ctx, args[0], args[1]); err != nil {
					return err
				}
				var err error
				page, err = store.GetPage(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(page, func(w io.Writer) {
				renderPage(w, page)
			})
		},
	}
}

func newPageDeleteCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <page-id>",
		Short:         "Delete a page and all of its blocks",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				return store.DeletePage(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(map[string]string{"page_id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted page %s\n", args[0])
			})
		},
	}
}

// outlineResult is the JSON shape of page outline.
type outlineResult struct {
	Page   model.Page    `json:"page"`
	Blocks []*model.Node `json:"blocks"`
}

func newPageOutlineCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "outline <page-id>",
		Short:         "Print the block tree of a page",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var res outlineResult
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				if res.Page, err = store.GetPage(ctx, args[0]); err != nil {
					return err
				}
				res.Blocks, err = store.PageOutline(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(res, func(w io.Writer) {
				renderOutline(w, res.Page.Title, res.Blocks)
			})
		},
	}
}
