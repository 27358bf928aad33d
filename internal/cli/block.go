package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

// NewBlockCommand creates the block command group.
func NewBlockCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "block",
		Short: "Manage blocks of a database",
		Long: `Create, edit, move and delete blocks.

A block hangs either off a page (--page) or off another block (--parent).
Siblings are ordered by --position, then by insertion order. Deleting a
block deletes its descendants.`,
	}

	cmd.PersistentFlags().StringVar(&db, "db", "", "database id or name (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newBlockCreateCommand(rootOpts, &db))
	cmd.AddCommand(newBlockGetCommand(rootOpts, &db))
	cmd.AddCommand(newBlockListCommand(rootOpts, &db))
	cmd.AddCommand(newBlockUpdateCommand(rootOpts, &db))
	cmd.AddCommand(newBlockMoveCommand(rootOpts, &db))
	cmd.AddCommand(newBlockDeleteCommand(rootOpts, &db))

	return cmd
}

// addParentFlags registers the mutually exclusive --page and --parent flags.
func addParentFlags(cmd *cobra.Command, parent *model.Parent) {
	cmd.Flags().StringVar(&parent.PageID, "page", "", "parent page id")
	cmd.Flags().StringVar(&parent.BlockID, "parent", "", "parent block id")
	cmd.MarkFlagsMutuallyExclusive("page", "parent")
	cmd.MarkFlagsOneRequired("page", "parent")
}

func newBlockCreateCommand(opts *RootOptions, db *string) *cobra.Command {
	var (
		parent   model.Parent
		position int64
	)

	cmd := &cobra.Command{
		Use:   "create <content>",
		Short: "Create a block",
		Example: `  outliner block create --db notes --page 3f2a... "Book flights"
  outliner block create --db notes --parent 9c1e... --position 2 "Window seat"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var block model.Block
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				id, err := store.AddBlock(ctx, args[0], position, parent)
				if err != nil {
					return err
				}
				block, err = store.GetBlock(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(block, func(w io.Writer) {
				renderBlock(w, block)
			})
		},
	}

	addParentFlags(cmd, &parent)
	cmd.Flags().Int64Var(&position, "position", 0, "position among siblings")

	return cmd
}

func newBlockGetCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "get <block-id>",
		Short:         "Show a block",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var block model.Block
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				block, err = store.GetBlock(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(block, func(w io.Writer) {
				renderBlock(w, block)
			})
		},
	}
}

func newBlockListCommand(opts *RootOptions, db *string) *cobra.Command {
	var parent model.Parent

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the direct children of a page or block",
		Long: `List the direct children of a page (--page) or of a block (--parent),
ordered by position then insertion order. Use page outline for the whole
tree.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var blocks []model.Block
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				var err error
				if parent.IsPage() {
					blocks, err = store.ListBlocksByPage(ctx, parent.PageID)
				} else {
					blocks, err = store.ListChildBlocks(ctx, parent.BlockID)
				}
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(blocks, func(w io.Writer) {
				renderBlocks(w, blocks)
			})
		},
	}

	addParentFlags(cmd, &parent)

	return cmd
}

func newBlockUpdateCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "update <block-id> <content>",
		Short:         "Replace the content of a block",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var block model.Block
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				if err := store.UpdateBlockContent(ctx, args[0], args[1]); err != nil {
					return err
				}
				var err error
				block, err = store.GetBlock(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(block, func(w io.Writer) {
				renderBlock(w, block)
			})
		},
	}
}

func newBlockMoveCommand(opts *RootOptions, db *string) *cobra.Command {
	var parent model.Parent

	cmd := &cobra.Command{
		Use:   "move <block-id>",
		Short: "Move a block under another page or block",
		Long: `Move a block, with its descendants, under another page (--page) or
block (--parent). A block cannot be moved under itself or its descendants.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var block model.Block
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				if err := store.UpdateBlockParent(ctx, args[0], parent); err != nil {
					return err
				}
				var err error
				block, err = store.GetBlock(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(block, func(w io.Writer) {
				renderBlock(w, block)
			})
		},
	}

	addParentFlags(cmd, &parent)

	return cmd
}

func newBlockDeleteCommand(opts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <block-id>",
		Short:         "Delete a block and its descendants",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withStore(ctx, opts, *db, func(store *docstore.Store) error {
				return store.DeleteBlock(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Success(map[string]string{"block_id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted block %s\n", args[0])
			})
		},
	}
}
