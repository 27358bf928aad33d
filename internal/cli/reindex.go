package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/access"
	"github.com/roach88/outliner/internal/model"
)

// NewReindexCommand creates the reindex command.
func NewReindexCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reindex [id|name]",
		Short: "Rebuild the search index of a database",
		Long: `Rebuild the full-text index of a database from its pages and blocks.
Use --all to rebuild every registered database.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return NewExitError(ExitCommandError, "pass a database or --all")
			}
			ctx := cmd.Context()
			results := []reindexResult{}
			err := withService(ctx, rootOpts, func(svc *access.Service) error {
				var entries []model.DatabaseEntry
				if all {
					var err error
					if entries, err = svc.ListDatabases(ctx); err != nil {
						return err
					}
				} else {
					entry, err := resolveDB(ctx, svc, args[0])
					if err != nil {
						return err
					}
					entries = append(entries, entry)
				}
				for _, entry := range entries {
					stats, err := svc.Reindex(ctx, entry.ID)
					if err != nil {
						return fmt.Errorf("reindex %s: %w", entry.Name, err)
					}
					results = append(results, reindexResult{Database: entry, Stats: stats})
				}
				return nil
			})
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(results, func(w io.Writer) {
				for _, r := range results {
					fmt.Fprintf(w, "Reindexed %s (%s)\n", r.Database.Name, r.Database.ID)
					renderStats(w, r.Stats)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "rebuild every registered database")

	return cmd
}

type reindexResult struct {
	Database model.DatabaseEntry `json:"database"`
	Stats    model.StoreStats    `json:"stats"`
}
