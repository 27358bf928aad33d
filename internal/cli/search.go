package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/access"
	"github.com/roach88/outliner/internal/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Database string
	Type     string
	Limit    int
	Advanced bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over page titles and block content",
		Long: `Search page titles and block content of a database.

By default every word of the query must match a word prefix, so "pack cl"
finds "Packing clothes". With --advanced the query is passed to the index
unchanged and may use AND, OR, NOT and "quoted phrases".

Example:
  outliner search --db notes lisbon
  outliner search --db notes --type blocks --limit 5 "flight OR train" --advanced`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database id or name (required)")
	cmd.Flags().StringVarP(&opts.Type, "type", "t", string(access.SearchAll), "what to search (pages|blocks|all)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", search.DefaultLimit, "maximum results per type")
	cmd.Flags().BoolVar(&opts.Advanced, "advanced", false, "pass the query to the index unescaped")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *SearchOptions, query string) error {
	ctx := cmd.Context()
	var resp access.SearchResponse
	err := withService(ctx, opts.RootOptions, func(svc *access.Service) error {
		entry, err := resolveDB(ctx, svc, opts.Database)
		if err != nil {
			return err
		}
		resp, err = svc.Search(ctx, entry.ID, access.SearchRequest{
			Query:    query,
			Type:     access.SearchType(opts.Type),
			Limit:    opts.Limit,
			Advanced: opts.Advanced,
		})
		return err
	})
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	f.VerboseLog("search %q: %d pages, %d blocks", query, len(resp.Pages), len(resp.Blocks))
	return f.Success(resp, func(w io.Writer) {
		typ := access.SearchType(opts.Type)
		if typ != access.SearchBlocks {
			fmt.Fprintf(w, "Pages (%d):\n", len(resp.Pages))
			for _, p := range resp.Pages {
				fmt.Fprintf(w, "  %s  %s\n", p.ID, p.Title)
			}
		}
		if typ != access.SearchPages {
			fmt.Fprintf(w, "Blocks (%d):\n", len(resp.Blocks))
			for _, b := range resp.Blocks {
				fmt.Fprintf(w, "  %s  %s\n", b.ID, oneLine(b.Content))
			}
		}
	})
}
