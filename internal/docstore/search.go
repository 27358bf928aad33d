package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
)

// SearchPages runs a full-text query over page titles.
func (s *Store) SearchPages(ctx context.Context, q search.Query) ([]model.Page, error) {
	return search.Pages(ctx, s.db, q)
}

// SearchBlocks runs a full-text query over block content.
func (s *Store) SearchBlocks(ctx context.Context, q search.Query) ([]model.Block, error) {
	return search.Blocks(ctx, s.db, q)
}

// SearchAll runs the page and block queries independently; the limit
// applies to each.
func (s *Store) SearchAll(ctx context.Context, q search.Query) ([]model.Page, []model.Block, error) {
	return search.All(ctx, s.db, q)
}

// RebuildSearch repopulates the index from the primary tables in one
// transaction and returns the resulting counts.
func (s *Store) RebuildSearch(ctx context.Context) (model.StoreStats, error) {
	var stats model.StoreStats
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := search.Rebuild(ctx, tx); err != nil {
			return err
		}
		var err error
		stats, err = readStats(ctx, tx)
		return err
	})
	if err != nil {
		return model.StoreStats{}, err
	}

	s.log.Info("search index rebuilt",
		"path", s.path,
		"pages", stats.IndexedPages,
		"blocks", stats.IndexedBlocks,
	)
	return stats, nil
}

// Stats returns the row counts of the primary tables and of the index.
func (s *Store) Stats(ctx context.Context) (model.StoreStats, error) {
	return readStats(ctx, s.db)
}

func readStats(ctx context.Context, db search.DB) (model.StoreStats, error) {
	var stats model.StoreStats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM workspaces),
			(SELECT COUNT(*) FROM pages),
			(SELECT COUNT(*) FROM blocks)
	`).Scan(&stats.Workspaces, &stats.Pages, &stats.Blocks)
	if err != nil {
		return model.StoreStats{}, fmt.Errorf("stats: %w", err)
	}

	stats.IndexedPages, stats.IndexedBlocks, err = search.Counts(ctx, db)
	if err != nil {
		return model.StoreStats{}, err
	}
	return stats, nil
}
