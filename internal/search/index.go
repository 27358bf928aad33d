package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/outliner/internal/model"
)

// DB is satisfied by *sql.DB and *sql.Tx.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Table names of the index.
const (
	PagesTable  = "pages_fts"
	BlocksTable = "blocks_fts"
)

// installSQL (re)creates the index tables. The tables hold their own copy
// of the indexed text; ids and parent tags are UNINDEXED columns.
const installSQL = `
DROP TABLE IF EXISTS pages_fts;
DROP TABLE IF EXISTS blocks_fts;
CREATE VIRTUAL TABLE pages_fts USING fts5(
	title,
	page_id UNINDEXED,
	tokenize = 'unicode61'
);
CREATE VIRTUAL TABLE blocks_fts USING fts5(
	content,
	block_id UNINDEXED,
	page_id UNINDEXED,
	parent_block_id UNINDEXED,
	tokenize = 'unicode61'
);
`

// Install drops any existing index tables (including the external-content
// tables written by older versions) and creates empty ones. Callers follow
// it with Rebuild.
func Install(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, installSQL); err != nil {
		return fmt.Errorf("install search index: %w", err)
	}
	return nil
}

// IndexPage adds the index entry of a page.
func IndexPage(ctx context.Context, db DB, pageID, title string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO pages_fts (title, page_id) VALUES (?, ?)",
		title, pageID,
	)
	if err != nil {
		return fmt.Errorf("index page: %w", err)
	}
	return nil
}

// UnindexPage removes the index entry of a page.
func UnindexPage(ctx context.Context, db DB, pageID string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM pages_fts WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("unindex page: %w", err)
	}
	return nil
}

// ReindexPage replaces the index entry of a page with a new title.
func ReindexPage(ctx context.Context, db DB, pageID, title string) error {
	if err := UnindexPage(ctx, db, pageID); err != nil {
		return err
	}
	return IndexPage(ctx, db, pageID, title)
}

// IndexBlock adds the index entry of a block.
func IndexBlock(ctx context.Context, db DB, b model.Block) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO blocks_fts (content, block_id, page_id, parent_block_id) VALUES (?, ?, ?, ?)",
		b.Content, b.ID, model.NullString(b.PageID), model.NullString(b.ParentBlockID),
	)
	if err != nil {
		return fmt.Errorf("index block: %w", err)
	}
	return nil
}

// ReindexBlock replaces the index entry of a block: its content and its
// parent tags.
func ReindexBlock(ctx context.Context, db DB, b model.Block) error {
	if err := UnindexBlocks(ctx, db, b.ID); err != nil {
		return err
	}
	return IndexBlock(ctx, db, b)
}

// UnindexBlocks removes the index entries of the given blocks.
func UnindexBlocks(ctx context.Context, db DB, blockIDs ...string) error {
	for _, id := range blockIDs {
		if _, err := db.ExecContext(ctx, "DELETE FROM blocks_fts WHERE block_id = ?", id); err != nil {
			return fmt.Errorf("unindex block %s: %w", id, err)
		}
	}
	return nil
}

// Rebuild clears the index and repopulates it from the pages and blocks
// tables. Run it inside a transaction so readers never see a half-built
// index.
func Rebuild(ctx context.Context, db DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"clear pages", "DELETE FROM pages_fts"},
		{"clear blocks", "DELETE FROM blocks_fts"},
		{"fill pages", "INSERT INTO pages_fts (title, page_id) SELECT title, page_id FROM pages"},
		{"fill blocks", `INSERT INTO blocks_fts (content, block_id, page_id, parent_block_id)
			SELECT content, block_id, page_id, parent_block_id FROM blocks`},
	}
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.query); err != nil {
			return fmt.Errorf("rebuild search index: %s: %w", step.name, err)
		}
	}
	return nil
}

// Counts returns the number of page and block index entries.
func Counts(ctx context.Context, db DB) (pages, blocks int, err error) {
	err = db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM pages_fts), (SELECT COUNT(*) FROM blocks_fts)",
	).Scan(&pages, &blocks)
	if err != nil {
		return 0, 0, fmt.Errorf("count search index: %w", err)
	}
	return pages, blocks, nil
}
