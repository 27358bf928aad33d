package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
)

const entityBlock = "block"

// pageSubtreeSQL selects every block anchored to a page, directly or
// through other blocks. UNION (not UNION ALL) stops on a cycle.
const pageSubtreeSQL = `
	WITH RECURSIVE subtree(block_id) AS (
		SELECT block_id FROM blocks WHERE page_id = ?
		UNION
		SELECT b.block_id FROM blocks b JOIN subtree s ON b.parent_block_id = s.block_id
	)
	SELECT block_id FROM subtree
`

// blockSubtreeSQL selects a block and all of its descendants.
const blockSubtreeSQL = `
	WITH RECURSIVE subtree(block_id) AS (
		SELECT block_id FROM blocks WHERE block_id = ?
		UNION
		SELECT b.block_id FROM blocks b JOIN subtree s ON b.parent_block_id = s.block_id
	)
	SELECT block_id FROM subtree
`

// AddBlock creates a block under a page or under another block and returns
// its id. Exactly one parent must be set; a missing parent is NotFound.
// Position is stored as given.
func (s *Store) AddBlock(ctx context.Context, content string, position int64, parent model.Parent) (string, error) {
	if err := parent.Validate(); err != nil {
		return "", err
	}

	block := model.Block{
		ID:            s.ids.NewID(),
		Content:       content,
		PageID:        parent.PageID,
		ParentBlockID: parent.BlockID,
		Position:      position,
		CreatedAt:     s.timestamp(),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkParentExists(ctx, tx, parent); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO blocks (block_id, content, page_id, parent_block_id, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			block.ID,
			block.Content,
			model.NullString(block.PageID),
			model.NullString(block.ParentBlockID),
			block.Position,
			block.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("add block: insert: %w", err)
		}

		return search.IndexBlock(ctx, tx, block)
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("block added",
		"block_id", block.ID,
		"page_id", block.PageID,
		"parent_block_id", block.ParentBlockID,
		"position", block.Position,
	)
	return block.ID, nil
}

// GetBlock returns the block with the given id.
func (s *Store) GetBlock(ctx context.Context, id string) (model.Block, error) {
	return getBlock(ctx, s.db, id)
}

// ListBlocksByPage returns the root blocks of a page (direct children
// only) ordered by position, then insertion order. An unknown page yields
// an empty slice.
func (s *Store) ListBlocksByPage(ctx context.Context, pageID string) ([]model.Block, error) {
	return s.listBlocks(ctx, "page_id", pageID)
}

// ListChildBlocks returns the direct children of a block ordered by
// position, then insertion order.
func (s *Store) ListChildBlocks(ctx context.Context, parentBlockID string) ([]model.Block, error) {
	return s.listBlocks(ctx, "parent_block_id", parentBlockID)
}

// listBlocks lists the blocks whose column equals id. column is one of the
// two parent columns, never caller input.
func (s *Store) listBlocks(ctx context.Context, column, id string) ([]model.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+model.BlockColumns+" FROM blocks WHERE "+column+" = ? ORDER BY position ASC, rowid ASC",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	blocks := []model.Block{}
	for rows.Next() {
		b, err := model.ScanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("list blocks: scan: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks: iterate: %w", err)
	}
	return blocks, nil
}

// UpdateBlockContent replaces the content of a block and its index entry.
// The entry keeps the block's current parent tags.
func (s *Store) UpdateBlockContent(ctx context.Context, id, content string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		block, err := getBlock(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "UPDATE blocks SET content = ? WHERE block_id = ?", content, id); err != nil {
			return fmt.Errorf("update block content: %w", err)
		}

		block.Content = content
		return search.ReindexBlock(ctx, tx, block)
	})
	if err != nil {
		return err
	}

	s.log.Debug("block content updated", "block_id", id)
	return nil
}

// UpdateBlockParent moves a block under a new page or block. The chosen
// parent column is set, the other is cleared, and the index entry is
// retagged. Moving a block under itself or one of its descendants is
// InvalidArgument.
func (s *Store) UpdateBlockParent(ctx context.Context, id string, parent model.Parent) error {
	if err := parent.Validate(); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		block, err := getBlock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkParentExists(ctx, tx, parent); err != nil {
			return err
		}

		if !parent.IsPage() {
			descendants, err := blockSubtreeIDs(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("update block parent: %w", err)
			}
			for _, d := range descendants {
				if d == parent.BlockID {
					return model.InvalidArgumentf("block %s cannot be moved under itself or its descendant %s", id, parent.BlockID)
				}
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE blocks SET page_id = ?, parent_block_id = ? WHERE block_id = ?",
			model.NullString(parent.PageID), model.NullString(parent.BlockID), id,
		)
		if err != nil {
			return fmt.Errorf("update block parent: %w", err)
		}

		block.PageID = parent.PageID
		block.ParentBlockID = parent.BlockID
		return search.ReindexBlock(ctx, tx, block)
	})
	if err != nil {
		return err
	}

	s.log.Debug("block moved", "block_id", id, "page_id", parent.PageID, "parent_block_id", parent.BlockID)
	return nil
}

// DeleteBlock removes a block, all of its descendants and their index
// entries.
func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	var removed int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getBlock(ctx, tx, id); err != nil {
			return err
		}

		ids, err := blockSubtreeIDs(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("delete block: %w", err)
		}
		removed = len(ids)

		if err := search.UnindexBlocks(ctx, tx, ids...); err != nil {
			return err
		}

		// Descendants go through ON DELETE CASCADE on parent_block_id.
		if _, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE block_id = ?", id); err != nil {
			return fmt.Errorf("delete block: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("block deleted", "block_id", id, "blocks", removed)
	return nil
}

func getBlock(ctx context.Context, db search.DB, id string) (model.Block, error) {
	b, err := model.ScanBlock(db.QueryRowContext(ctx,
		"SELECT "+model.BlockColumns+" FROM blocks WHERE block_id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Block{}, model.NotFound(entityBlock, id)
	}
	if err != nil {
		return model.Block{}, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

// checkParentExists returns NotFound when the page or block named by
// parent is absent.
func checkParentExists(ctx context.Context, tx *sql.Tx, parent model.Parent) error {
	var (
		query, entity, key string
	)
	if parent.IsPage() {
		query, entity, key = "SELECT 1 FROM pages WHERE page_id = ?", entityPage, parent.PageID
	} else {
		query, entity, key = "SELECT 1 FROM blocks WHERE block_id = ?", entityBlock, parent.BlockID
	}

	var one int
	err := tx.QueryRowContext(ctx, query, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFound(entity, key)
	}
	if err != nil {
		return fmt.Errorf("check parent %s: %w", entity, err)
	}
	return nil
}

func pageSubtreeIDs(ctx context.Context, db search.DB, pageID string) ([]string, error) {
	return queryIDs(ctx, db, pageSubtreeSQL, pageID)
}

func blockSubtreeIDs(ctx context.Context, db search.DB, blockID string) ([]string, error) {
	return queryIDs(ctx, db, blockSubtreeSQL, blockID)
}

func queryIDs(ctx context.Context, db search.DB, query string, arg any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subtree: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subtree: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtree: %w", err)
	}
	return ids, nil
}
