package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/outliner/internal/model"
)

// pageOutlineSQL selects the full block tree of a page. The global ORDER BY
// keeps siblings in position, then insertion order once grouped by parent.
const pageOutlineSQL = `
	WITH RECURSIVE subtree(block_id) AS (
		SELECT block_id FROM blocks WHERE page_id = ?
		UNION
		SELECT b.block_id FROM blocks b JOIN subtree s ON b.parent_block_id = s.block_id
	)
	SELECT b.block_id, b.content, b.page_id, b.parent_block_id, b.position, b.created_at
	FROM blocks b
	JOIN subtree s ON b.block_id = s.block_id
	ORDER BY b.position ASC, b.rowid ASC
`

// PageOutline returns the block tree of a page: its root blocks with their
// descendants nested under Children.
//
// Returns an empty slice (not nil) for a page without blocks.
func (s *Store) PageOutline(ctx context.Context, pageID string) ([]*model.Node, error) {
	var roots []*model.Node
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPage(ctx, tx, pageID); err != nil {
			return err
		}

		blocks, err := queryOutline(ctx, tx, pageID)
		if err != nil {
			return err
		}
		roots = buildTree(blocks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}

func queryOutline(ctx context.Context, tx *sql.Tx, pageID string) ([]model.Block, error) {
	rows, err := tx.QueryContext(ctx, pageOutlineSQL, pageID)
	if err != nil {
		return nil, fmt.Errorf("page outline: %w", err)
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		b, err := model.ScanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("page outline: scan: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page outline: iterate: %w", err)
	}
	return blocks, nil
}

// buildTree links blocks, already in sibling order, to their parents.
func buildTree(blocks []model.Block) []*model.Node {
	nodes := make(map[string]*model.Node, len(blocks))
	for _, b := range blocks {
		nodes[b.ID] = &model.Node{Block: b, Children: []*model.Node{}}
	}

	roots := []*model.Node{}
	for _, b := range blocks {
		n := nodes[b.ID]
		if b.PageID != "" {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[b.ParentBlockID]; ok {
			parent.Children = append(parent.Children, n)
		}
	}
	return roots
}
