package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
	"github.com/roach88/outliner/internal/sqlitedb"
)

const entityPage = "page"

// AddPage creates a page and its index entry and returns the page id.
// Titles are stored byte for byte and compared exactly; an existing title
// is AlreadyExists.
func (s *Store) AddPage(ctx context.Context, title string) (string, error) {
	page := model.Page{ID: s.ids.NewID(), Title: title, CreatedAt: s.timestamp()}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkTitleFree(ctx, tx, title, ""); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO pages (page_id, title, created_at) VALUES (?, ?, ?)",
			page.ID, page.Title, page.CreatedAt,
		)
		if err != nil {
			if sqlitedb.IsUniqueViolation(err) {
				return model.AlreadyExists(entityPage, title)
			}
			return fmt.Errorf("add page: insert: %w", err)
		}

		return search.IndexPage(ctx, tx, page.ID, page.Title)
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("page added", "page_id", page.ID, "title", page.Title)
	return page.ID, nil
}

// GetPage returns the page with the given id.
func (s *Store) GetPage(ctx context.Context, id string) (model.Page, error) {
	return getPage(ctx, s.db, id)
}

// ListPages returns all pages in insertion order.
//
// Returns an empty slice (not nil) if no pages exist.
func (s *Store) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+model.PageColumns+" FROM pages ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		p, err := model.ScanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("list pages: scan: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pages: iterate: %w", err)
	}
	return pages, nil
}

// RenamePage changes a page title and replaces its index entry.
// Renaming a page to its current title succeeds without touching the row.
func (s *Store) RenamePage(ctx context.Context, id, newTitle string) error {
	var oldTitle string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		page, err := getPage(ctx, tx, id)
		if err != nil {
			return err
		}
		oldTitle = page.Title
		if page.Title == newTitle {
			return nil
		}

		if err := checkTitleFree(ctx, tx, newTitle, id); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, "UPDATE pages SET title = ? WHERE page_id = ?", newTitle, id)
		if err != nil {
			if sqlitedb.IsUniqueViolation(err) {
				return model.AlreadyExists(entityPage, newTitle)
			}
			return fmt.Errorf("rename page: update: %w", err)
		}

		return search.ReindexPage(ctx, tx, id, newTitle)
	})
	if err != nil {
		return err
	}

	s.log.Debug("page renamed", "page_id", id, "from", oldTitle, "to", newTitle)
	return nil
}

// DeletePage removes a page with every block anchored to it, directly or
// through other blocks, together with their index entries.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	var removed int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPage(ctx, tx, id); err != nil {
			return err
		}

		blockIDs, err := pageSubtreeIDs(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		removed = len(blockIDs)

		if err := search.UnindexBlocks(ctx, tx, blockIDs...); err != nil {
			return err
		}
		if err := search.UnindexPage(ctx, tx, id); err != nil {
			return err
		}

		// Blocks go with the page through ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE page_id = ?", id); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("page deleted", "page_id", id, "blocks", removed)
	return nil
}

func getPage(ctx context.Context, db search.DB, id string) (model.Page, error) {
	p, err := model.ScanPage(db.QueryRowContext(ctx,
		"SELECT "+model.PageColumns+" FROM pages WHERE page_id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.NotFound(entityPage, id)
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

// checkTitleFree returns AlreadyExists when a page other than exceptID
// holds title.
func checkTitleFree(ctx context.Context, tx *sql.Tx, title, exceptID string) error {
	var owner string
	err := tx.QueryRowContext(ctx, "SELECT page_id FROM pages WHERE title = ?", title).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check title: %w", err)
	case owner != exceptID:
		return model.AlreadyExists(entityPage, title)
	default:
		return nil
	}
}
