package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/sqlitedb"
)

// DefaultLimit is used when a query does not set a positive limit.
const DefaultLimit = 10

// Query is a full-text search request against one table of the index.
type Query struct {
	// Text is the user's query.
	Text string

	// Limit caps the number of results. Values <= 0 mean DefaultLimit;
	// any positive value is passed through unchanged.
	Limit int

	// Raw passes Text to FTS5 unescaped, enabling boolean operators and
	// phrase syntax.
	Raw bool
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// Expression converts a query into an FTS5 MATCH expression. It returns
// false when the query cannot match anything (blank, or no searchable
// tokens) and must not be sent to SQLite.
//
// Normal mode: each whitespace-separated token containing at least one
// letter or digit becomes a quoted prefix phrase, embedded quotes doubled:
//
//	hello wor"ld  ->  "hello"* "wor""ld"*
//
// Tokens made only of punctuation are dropped: FTS5 tokenizes them to an
// empty phrase, which would make the whole implicit AND match nothing.
func Expression(text string, raw bool) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if raw {
		return text, true
	}

	tokens := strings.Fields(text)
	escaped := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		escaped = append(escaped, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"*`)
	}
	if len(escaped) == 0 {
		return "", false
	}
	return strings.Join(escaped, " "), true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

const pagesQuery = `
	SELECT p.page_id, p.title, p.created_at
	FROM pages_fts
	JOIN pages p ON p.page_id = pages_fts.page_id
	WHERE pages_fts MATCH ?
	ORDER BY pages_fts.rank, p.rowid
	LIMIT ?`

const blocksQuery = `
	SELECT b.block_id, b.content, b.page_id, b.parent_block_id, b.position, b.created_at
	FROM blocks_fts
	JOIN blocks b ON b.block_id = blocks_fts.block_id
	WHERE blocks_fts MATCH ?
	ORDER BY blocks_fts.rank, b.rowid
	LIMIT ?`

// Pages searches page titles, best match first.
// Returns an empty slice (not nil) when nothing matches.
func Pages(ctx context.Context, db DB, q Query) ([]model.Page, error) {
	expr, ok := Expression(q.Text, q.Raw)
	if !ok {
		return []model.Page{}, nil
	}

	rows, err := db.QueryContext(ctx, pagesQuery, expr, q.limit())
	if err != nil {
		return nil, queryError("search pages", q, err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		p, err := model.ScanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("search pages: scan: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("search pages", q, err)
	}
	return pages, nil
}

// Blocks searches block contents, best match first.
// Returns an empty slice (not nil) when nothing matches.
func Blocks(ctx context.Context, db DB, q Query) ([]model.Block, error) {
	expr, ok := Expression(q.Text, q.Raw)
	if !ok {
		return []model.Block{}, nil
	}

	rows, err := db.QueryContext(ctx, blocksQuery, expr, q.limit())
	if err != nil {
		return nil, queryError("search blocks", q, err)
	}
	defer rows.Close()

	blocks := []model.Block{}
	for rows.Next() {
		b, err := model.ScanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("search blocks: scan: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("search blocks", q, err)
	}
	return blocks, nil
}

// All runs Pages and Blocks independently; the limit applies to each.
func All(ctx context.Context, db DB, q Query) ([]model.Page, []model.Block, error) {
	pages, err := Pages(ctx, db, q)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := Blocks(ctx, db, q)
	if err != nil {
		return nil, nil, err
	}
	return pages, blocks, nil
}

// queryError reports MATCH expressions FTS5 rejects as InvalidArgument;
// anything else is a storage failure.
func queryError(op string, q Query, err error) error {
	if sqlitedb.IsFTSQueryError(err) {
		return &model.Error{
			Kind:    model.KindInvalidArgument,
			Message: fmt.Sprintf("invalid search query %q", q.Text),
			Err:     err,
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
