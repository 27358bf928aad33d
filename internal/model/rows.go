package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Column lists matching the Scan* functions below. Queries that feed a
// Scan* function must select exactly these columns, in this order.
const (
	WorkspaceColumns = "workspace_id, name, color"
	PageColumns      = "page_id, title, created_at"
	BlockColumns     = "block_id, content, page_id, parent_block_id, position, created_at"
	DatabaseColumns  = "id, name, path, created_at"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanWorkspace decodes a row selected with WorkspaceColumns.
func ScanWorkspace(row RowScanner) (Workspace, error) {
	var w Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Color); err != nil {
		return Workspace{}, err
	}
	return w, nil
}

// ScanPage decodes a row selected with PageColumns.
func ScanPage(row RowScanner) (Page, error) {
	var p Page
	if err := row.Scan(&p.ID, &p.Title, Timestamp(&p.CreatedAt)); err != nil {
		return Page{}, err
	}
	return p, nil
}

// ScanBlock decodes a row selected with BlockColumns.
func ScanBlock(row RowScanner) (Block, error) {
	var (
		b        Block
		pageID   sql.NullString
		parentID sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Content, &pageID, &parentID, &b.Position, Timestamp(&b.CreatedAt)); err != nil {
		return Block{}, err
	}
	b.PageID = pageID.String
	b.ParentBlockID = parentID.String
	return b, nil
}

// ScanDatabaseEntry decodes a row selected with DatabaseColumns.
func ScanDatabaseEntry(row RowScanner) (DatabaseEntry, error) {
	var d DatabaseEntry
	if err := row.Scan(&d.ID, &d.Name, &d.Path, Timestamp(&d.CreatedAt)); err != nil {
		return DatabaseEntry{}, err
	}
	return d, nil
}

// NullString maps "" to SQL NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// timestampFormats are the layouts SQLite timestamps are found in: the
// driver's own encoding of time.Time and CURRENT_TIMESTAMP defaults written
// by older tools.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Timestamp returns a sql.Scanner that decodes a TIMESTAMP column into dst.
// The driver usually hands back a time.Time, but columns reached through
// expressions lose their declared type and arrive as text.
func Timestamp(dst *time.Time) sql.Scanner {
	return timestampScanner{dst: dst}
}

type timestampScanner struct {
	dst *time.Time
}

func (s timestampScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("scan timestamp: unexpected type %T", src)
	}
}

func (s timestampScanner) parse(v string) error {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", v)
}
