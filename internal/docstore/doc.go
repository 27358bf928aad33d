// Package docstore provides the SQLite-backed Document Store: one isolated
// file holding the workspaces, pages and blocks of a logical database plus
// its full-text index (see internal/search).
//
// # Invariants
//
//   - Exactly one workspace with id 0 exists after Open
//   - Page titles are unique, compared byte for byte
//   - Every block has exactly one parent: a page (page_id) or another block
//     (parent_block_id). Enforced by the API and by a CHECK constraint
//   - Deleting a page or block deletes its whole subtree (ON DELETE CASCADE)
//   - Every page and block has exactly one index entry, written in the same
//     transaction as the row it mirrors
//
// # Ordering
//
// Queries include a deterministic ORDER BY: workspaces by id, pages by
// insertion order, blocks by position then insertion order. Positions are
// stored as given; the store never resequences them.
//
// A *Store is a request-scoped handle: open it for an operation (or a
// request) and Close it afterwards.
package docstore
