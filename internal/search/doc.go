// Package search maintains the full-text index of a document store: one
// FTS5 entry per page (its title) and one per block (its content, tagged
// with the block's current page_id/parent_block_id).
//
// Every function takes a DB, which is either the store's *sql.DB or the
// *sql.Tx of the mutation being applied. Index writes therefore commit or
// roll back together with the primary row they mirror; there is no
// asynchronous indexing path.
//
// # Query modes
//
// Normal mode splits the query on whitespace and turns each token into a
// quoted prefix phrase ("tok"*), joined as an implicit AND. Raw mode hands
// the query to FTS5 untouched, so AND/OR/NOT, NEAR and phrase quoting work.
// A blank query never reaches SQLite and yields no results.
package search
