package model

import "time"

// DefaultWorkspaceID is the id of the workspace every store is created with.
const DefaultWorkspaceID int64 = 0

// DefaultWorkspaceName is the name of the default workspace.
const DefaultWorkspaceName = "Default"

// Workspace is a named, colored grouping entity. It does not own pages or
// blocks.
type Workspace struct {
	ID    int64  `json:"workspace_id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// Page is a top-level document. Titles are unique within a store.
type Page struct {
	ID        string    `json:"page_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Block is a content node. Exactly one of PageID and ParentBlockID is
// non-empty: a root block hangs off a page, a nested block off another
// block.
type Block struct {
	ID            string    `json:"block_id"`
	Content       string    `json:"content"`
	PageID        string    `json:"page_id,omitempty"`
	ParentBlockID string    `json:"parent_block_id,omitempty"`
	Position      int64     `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
}

// Parent returns the block's parent reference.
func (b Block) Parent() Parent {
	return Parent{PageID: b.PageID, BlockID: b.ParentBlockID}
}

// Parent names where a block hangs. Exactly one field must be set.
type Parent struct {
	PageID  string
	BlockID string
}

// OnPage returns a parent reference to a page.
func OnPage(pageID string) Parent { return Parent{PageID: pageID} }

// UnderBlock returns a parent reference to another block.
func UnderBlock(blockID string) Parent { return Parent{BlockID: blockID} }

// IsPage reports whether the reference points at a page.
func (p Parent) IsPage() bool { return p.PageID != "" && p.BlockID == "" }

// Validate returns an InvalidArgument error unless exactly one of PageID
// and BlockID is set.
func (p Parent) Validate() error {
	if (p.PageID == "") == (p.BlockID == "") {
		return InvalidArgument("must supply exactly one parent: page_id or parent_block_id")
	}
	return nil
}

// Node is a block together with its nested children, as returned by
// outline queries. Children are ordered by position, then insertion order.
type Node struct {
	Block    Block   `json:"block"`
	Children []*Node `json:"children"`
}

// DatabaseEntry is a Database Registry row mapping a store name to the
// SQLite file holding it.
type DatabaseEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// DatabaseUpdate carries the optional fields of a registry update. Nil
// fields are left untouched.
type DatabaseUpdate struct {
	Name *string
	Path *string
}

// IsEmpty reports whether the update changes nothing.
func (u DatabaseUpdate) IsEmpty() bool { return u.Name == nil && u.Path == nil }

// StoreStats holds row counts of a document store's primary tables and of
// its search index. Pages != IndexedPages (or Blocks != IndexedBlocks)
// means the index drifted and should be rebuilt.
type StoreStats struct {
	Workspaces    int `json:"workspaces"`
	Pages         int `json:"pages"`
	Blocks        int `json:"blocks"`
	IndexedPages  int `json:"indexed_pages"`
	IndexedBlocks int `json:"indexed_blocks"`
}

// InSync reports whether the index row counts match the primary row counts.
func (s StoreStats) InSync() bool {
	return s.Pages == s.IndexedPages && s.Blocks == s.IndexedBlocks
}
