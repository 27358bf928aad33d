package docstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/model"
)

func TestAddBlock_RequiresExactlyOneParent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	b := mustAddBlock(t, s, "parent", 0, model.OnPage(p))

	_, err := s.AddBlock(ctx, "hi", 0, model.Parent{})
	assert.True(t, model.IsInvalidArgument(err), "no parent: got %v", err)

	_, err = s.AddBlock(ctx, "hi", 0, model.Parent{PageID: p, BlockID: b})
	assert.True(t, model.IsInvalidArgument(err), "two parents: got %v", err)
	assert.Contains(t, err.Error(), "exactly one parent")

	stats := requireInSync(t, s)
	assert.Equal(t, 1, stats.Blocks)
}

func TestAddBlock_MissingParent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.AddBlock(ctx, "orphan", 0, model.OnPage("missing"))
	assert.True(t, model.IsNotFound(err), "got %v", err)

	_, err = s.AddBlock(ctx, "orphan", 0, model.UnderBlock("missing"))
	assert.True(t, model.IsNotFound(err), "got %v", err)

	stats := requireInSync(t, s)
	assert.Zero(t, stats.Blocks)
}

func TestAddBlock_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "root", 7, model.OnPage(p))
	b := mustAddBlock(t, s, "child", -3, model.UnderBlock(a))

	got, err := s.GetBlock(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, p, got.PageID)
	assert.Empty(t, got.ParentBlockID)
	assert.Equal(t, int64(7), got.Position)

	got, err = s.GetBlock(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, got.PageID)
	assert.Equal(t, a, got.ParentBlockID)
	assert.Equal(t, int64(-3), got.Position, "positions are stored verbatim")
}

func TestGetBlock_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetBlock(context.Background(), "missing")
	assert.True(t, model.IsNotFound(err), "got %v", err)

	var e *model.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "block", e.Entity)
	assert.Equal(t, "missing", e.Key)
}

func TestListBlocksByPage_DirectChildrenOrdered(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	second := mustAddBlock(t, s, "second", 2, model.OnPage(p))
	firstA := mustAddBlock(t, s, "first a", 1, model.OnPage(p))
	firstB := mustAddBlock(t, s, "first b", 1, model.OnPage(p))
	mustAddBlock(t, s, "nested", 0, model.UnderBlock(second))

	blocks, err := s.ListBlocksByPage(ctx, p)
	require.NoError(t, err)

	var ids []string
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{firstA, firstB, second}, ids)

	children, err := s.ListChildBlocks(ctx, second)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "nested", children[0].Content)
}

func TestListBlocksByPage_UnknownPage(t *testing.T) {
	s := createTestStore(t)

	blocks, err := s.ListBlocksByPage(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, blocks)
	assert.Empty(t, blocks)
}

func TestUpdateBlockContent_SearchConsistency(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	id := mustAddBlock(t, s, "old words", 0, model.OnPage(p))

	require.NoError(t, s.UpdateBlockContent(ctx, id, "new text"))

	got, err := s.GetBlock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new text", got.Content)
	assert.Equal(t, p, got.PageID, "parent unchanged")

	assert.Equal(t, []string{id}, searchBlockIDs(t, s, "new text"))
	assert.Empty(t, searchBlockIDs(t, s, "old words"))
	requireInSync(t, s)
}

func TestUpdateBlockContent_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.UpdateBlockContent(context.Background(), "missing", "x")
	assert.True(t, model.IsNotFound(err), "got %v", err)
}

func TestUpdateBlockParent_SwitchesColumns(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	q := mustAddPage(t, s, "Q")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "b", 1, model.OnPage(p))

	// Page -> block
	require.NoError(t, s.UpdateBlockParent(ctx, b, model.UnderBlock(a)))
	got, err := s.GetBlock(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, got.PageID)
	assert.Equal(t, a, got.ParentBlockID)
	assert.Equal(t, "b", got.Content)
	assert.Equal(t, int64(1), got.Position)

	// Block -> other page
	require.NoError(t, s.UpdateBlockParent(ctx, b, model.OnPage(q)))
	got, err = s.GetBlock(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, q, got.PageID)
	assert.Empty(t, got.ParentBlockID)

	// Index tags follow the move.
	var pageTag, parentTag sql.NullString
	require.NoError(t, s.DB().QueryRowContext(ctx,
		"SELECT page_id, parent_block_id FROM blocks_fts WHERE block_id = ?", b,
	).Scan(&pageTag, &parentTag))
	assert.Equal(t, q, pageTag.String)
	assert.False(t, parentTag.Valid)
	requireInSync(t, s)
}

func TestUpdateBlockParent_Errors(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "b", 0, model.UnderBlock(a))
	c := mustAddBlock(t, s, "c", 0, model.UnderBlock(b))

	tests := []struct {
		name   string
		id     string
		parent model.Parent
		check  func(error) bool
	}{
		{"no parent", a, model.Parent{}, model.IsInvalidArgument},
		{"two parents", a, model.Parent{PageID: p, BlockID: b}, model.IsInvalidArgument},
		{"missing block", "missing", model.OnPage(p), model.IsNotFound},
		{"missing page", a, model.OnPage("missing"), model.IsNotFound},
		{"missing parent block", a, model.UnderBlock("missing"), model.IsNotFound},
		{"self", a, model.UnderBlock(a), model.IsInvalidArgument},
		{"descendant", a, model.UnderBlock(c), model.IsInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpdateBlockParent(ctx, tt.id, tt.parent)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	// Nothing moved.
	got, err := s.GetBlock(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, p, got.PageID)
	assert.Empty(t, got.ParentBlockID)
}

func TestExactlyOneParentInvariant(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "b", 0, model.UnderBlock(a))
	require.NoError(t, s.UpdateBlockParent(ctx, b, model.OnPage(p)))
	require.NoError(t, s.UpdateBlockParent(ctx, a, model.UnderBlock(b)))

	var violations int
	require.NoError(t, s.DB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM blocks
		WHERE (page_id IS NULL) = (parent_block_id IS NULL)
	`).Scan(&violations))
	assert.Zero(t, violations)

	// The CHECK constraint rejects writes that bypass the API.
	_, err := s.DB().ExecContext(ctx,
		"INSERT INTO blocks (block_id, content, page_id, parent_block_id, position) VALUES ('x', 'x', ?, ?, 0)",
		p, a,
	)
	assert.Error(t, err)
	_, err = s.DB().ExecContext(ctx,
		"INSERT INTO blocks (block_id, content, position) VALUES ('y', 'y', 0)",
	)
	assert.Error(t, err)
}

func TestDeleteBlock_CascadesToDescendants(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "alpha", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "beta", 0, model.UnderBlock(a))
	c := mustAddBlock(t, s, "gamma", 0, model.UnderBlock(b))
	sibling := mustAddBlock(t, s, "delta", 1, model.OnPage(p))

	require.NoError(t, s.DeleteBlock(ctx, a))

	for _, id := range []string{a, b, c} {
		_, err := s.GetBlock(ctx, id)
		assert.True(t, model.IsNotFound(err), "block %s: got %v", id, err)
	}
	_, err := s.GetBlock(ctx, sibling)
	assert.NoError(t, err)

	assert.Empty(t, searchBlockIDs(t, s, "beta"))
	assert.Empty(t, searchBlockIDs(t, s, "gamma"))
	stats := requireInSync(t, s)
	assert.Equal(t, 1, stats.Blocks)
}

func TestDeleteBlock_UnrelatedPageDeleteKeepsTree(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "b", 0, model.UnderBlock(a))

	other := mustAddPage(t, s, "Other")
	mustAddBlock(t, s, "sibling elsewhere", 0, model.OnPage(other))
	require.NoError(t, s.DeletePage(ctx, other))

	for _, id := range []string{a, b} {
		_, err := s.GetBlock(ctx, id)
		assert.NoError(t, err)
	}
}

func TestDeleteBlock_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.DeleteBlock(context.Background(), "missing")
	assert.True(t, model.IsNotFound(err), "got %v", err)
}

func TestMovedSubtreeFollowsNewPageOnDelete(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	q := mustAddPage(t, s, "Q")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "b", 0, model.UnderBlock(a))
	require.NoError(t, s.UpdateBlockParent(ctx, a, model.OnPage(q)))

	require.NoError(t, s.DeletePage(ctx, p))
	blocks, err := s.ListBlocksByPage(ctx, q)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	require.NoError(t, s.DeletePage(ctx, q))
	_, err = s.GetBlock(ctx, b)
	assert.True(t, model.IsNotFound(err))
	requireInSync(t, s)
}

func TestBlockCreatedAt_FromClock(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "a", 0, model.OnPage(p))

	page, err := s.GetPage(ctx, p)
	require.NoError(t, err)
	block, err := s.GetBlock(ctx, a)
	require.NoError(t, err)

	if diff := cmp.Diff(page.CreatedAt.Add(time.Second), block.CreatedAt); diff != "" {
		t.Errorf("block created_at mismatch (-want +got):\n%s", diff)
	}
}
