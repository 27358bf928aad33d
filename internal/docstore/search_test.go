package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
)

func TestSearchAll_LimitAppliesPerKind(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for _, title := range []string{"rust notes", "rust book", "rust talks"} {
		p := mustAddPage(t, s, title)
		mustAddBlock(t, s, "rust paragraph", 0, model.OnPage(p))
		mustAddBlock(t, s, "rust list item", 1, model.OnPage(p))
	}

	pages, blocks, err := s.SearchAll(ctx, search.Query{Text: "rust", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Len(t, blocks, 2)
}

func TestSearch_PrefixMatch(t *testing.T) {
	s := createTestStore(t)

	p := mustAddPage(t, s, "Meeting notes")
	b := mustAddBlock(t, s, "discussed quarterly planning", 0, model.OnPage(p))

	assert.Equal(t, []string{p}, searchPageIDs(t, s, "meet"))
	assert.Equal(t, []string{b}, searchBlockIDs(t, s, "quart plan"))
	assert.Empty(t, searchBlockIDs(t, s, "quart budget"))
}

func TestSearch_BlankQuery(t *testing.T) {
	s := createTestStore(t)
	mustAddPage(t, s, "Anything")

	assert.Empty(t, searchPageIDs(t, s, ""))
	assert.Empty(t, searchPageIDs(t, s, "   "))
}

func TestSearch_RawMode(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	apple := mustAddBlock(t, s, "apple pie", 0, model.OnPage(p))
	banana := mustAddBlock(t, s, "banana bread", 1, model.OnPage(p))
	mustAddBlock(t, s, "cherry tart", 2, model.OnPage(p))

	blocks, err := s.SearchBlocks(ctx, search.Query{Text: "apple OR banana", Raw: true})
	require.NoError(t, err)
	var ids []string
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{apple, banana}, ids)

	_, err = s.SearchBlocks(ctx, search.Query{Text: `"unterminated`, Raw: true})
	assert.True(t, model.IsInvalidArgument(err), "got %v", err)
}

func TestRebuildSearch_RepairsDrift(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "Drifted")
	mustAddBlock(t, s, "lost entry", 0, model.OnPage(p))

	// Simulate drift from a write that bypassed the store.
	_, err := s.DB().ExecContext(ctx, "DELETE FROM blocks_fts")
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.InSync())
	assert.Empty(t, searchBlockIDs(t, s, "lost"))

	stats, err = s.RebuildSearch(ctx)
	require.NoError(t, err)
	assert.True(t, stats.InSync())
	assert.Equal(t, model.StoreStats{
		Workspaces:    1,
		Pages:         1,
		Blocks:        1,
		IndexedPages:  1,
		IndexedBlocks: 1,
	}, stats)
	assert.Len(t, searchBlockIDs(t, s, "lost"), 1)
}
