package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
)

func seedSearch(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	entry, err := svc.CreateDatabase(ctx, "Search")
	require.NoError(t, err)

	err = svc.Do(ctx, entry.ID, func(s *docstore.Store) error {
		p, err := s.AddPage(ctx, "Garden plans")
		if err != nil {
			return err
		}
		for i, content := range []string{"plant tomatoes", "garden fence", "water the garden"} {
			if _, err := s.AddBlock(ctx, content, int64(i), model.OnPage(p)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return entry.ID
}

func TestSearch_Types(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t)
	id := seedSearch(t, svc)

	all, err := svc.Search(ctx, id, SearchRequest{Query: "garden"})
	require.NoError(t, err)
	assert.Len(t, all.Pages, 1)
	assert.Len(t, all.Blocks, 2)

	pages, err := svc.Search(ctx, id, SearchRequest{Query: "garden", Type: SearchPages})
	require.NoError(t, err)
	assert.Len(t, pages.Pages, 1)
	assert.NotNil(t, pages.Blocks)
	assert.Empty(t, pages.Blocks)

	blocks, err := svc.Search(ctx, id, SearchRequest{Query: "garden", Type: SearchBlocks, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, blocks.Pages)
	assert.Len(t, blocks.Blocks, 1)
}

func TestSearch_Advanced(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t)
	id := seedSearch(t, svc)

	resp, err := svc.Search(ctx, id, SearchRequest{Query: "garden NOT fence", Type: SearchBlocks, Advanced: true})
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "water the garden", resp.Blocks[0].Content)

	_, err = svc.Search(ctx, id, SearchRequest{Query: "garden NOT", Advanced: true})
	assert.True(t, model.IsInvalidArgument(err), "got %v", err)
}

func TestSearch_InvalidType(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t)
	id := seedSearch(t, svc)

	_, err := svc.Search(ctx, id, SearchRequest{Query: "garden", Type: "everything"})
	assert.True(t, model.IsInvalidArgument(err), "got %v", err)
}

func TestSearch_BlankQuery(t *testing.T) {
	ctx := context.Background()
	svc := createTestService(t)
	id := seedSearch(t, svc)

	resp, err := svc.Search(ctx, id, SearchRequest{Query: "  "})
	require.NoError(t, err)
	assert.Empty(t, resp.Pages)
	assert.Empty(t, resp.Blocks)
}

func TestSearch_UnknownDatabase(t *testing.T) {
	svc := createTestService(t)

	_, err := svc.Search(context.Background(), "missing", SearchRequest{Query: "x"})
	assert.True(t, model.IsNotFound(err), "got %v", err)
}
