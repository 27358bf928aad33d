package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/search"
	"github.com/roach88/outliner/internal/testutil"
)

// createTestStore opens a fresh store with deterministic ids and clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path,
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDGenerator(testutil.NewSequentialIDs("")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustAddPage(t *testing.T, s *Store, title string) string {
	t.Helper()
	id, err := s.AddPage(context.Background(), title)
	require.NoError(t, err)
	return id
}

func mustAddBlock(t *testing.T, s *Store, content string, position int64, parent model.Parent) string {
	t.Helper()
	id, err := s.AddBlock(context.Background(), content, position, parent)
	require.NoError(t, err)
	return id
}

func searchPageIDs(t *testing.T, s *Store, text string) []string {
	t.Helper()
	pages, err := s.SearchPages(context.Background(), search.Query{Text: text})
	require.NoError(t, err)
	ids := []string{}
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids
}

func searchBlockIDs(t *testing.T, s *Store, text string) []string {
	t.Helper()
	blocks, err := s.SearchBlocks(context.Background(), search.Query{Text: text})
	require.NoError(t, err)
	ids := []string{}
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	return ids
}

// requireInSync fails when the index and primary tables disagree.
func requireInSync(t *testing.T, s *Store) model.StoreStats {
	t.Helper()
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	require.True(t, stats.InSync(), "index drifted: %+v", stats)
	return stats
}
