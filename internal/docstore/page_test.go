package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/testutil"
)

func TestAddPage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id := mustAddPage(t, s, "X")

	page, err := s.GetPage(ctx, id)
	require.NoError(t, err)
	want := model.Page{ID: id, Title: "X", CreatedAt: testutil.Epoch}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("GetPage() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPage_RandomIDShape(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ids.db"))
	require.NoError(t, err)
	defer s.Close()

	id := mustAddPage(t, s, "Random")
	assert.Regexp(t, `^[0-9a-f]{32}$`, id)
}

func TestAddPage_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	mustAddPage(t, s, "Notes")

	_, err := s.AddPage(ctx, "Notes")
	assert.True(t, model.IsAlreadyExists(err), "got %v", err)

	// Titles are case-sensitive.
	_, err = s.AddPage(ctx, "notes")
	assert.NoError(t, err)

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	requireInSync(t, s)
}

func TestAddPage_StoresTitleExactly(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	decomposed := "Cafe\u0301"
	precomposed := "Caf\u00e9"

	id := mustAddPage(t, s, decomposed)
	page, err := s.GetPage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte(decomposed), []byte(page.Title))

	// Byte-distinct titles are distinct pages even when they render alike.
	other := mustAddPage(t, s, precomposed)
	page, err = s.GetPage(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []byte(precomposed), []byte(page.Title))

	_, err = s.AddPage(ctx, decomposed)
	assert.True(t, model.IsAlreadyExists(err), "got %v", err)
	requireInSync(t, s)
}

func TestAddPage_BlankTitle(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id := mustAddPage(t, s, "")
	page, err := s.GetPage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", page.Title)

	_, err = s.AddPage(ctx, "")
	assert.True(t, model.IsAlreadyExists(err), "got %v", err)

	spaced := mustAddPage(t, s, "   ")
	page, err = s.GetPage(ctx, spaced)
	require.NoError(t, err)
	assert.Equal(t, "   ", page.Title)
	requireInSync(t, s)
}

func TestListPages_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)

	var want []string
	for _, title := range []string{"zeta", "alpha", "mid"} {
		mustAddPage(t, s, title)
		want = append(want, title)
	}

	pages, err = s.ListPages(ctx)
	require.NoError(t, err)
	var got []string
	for _, p := range pages {
		got = append(got, p.Title)
	}
	assert.Equal(t, want, got)
}

func TestRenamePage_UpdatesIndex(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id := mustAddPage(t, s, "X")
	require.NoError(t, s.RenamePage(ctx, id, "Y"))

	page, err := s.GetPage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Y", page.Title)

	assert.Empty(t, searchPageIDs(t, s, "X"))
	assert.Equal(t, []string{id}, searchPageIDs(t, s, "Y"))
	requireInSync(t, s)
}

func TestRenamePage_ConflictLeavesPageUntouched(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	first := mustAddPage(t, s, "Groceries")
	mustAddPage(t, s, "Chores")

	err := s.RenamePage(ctx, first, "Chores")
	assert.True(t, model.IsAlreadyExists(err), "got %v", err)

	page, err := s.GetPage(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", page.Title)
	assert.Equal(t, []string{first}, searchPageIDs(t, s, "groceries"))
	requireInSync(t, s)
}

func TestRenamePage_SameTitleIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id := mustAddPage(t, s, "Same")
	require.NoError(t, s.RenamePage(ctx, id, "Same"))

	assert.Equal(t, []string{id}, searchPageIDs(t, s, "same"))
	requireInSync(t, s)
}

func TestRenamePage_Errors(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	err := s.RenamePage(ctx, "missing", "Anything")
	assert.True(t, model.IsNotFound(err), "got %v", err)

	id := mustAddPage(t, s, "Keep")
	mustAddPage(t, s, "Taken")
	err = s.RenamePage(ctx, id, "Taken")
	assert.True(t, model.IsAlreadyExists(err), "got %v", err)
}

func TestRenamePage_KeepsTitleBytes(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id := mustAddPage(t, s, "Caf\u00e9")
	require.NoError(t, s.RenamePage(ctx, id, "Cafe\u0301"))

	page, err := s.GetPage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("Cafe\u0301"), []byte(page.Title))
	requireInSync(t, s)
}

func TestDeletePage_CascadesToSubtree(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	p := mustAddPage(t, s, "P")
	a := mustAddBlock(t, s, "root block", 0, model.OnPage(p))
	b := mustAddBlock(t, s, "nested block", 0, model.UnderBlock(a))
	c := mustAddBlock(t, s, "deeply nested", 0, model.UnderBlock(b))

	require.NoError(t, s.DeletePage(ctx, p))

	_, err := s.GetPage(ctx, p)
	assert.True(t, model.IsNotFound(err))
	for _, id := range []string{a, b, c} {
		_, err := s.GetBlock(ctx, id)
		assert.True(t, model.IsNotFound(err), "block %s: got %v", id, err)
	}

	assert.Empty(t, searchPageIDs(t, s, "P"))
	assert.Empty(t, searchBlockIDs(t, s, "nested"))
	stats := requireInSync(t, s)
	assert.Zero(t, stats.Blocks)
}

func TestDeletePage_LeavesOtherPages(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	keep := mustAddPage(t, s, "Keep")
	kept := mustAddBlock(t, s, "kept block", 0, model.OnPage(keep))
	drop := mustAddPage(t, s, "Drop")
	mustAddBlock(t, s, "dropped block", 0, model.OnPage(drop))

	require.NoError(t, s.DeletePage(ctx, drop))

	_, err := s.GetBlock(ctx, kept)
	assert.NoError(t, err)
	assert.Equal(t, []string{kept}, searchBlockIDs(t, s, "block"))
	requireInSync(t, s)
}

func TestDeletePage_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.DeletePage(context.Background(), "missing")
	assert.True(t, model.IsNotFound(err), "got %v", err)
}
