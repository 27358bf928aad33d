package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow feeds fixed values to Scan destinations, converting the way
// database/sql would for the types used here.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		v := r.values[i]
		switch d := d.(type) {
		case *string:
			*d = v.(string)
		case *int64:
			*d = v.(int64)
		case interface{ Scan(any) error }:
			if err := d.Scan(v); err != nil {
				return err
			}
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func TestScanBlock_NullableParents(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	row := fakeRow{values: []any{"b1", "hello", "p1", nil, int64(2), created}}

	b, err := ScanBlock(row)
	require.NoError(t, err)
	assert.Equal(t, Block{ID: "b1", Content: "hello", PageID: "p1", Position: 2, CreatedAt: created}, b)
	assert.Equal(t, OnPage("p1"), b.Parent())
}

func TestScanPage_TextTimestamp(t *testing.T) {
	row := fakeRow{values: []any{"p1", "Title", "2023-01-01 00:00:00"}}

	p, err := ScanPage(row)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), p.CreatedAt)
}

func TestScanWorkspace(t *testing.T) {
	row := fakeRow{values: []any{int64(0), "Default", []byte{0x42, 0x85, 0xF4}}}

	w, err := ScanWorkspace(row)
	require.NoError(t, err)
	assert.Equal(t, Workspace{ID: 0, Name: "Default", Color: DefaultWorkspaceColor}, w)
}

func TestScan_PropagatesError(t *testing.T) {
	_, err := ScanDatabaseEntry(fakeRow{err: errors.New("no rows")})
	assert.EqualError(t, err, "no rows")
}

func TestTimestamp_Formats(t *testing.T) {
	want := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	for _, in := range []any{
		"2024-02-03 04:05:06+00:00",
		"2024-02-03T04:05:06Z",
		"2024-02-03 04:05:06",
		[]byte("2024-02-03T04:05:06"),
		want,
	} {
		var got time.Time
		require.NoError(t, Timestamp(&got).Scan(in), "input %v", in)
		assert.True(t, want.Equal(got), "input %v: got %v", in, got)
	}

	var got time.Time
	assert.Error(t, Timestamp(&got).Scan("yesterday"))
	assert.Error(t, Timestamp(&got).Scan(42))
}

func TestNullString(t *testing.T) {
	assert.False(t, NullString("").Valid)
	assert.True(t, NullString("x").Valid)
}
