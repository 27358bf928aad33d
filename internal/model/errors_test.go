package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := NotFound("page", "abc")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("rename page: %w", AlreadyExists("page", "Dup"))

	assert.True(t, IsAlreadyExists(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, KindAlreadyExists, KindOf(err))
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, `page "abc" not found`, NotFound("page", "abc").Error())
	assert.Equal(t, `database "notes" already exists`, AlreadyExists("database", "notes").Error())
	assert.Equal(t, "bad parent", InvalidArgument("bad parent").Error())
	assert.Equal(t, "limit -1 out of range", InvalidArgumentf("limit %d out of range", -1).Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("fts5: syntax error near \"(\"")
	err := &Error{Kind: KindInvalidArgument, Message: "invalid search query", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid search query: fts5")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestParent_Validate(t *testing.T) {
	assert.ErrorIs(t, Parent{}.Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, Parent{PageID: "p", BlockID: "b"}.Validate(), ErrInvalidArgument)
	assert.NoError(t, OnPage("p").Validate())
	assert.NoError(t, UnderBlock("b").Validate())

	assert.True(t, OnPage("p").IsPage())
	assert.False(t, UnderBlock("b").IsPage())
}
