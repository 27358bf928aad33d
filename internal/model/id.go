package model

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// IDGenerator produces opaque entity ids.
type IDGenerator interface {
	NewID() string
}

// RandomHex generates page and block ids: 32 lowercase hex characters
// encoding a random (version 4) UUID.
//
// Thread-safety: RandomHex is stateless and safe for concurrent use.
type RandomHex struct{}

// NewID returns a fresh id such as "9f1c2e0d4b6a4c8e8d3f1a2b3c4d5e6f".
func (RandomHex) NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// UUIDv7 generates time-sortable registry ids.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// NewID returns a hyphenated UUIDv7 string (36 characters).
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string { return f() }
