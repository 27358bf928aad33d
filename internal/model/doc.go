// Package model defines the entity shapes shared by every outliner storage
// component: workspaces, pages, blocks, and database registry entries.
//
// Entities are fixed-shape structs decoded once at the storage boundary
// (see rows.go). Nothing outside this package reads result rows by
// position.
//
// # Identifiers
//
//   - Pages and blocks: 32 lowercase hex characters, 128-bit random
//   - Workspaces: small integers, 0 is the default workspace
//   - Database registry entries: opaque UUIDv7 strings
//
// # Errors
//
// All components report failures as *Error values carrying one of three
// kinds (NotFound, AlreadyExists, InvalidArgument). Match them with
// errors.Is against ErrNotFound, ErrAlreadyExists and ErrInvalidArgument.
package model
