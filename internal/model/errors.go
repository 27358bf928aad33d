package model

import (
	"errors"
	"fmt"
)

// Kind categorizes storage errors. The API layer translates kinds to
// protocol responses (404, 409, 400).
type Kind string

const (
	// KindNotFound indicates an entity id or name is absent.
	KindNotFound Kind = "NOT_FOUND"

	// KindAlreadyExists indicates a uniqueness violation on a page title or
	// a database name.
	KindAlreadyExists Kind = "ALREADY_EXISTS"

	// KindInvalidArgument indicates a malformed request, such as a block with
	// zero or two parents.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its kind.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the typed error returned by the document store, the search index
// and the registry.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Entity names what was looked up ("page", "block", "workspace",
	// "database"). Empty for InvalidArgument.
	Entity string

	// Key is the id, title or name that failed.
	Key string

	// Message is a human-readable description.
	Message string

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		switch e.Kind {
		case KindNotFound:
			msg = fmt.Sprintf("%s %q not found", e.Entity, e.Key)
		case KindAlreadyExists:
			msg = fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
		default:
			msg = string(e.Kind)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAlreadyExists:
		return e.Kind == KindAlreadyExists
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	}
	return false
}

// NotFound creates a NotFound error for the given entity and key.
func NotFound(entity, key string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Key: key}
}

// AlreadyExists creates an AlreadyExists error for the given entity and key.
func AlreadyExists(entity, key string) *Error {
	return &Error{Kind: KindAlreadyExists, Entity: entity, Key: key}
}

// InvalidArgument creates an InvalidArgument error with a message.
func InvalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

// InvalidArgumentf creates an InvalidArgument error with a formatted message.
func InvalidArgumentf(format string, args ...any) *Error {
	return InvalidArgument(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound returns true if err is a NotFound error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAlreadyExists returns true if err is an AlreadyExists error.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsInvalidArgument returns true if err is an InvalidArgument error.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
