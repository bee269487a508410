package vecdb

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by intent, independent of the underlying
// sentinel error. Callers that need to map errors onto a transport status
// code (HTTP, gRPC, ...) should switch on Kind rather than on error
// strings.
type Kind int

const (
	// KindInternal covers unexpected conditions and persistence failures
	// that were logged rather than propagated.
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindPrecondition
)

// String renders the kind for logging; it is not part of any API contract
// callers should match against.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	default:
		return "internal"
	}
}

// Sentinel errors. Wrap one of these with wrapErr to produce a *StoreError
// carrying operation context; errors.Is still matches the sentinel.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name exceeds maximum length")
	ErrDescriptionLength = errors.New("description must be between 1 and 1000 characters")
	ErrDuplicateName     = errors.New("name already in use within this scope")
	ErrNoChangedFields   = errors.New("no valid updates provided")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmptyEmbedding    = errors.New("embedding cannot be empty")
	ErrEmptyText         = errors.New("chunk text cannot be empty")
	ErrInvalidIndexType  = errors.New("invalid index type")
	ErrInvalidLSHParams  = errors.New("invalid LSH parameters")
	ErrIndexNotBuilt     = errors.New("index is not built")
	ErrInvalidK          = errors.New("k must be between 1 and 100")
	ErrInvalidRegex      = errors.New("invalid regular expression in filter")
	ErrStoreClosed       = errors.New("store is closed")
)

// StoreError wraps an error with the operation that produced it and the
// Kind a caller should treat it as, so callers can branch on failure
// category without string-matching error messages.
type StoreError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("vecdb: %v", e.Err)
	}
	return fmt.Sprintf("vecdb: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return errors.Is(e.Err, target) }

// wrapErr wraps err with operation context and a Kind. Returns nil if err
// is nil so call sites can write `return wrapErr(...)` unconditionally.
func wrapErr(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err
// was not produced by this package.
func KindOf(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
