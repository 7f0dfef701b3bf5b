package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrModelNotFound    = errors.New("model not found")
	ErrModelMalformed   = errors.New("model malformed")
)

// ModelNotFoundError reports a missing persisted model for a prefix.
type ModelNotFoundError struct {
	Kind   string // "phrase", "lda", ...
	Prefix string
	Err    error // underlying cause, may be nil
}

func (e *ModelNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s model %q not found: %v", e.Kind, e.Prefix, e.Err)
	}
	return fmt.Sprintf("%s model %q not found", e.Kind, e.Prefix)
}

// Is matches ErrModelNotFound and the broader ErrNotFound.
func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound || target == ErrNotFound
}

func (e *ModelNotFoundError) Unwrap() error { return e.Err }

// ModelMalformedError reports a persisted model that exists but cannot be decoded.
type ModelMalformedError struct {
	Kind   string
	Prefix string
	Err    error
}

func (e *ModelMalformedError) Error() string {
	return fmt.Sprintf("%s model %q malformed: %v", e.Kind, e.Prefix, e.Err)
}

func (e *ModelMalformedError) Is(target error) bool {
	return target == ErrModelMalformed
}

func (e *ModelMalformedError) Unwrap() error { return e.Err }
