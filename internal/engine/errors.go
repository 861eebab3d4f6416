package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is returned when a required query field is absent or blank.
	ErrMissingValue = errors.New("value is required")

	// ErrInvalidFormat is returned when a value fails its kind's format check.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnsupportedRecordType is returned for DNS record types outside the supported set.
	ErrUnsupportedRecordType = errors.New("unsupported record type")

	// ErrNotConfigured is returned by adapters whose credentials or tools are missing.
	ErrNotConfigured = errors.New("source not configured")

	// ErrAssembly marks an unexpected fault while building a response envelope.
	ErrAssembly = errors.New("response assembly failed")
)

// ValidationError reports a malformed query. No adapter runs for such a query.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrMissingValue) {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AssemblyFault wraps a recovered panic or error raised while assembling an envelope.
type AssemblyFault struct {
	Cause string
}

func (e *AssemblyFault) Error() string {
	return fmt.Sprintf("%v: %s", ErrAssembly, e.Cause)
}

func (e *AssemblyFault) Unwrap() error { return ErrAssembly }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
