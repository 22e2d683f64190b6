// Package errs defines the sentinel errors returned by the eventcode packages.
//
// Every failure of the codec is a deterministic precondition failure: a domain
// that does not match its configuration, a field that does not fit its reserved
// width, or a persisted artifact that does not belong to the domain it is being
// used with. None of them are transient and none should be retried.
//
// Callers match errors with errors.Is; the packages wrap the sentinels with
// fmt.Errorf("%w: ...") to add the offending value to the message.
package errs

import (
	"errors"
	"fmt"
)

// Codec precondition errors.
var (
	// ErrDomainMismatch is returned when an input series does not match the configured year range or grid size.
	ErrDomainMismatch = errors.New("input does not match the configured domain")
	// ErrEmptyDomain is returned when there are no distinct values to compact.
	ErrEmptyDomain = errors.New("no distinct values to compact")
	// ErrOccurrenceCountOverflow is returned when a severity sequence would exceed the exact integer range.
	ErrOccurrenceCountOverflow = errors.New("occurrence count exceeds exact integer range")
	// ErrWidthOverflow is returned when packed fields exceed the exactly representable digit count.
	ErrWidthOverflow = errors.New("packed key width exceeds exact integer range")
)

// Encoder input errors.
var (
	ErrNoOccurrences      = errors.New("severity sequence has no occurrences")
	ErrSeverityOutOfRange = errors.New("severity class out of range")
	ErrFieldCountMismatch = errors.New("field count does not match layout")
	ErrCodeNotFound       = errors.New("raw code not present in key table")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Persistence errors.
var (
	ErrInvalidHeaderSize          = errors.New("invalid header size")
	ErrInvalidMagic               = errors.New("invalid magic number")
	ErrInvalidHeaderFlags         = errors.New("invalid header flags")
	ErrInvalidPayload             = errors.New("invalid payload")
	ErrChecksumMismatch           = errors.New("payload checksum mismatch")
	ErrDomainFingerprintMismatch  = errors.New("artifact was built for a different domain")
	ErrUnsupportedCompressionType = errors.New("unsupported compression type")
	ErrRunNotFound                = errors.New("build run not found")
	ErrRunExists                  = errors.New("build run already stored")
)

// WidthError reports a field whose required width does not fit the width available to it.
//
// It matches ErrWidthOverflow with errors.Is.
type WidthError struct {
	// Field names the offending field, e.g. "unit" or "fire-year".
	Field string
	// Required is the number of digits (or bits) the field needs.
	Required int
	// Available is the number of digits (or bits) left for the field.
	Available int
	// Unit describes what Required and Available count, e.g. "base-10 digits".
	Unit string
}

func (e *WidthError) Error() string {
	unit := e.Unit
	if unit == "" {
		unit = "digits"
	}

	return fmt.Sprintf("%s: field %q requires %d %s, %d available", ErrWidthOverflow, e.Field, e.Required, unit, e.Available)
}

// Unwrap lets errors.Is match ErrWidthOverflow.
func (e *WidthError) Unwrap() error {
	return ErrWidthOverflow
}
