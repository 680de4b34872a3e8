package ingest

import (
	"errors"
	"fmt"
)

// FieldValidationError reports a single row that failed transformation. It is
// recoverable: the pipeline records it on the job and keeps going.
type FieldValidationError struct {
	Key    string // natural key of the row (LCID, or positional fallback)
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// SourceFormatError means the source could not be parsed as tabular data at
// all. It aborts the whole run.
type SourceFormatError struct {
	Cause error
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("source is not parseable as tabular data: %v", e.Cause)
}

func (e *SourceFormatError) Unwrap() error { return e.Cause }

// StoreWriteError means a bulk insert or job update failed. It aborts the
// whole run; prior batches' writes are not rolled back.
type StoreWriteError struct {
	Op    string
	Cause error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed during %s: %v", e.Op, e.Cause)
}

func (e *StoreWriteError) Unwrap() error { return e.Cause }

// IsRowError reports whether err is a per-row validation failure rather than
// a run-fatal one.
func IsRowError(err error) bool {
	var fv *FieldValidationError
	return errors.As(err, &fv)
}

func newFieldError(key, field, format string, args ...any) *FieldValidationError {
	return &FieldValidationError{Key: key, Field: field, Reason: fmt.Sprintf(format, args...)}
}
