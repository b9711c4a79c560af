// Package errors defines the typed error taxonomy used across the engine:
// pre-walk failures that abort a query before any goroutine is spawned, and
// in-walk failures that are non-fatal and travel as Error-kind stream results.
package errors

import (
	"fmt"
	"time"
)

// InvalidPatternError reports a glob or regex that failed to compile.
// Raised at query construction; no traversal is performed.
type InvalidPatternError struct {
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

func NewInvalidPatternError(pattern string, err error) *InvalidPatternError {
	return &InvalidPatternError{Pattern: pattern, Underlying: err, Timestamp: time.Now()}
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Underlying)
}

func (e *InvalidPatternError) Unwrap() error { return e.Underlying }

// InvalidArgumentError reports a bad sort key, empty root list, unknown
// file-type code, or other construction-time argument problem.
type InvalidArgumentError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewInvalidArgumentError(field, value string, err error) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *InvalidArgumentError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("invalid argument %s=%q: %v", e.Field, e.Value, e.Underlying)
	}
	return fmt.Sprintf("invalid argument %s=%q", e.Field, e.Value)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Underlying }

// EntryError reports a directory entry that could not be read (permission
// denied, broken symlink, a file removed between readdir and stat). Non-fatal.
type EntryError struct {
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewEntryError(op, path string, err error) *EntryError {
	return &EntryError{Path: path, Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *EntryError) Unwrap() error { return e.Underlying }

// OpenError reports a file that passed every predicate but could not be
// opened for content search. Non-fatal.
type OpenError struct {
	Path       string
	Underlying error
	Timestamp  time.Time
}

func NewOpenError(path string, err error) *OpenError {
	return &OpenError{Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open failed for %s: %v", e.Path, e.Underlying)
}

func (e *OpenError) Unwrap() error { return e.Underlying }

// SearchError reports a content search that failed mid-file after the file
// was opened successfully. Non-fatal for subsequent files.
type SearchError struct {
	Path       string
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

func NewSearchError(path, pattern string, err error) *SearchError {
	return &SearchError{Path: path, Pattern: pattern, Underlying: err, Timestamp: time.Now()}
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search of %s for pattern %q failed: %v", e.Path, e.Pattern, e.Underlying)
}

func (e *SearchError) Unwrap() error { return e.Underlying }

// CancelledError is the internal sentinel producers check for after the
// consumer closes its iterator or its context is cancelled. It is never
// surfaced to the consumer as a stream result.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "query cancelled" }

// ErrCancelled is the shared CancelledError instance.
var ErrCancelled = &CancelledError{}
