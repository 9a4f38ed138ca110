package trainpack

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when no manifest rows survive filtering.
// The run fails before the store is created rather than emitting a
// zero-record database with a degenerate class count.
var ErrEmptyDataset = errors.New("no records survive filtering")

// SampleReadError indicates a sample or mask file could not be read.
// A read failure aborts the whole run: skipping the sample would silently
// desynchronize sequential keys from the manifest.
//
// The original underlying error can be accessed via errors.Unwrap.
type SampleReadError struct {
	Path  string
	Index int
	cause error
}

func (e *SampleReadError) Error() string {
	return fmt.Sprintf("read sample %d (%s): %v", e.Index, e.Path, e.cause)
}

func (e *SampleReadError) Unwrap() error { return e.cause }
