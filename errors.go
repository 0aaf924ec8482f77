// errors.go
//
// Error taxonomy shared by the compare, merge, and archive-record code paths.
// Every failure surfaces to the immediate caller as a typed error that can be
// matched with errors.Is against one of the sentinels below; the structured
// variants carry the diagnostic details a user needs to act on the failure.

package logfile

import (
	"errors"
	"fmt"
)

// Argument and I/O errors.
var (
	// ErrInvalidArguments reports a wrong argument count or shape.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrFileAccess reports an unreadable input or an unwritable output.
	ErrFileAccess = errors.New("file access error")
)

// Compare and merge errors.
var (
	// ErrDiffComputation reports that the line alignment could not be produced.
	ErrDiffComputation = errors.New("diff computation failed")

	// ErrComparisonFailed reports that one of the two comparisons of a
	// three-way merge failed.
	ErrComparisonFailed = errors.New("comparison failed")

	// ErrOverlapConflict reports that two descendants edited overlapping
	// ranges of the ancestor.
	ErrOverlapConflict = errors.New("overlapping edits")
)

// Format errors.
var (
	ErrChecksumMismatch  = errors.New("bad logfile checksum")
	ErrMalformedLabel    = errors.New("malformed label revision string")
	ErrCorruptEditScript = errors.New("corrupt edit script")
	ErrUnknownEditType   = errors.New("unknown edit type")
	ErrEditOutOfRange    = errors.New("edit lies outside the base file")
)

// OverlapError identifies the two merged edits whose affected ranges
// intersect. It unwraps to ErrOverlapConflict.
type OverlapError struct {
	// Previous is the edit that was accepted first in merge order.
	Previous *MergedEdit

	// Current is the edit whose seek position falls inside Previous.
	Current *MergedEdit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf(
		"overlap detected between %s edit record from file %d at location %d with length %d and %s edit record from file %d at location %d with length %d",
		e.Previous.Type, e.Previous.Source, e.Previous.SeekPosition, e.Previous.AffectedLength(),
		e.Current.Type, e.Current.Source, e.Current.SeekPosition, e.Current.AffectedLength(),
	)
}

func (e *OverlapError) Unwrap() error { return ErrOverlapConflict }

// ChecksumError records the stored and recomputed header checksums. It
// unwraps to ErrChecksumMismatch.
type ChecksumError struct {
	Stored   uint16
	Computed uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: stored %04x computed %04x", ErrChecksumMismatch, e.Stored, e.Computed)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// LabelError describes a revision string that is not an even-length chain of
// dot separated integers. It unwraps to ErrMalformedLabel.
type LabelError struct {
	Revision string
	Reason   string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedLabel, e.Revision, e.Reason)
}

func (e *LabelError) Unwrap() error { return ErrMalformedLabel }
