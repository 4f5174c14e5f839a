package fnbound

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGroundTruth reports that a binary's truth table could not be
	// opened or read. It is fatal for the whole run.
	ErrMissingGroundTruth = errors.New("missing ground truth")

	// ErrAlignmentIndeterminate reports that neither 16-byte nor 2-byte
	// alignment reaches the 90% threshold. Scoring continues with Align1.
	ErrAlignmentIndeterminate = errors.New("alignment indeterminate")
)

// NumberError is returned by ParseInt and ParseAddress for a token that is
// not a number in any accepted form.
type NumberError struct {
	Token string
	Err   error
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("invalid number %q: %v", e.Token, e.Err)
}

func (e *NumberError) Unwrap() error { return e.Err }

// MalformedRecordError describes a data line that was skipped.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d %q: %s: %v", e.Line, e.Text, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// HeaderError describes a truth table whose "text" header cannot be parsed.
// The binary it belongs to cannot be scored.
type HeaderError struct {
	Text string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("malformed text header %q: %v", e.Text, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// IsMalformedRecord reports whether err is, or wraps, a MalformedRecordError.
func IsMalformedRecord(err error) bool {
	var e *MalformedRecordError
	return errors.As(err, &e)
}

// IsHeaderError reports whether err is, or wraps, a HeaderError.
func IsHeaderError(err error) bool {
	var e *HeaderError
	return errors.As(err, &e)
}
