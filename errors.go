package rofdump

import (
	"errors"
	"fmt"
)

// FormatErrorKind classifies a FormatError.
type FormatErrorKind int

const (
	// BadMagic means the file does not start with Magic.
	BadMagic FormatErrorKind = iota + 1
	// Truncated means a field could not be read in full.
	Truncated
	// DivisionByZero means the header records zero points, so the channel
	// count cannot be derived.
	DivisionByZero
	// Inconsistent means the data region disagrees with the header.
	Inconsistent
)

func (k FormatErrorKind) String() string {
	switch k {
	case BadMagic:
		return "bad magic"
	case Truncated:
		return "truncated"
	case DivisionByZero:
		return "division by zero"
	case Inconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is. A FormatError matches the sentinel of
// the same kind regardless of its field and detail.
var (
	ErrBadMagic       = &FormatError{Kind: BadMagic}
	ErrTruncated      = &FormatError{Kind: Truncated}
	ErrDivisionByZero = &FormatError{Kind: DivisionByZero}
	ErrInconsistent   = &FormatError{Kind: Inconsistent}
)

// FormatError reports an ROF file that cannot be decoded.
type FormatError struct {
	Kind FormatErrorKind
	// Field names the part of the file being read, e.g. "period".
	Field string
	// Detail is an optional human readable explanation.
	Detail string
}

func (e *FormatError) Error() string {
	msg := "rof: " + e.Kind.String()
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is a FormatError of the same kind.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

// NewTruncatedError creates a Truncated error for the named field.
func NewTruncatedError(field string, want, got int) error {
	return &FormatError{
		Kind:   Truncated,
		Field:  field,
		Detail: fmt.Sprintf("expected %d bytes, got %d", want, got),
	}
}

// IOError reports a failure to open, seek or stat the byte source.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rof: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rof: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
