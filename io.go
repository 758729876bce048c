package rofdump

import (
	"errors"
	"io"
)

// ReadExactly fills p from r. A short read is reported as a Truncated error
// for field rather than a zero value; other read errors are returned as is.
func ReadExactly(r io.Reader, p []byte, field string) error {
	n, err := io.ReadFull(r, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NewTruncatedError(field, len(p), n)
	}
	if err != nil {
		return &IOError{Op: "read " + field, Err: err}
	}
	return nil
}
