package alsparse

import (
	"errors"
	"fmt"
)

// FormatError is the single fatal error class of the parser: the input is
// not gzip/xz/plain XML, the decompressed bytes are not UTF-8 text, or the
// XML itself is not well-formed. Schema-level irregularities are never
// FormatErrors; they become Diagnostics on the Result.
type FormatError struct {
	Reason string
	Offset int64 // byte offset into the (decompressed) input, -1 if unknown
	Err    error
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("als: %s at offset %d", e.Reason, e.Offset)
	}
	return "als: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErrf(err error, format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...), Offset: -1, Err: err}
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
