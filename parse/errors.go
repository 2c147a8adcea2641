package parse

import "fmt"

// Error describes a failed extraction. Cause is a human-readable summary
// suitable for logs; Err carries the underlying error when one exists.
type Error struct {
	Format Format
	Cause  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Cause, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Cause)
}

func (e *Error) Unwrap() error { return e.Err }

// failf wraps an underlying error into an *Error.
func failf(format Format, err error, cause string, args ...any) error {
	return &Error{Format: format, Cause: fmt.Sprintf(cause, args...), Err: err}
}
