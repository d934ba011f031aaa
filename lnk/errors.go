package lnk

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ErrMalformed is matched by every error returned from Parse.
var ErrMalformed = errors.Errorf("malformed shortcut")

// MalformedError describes where decoding a shortcut stopped.
type MalformedError struct {
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed shortcut at offset %d: %s", e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// malformed wraps a MalformedError with the stack of its caller
func malformed(offset int, format string, args ...interface{}) error {
	return errors.Wrap(&MalformedError{
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
	}, 1)
}
