package wtp

import (
	"errors"

	"github.com/gnolang/wtp/internal/buffer"
)

var (
	// ErrInvalidOperation is returned for edits that cannot be expressed,
	// such as turning a positional argument into a keyword one without a name.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrPrecondition is returned when an edit targets a closed span or a
	// range that does not belong to the edited construct.
	ErrPrecondition = buffer.ErrPrecondition
)
