package pixcil

import (
	"errors"
	"fmt"
)

// ErrInvariant is the sentinel wrapped by every InvariantError.
// An invariant violation is a programming fault: it never results from
// user input when the Canvas API is used correctly.
var ErrInvariant = errors.New("pixcil: invariant violation")

// InvariantError reports a violated pixel store or history invariant.
type InvariantError struct {
	Op       string // "draw", "erase", "region", "restore"
	Position PixelPosition
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("pixcil: %s at %v: %s", e.Op, e.Position, e.Reason)
}

// Unwrap returns ErrInvariant so callers can use errors.Is.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}
