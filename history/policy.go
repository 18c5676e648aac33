// Package history bounds the memory used by a canvas command log.
//
// The canvas never forgets commands on its own. A Policy is applied by the
// owner of the canvas, typically after every edit:
//
//	policy := history.Policy{MaxCommands: 500}
//	if canvas.DrawPixels(pixels) {
//		policy.Enforce(canvas)
//	}
package history

import "github.com/gogpu/pixcil"

// DefaultMaxCommands is the bound used by the command-line tools.
const DefaultMaxCommands = 1000

// Policy keeps at most MaxCommands commands in a canvas history.
// A zero or negative MaxCommands disables the bound.
type Policy struct {
	MaxCommands int
}

// Enforce forgets the oldest commands of c until the bound holds and
// returns how many were forgotten.
func (p Policy) Enforce(c *pixcil.Canvas) int {
	if p.MaxCommands <= 0 {
		return 0
	}
	n := 0
	for c.HistoryLen() > p.MaxCommands && c.ForgetOldest() {
		n++
	}
	if n > 0 {
		pixcil.Logger().Debug("history trimmed", "forgotten", n, "len", c.HistoryLen())
	}
	return n
}
