package pixcil

import (
	"fmt"
	"slices"
)

// Command is one atomic, reversible edit.
//
// Erase lists the pixels removed from the store and Draw the pixels
// added to it. Both lists are sorted ascending by position and contain no
// duplicate positions.
type Command struct {
	Erase []Pixel
	Draw  []Pixel
}

// IsEmpty reports whether c changes nothing.
func (c Command) IsEmpty() bool {
	return len(c.Erase) == 0 && len(c.Draw) == 0
}

// validate checks the sorted, duplicate-free list invariant.
func (c Command) validate() error {
	if !isSortedUnique(c.Erase) {
		return fmt.Errorf("erase list not sorted or has duplicates")
	}
	if !isSortedUnique(c.Draw) {
		return fmt.Errorf("draw list not sorted or has duplicates")
	}
	return nil
}

// newCommand builds a normalized command from unsorted erase and draw lists.
//
// Erase is deduplicated. A pixel that appears identically in both lists
// is dropped from both: erasing and redrawing the same color is a no-op.
func newCommand(erase, draw []Pixel) Command {
	slices.SortStableFunc(erase, comparePixels)
	erase = slices.CompactFunc(erase, func(a, b Pixel) bool { return a.Position == b.Position })
	draw = sortPixels(draw)

	var e, d []Pixel
	i, j := 0, 0
	for i < len(erase) && j < len(draw) {
		switch c := erase[i].Position.Compare(draw[j].Position); {
		case c < 0:
			e = append(e, erase[i])
			i++
		case c > 0:
			d = append(d, draw[j])
			j++
		default:
			if erase[i].Color != draw[j].Color {
				e = append(e, erase[i])
				d = append(d, draw[j])
			}
			i++
			j++
		}
	}
	e = append(e, erase[i:]...)
	d = append(d, draw[j:]...)
	return Command{Erase: e, Draw: d}
}

// CommandLog is the undo/redo history.
//
// Commands at indices below Tail are applied; commands at or above Tail
// can be redone. Pushing a new command discards the redoable suffix.
type CommandLog struct {
	commands []Command
	tail     int
}

// Len returns the number of commands, applied or not.
func (l *CommandLog) Len() int { return len(l.commands) }

// Tail returns the cursor separating applied from redoable commands.
func (l *CommandLog) Tail() int { return l.tail }

// At returns the i-th command.
func (l *CommandLog) At(i int) Command { return l.commands[i] }

// Commands returns a copy of the command slice.
func (l *CommandLog) Commands() []Command {
	return slices.Clone(l.commands)
}

// CanUndo reports whether an applied command exists.
func (l *CommandLog) CanUndo() bool { return l.tail > 0 }

// CanRedo reports whether a redoable command exists.
func (l *CommandLog) CanRedo() bool { return l.tail < len(l.commands) }

// push truncates the redoable suffix and appends cmd without applying it.
func (l *CommandLog) push(cmd Command) {
	clear(l.commands[l.tail:])
	l.commands = append(l.commands[:l.tail], cmd)
}

// forgetOldest drops the first command. When nothing is applied the whole
// log goes: every later command was recorded on top of the first one and
// could no longer be redone.
func (l *CommandLog) forgetOldest() bool {
	if len(l.commands) == 0 {
		return false
	}
	if l.tail == 0 {
		clear(l.commands)
		l.commands = l.commands[:0]
		return true
	}
	l.commands[0] = Command{}
	l.commands = l.commands[1:]
	l.tail--
	return true
}
