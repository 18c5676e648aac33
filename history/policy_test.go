package history

import (
	"testing"

	"github.com/gogpu/pixcil"
)

func drawN(c *pixcil.Canvas, n int) {
	for i := range n {
		c.DrawPixels([]pixcil.Pixel{pixcil.NewPixel(pixcil.Pos(int16(i), 0), pixcil.Red)})
	}
}

func TestPolicy_Enforce(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		edits     int
		undos     int
		forgotten int
		wantLen   int
		wantTail  int
	}{
		{"unbounded", 0, 5, 0, 0, 5, 5},
		{"within bound", 10, 5, 0, 0, 5, 5},
		{"trim", 3, 5, 0, 2, 3, 3},
		{"trim keeps redo", 3, 5, 1, 2, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pixcil.NewCanvas()
			drawN(c, tt.edits)
			for range tt.undos {
				c.Undo()
			}
			if got := (Policy{MaxCommands: tt.max}).Enforce(c); got != tt.forgotten {
				t.Errorf("Enforce() = %d, want %d", got, tt.forgotten)
			}
			if c.HistoryLen() != tt.wantLen || c.Tail() != tt.wantTail {
				t.Errorf("len=%d tail=%d, want len=%d tail=%d", c.HistoryLen(), c.Tail(), tt.wantLen, tt.wantTail)
			}
		})
	}
}

func TestPolicy_EnforceKeepsPixels(t *testing.T) {
	c := pixcil.NewCanvas()
	drawN(c, 4)
	Policy{MaxCommands: 1}.Enforce(c)
	if c.PixelCount() != 4 {
		t.Errorf("PixelCount() = %d, want 4", c.PixelCount())
	}
	if !c.Undo() || c.Undo() {
		t.Error("only the newest command should remain undoable")
	}
}
