package pixcil

import "github.com/google/uuid"

// DefaultFrameSize is the width and height of the default frame region.
const DefaultFrameSize = 64

// MaxUnitSize is the largest minimum pixel size a workspace may use.
const MaxUnitSize = 256

// Config is the persisted, non-pixel part of a workspace.
type Config struct {
	ID   uuid.UUID
	Name string

	// UnitSize is the minimum pixel size: the grid granularity pointer
	// positions are snapped to before marking. Always in [1, MaxUnitSize].
	UnitSize uint16

	// Color is the current drawing color.
	Color RGBA

	// FillRectangle and FillEllipse select filled shapes instead of outlines.
	FillRectangle bool
	FillEllipse   bool

	// CurrentFrame and CurrentLayer select the frame/layer being edited.
	CurrentFrame uint16
	CurrentLayer uint16

	Addressing *Addressing
}

// DefaultConfig returns the configuration of a fresh workspace.
func DefaultConfig() Config {
	return Config{
		ID:         uuid.New(),
		Name:       "untitled",
		UnitSize:   1,
		Color:      Black,
		Addressing: NewAddressing(NewRegion(Pos(0, 0), Pos(DefaultFrameSize, DefaultFrameSize))),
	}
}
