package domain

// Position is one of the fixed on-screen placements for the control
// surface. The string form matches the configuration syntax.
type Position int

const (
	PositionTopLeft Position = iota
	PositionTopCenter
	PositionTopRight
	PositionBottomLeft
	PositionBottomCenter
	PositionBottomRight
	PositionAboveClock
	PositionUnderClock
)

// HAlign is a horizontal anchor within a window.
type HAlign int

const (
	AlignStart HAlign = iota
	AlignCenter
	AlignEnd
)

// VAlign is a vertical anchor within a window.
type VAlign int

const (
	AlignTop VAlign = iota
	AlignBottom
)

var positionNames = map[Position]string{
	PositionTopLeft:      "top-left",
	PositionTopCenter:    "top-center",
	PositionTopRight:     "top-right",
	PositionBottomLeft:   "bottom-left",
	PositionBottomCenter: "bottom-center",
	PositionBottomRight:  "bottom-right",
	PositionAboveClock:   "above-clock",
	PositionUnderClock:   "under-clock",
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return "top-center"
}

// ClockRelative reports whether the surface is inserted next to the
// window's clock element instead of being anchored to a window edge.
func (p Position) ClockRelative() bool {
	return p == PositionAboveClock || p == PositionUnderClock
}

// Align returns the window-edge anchors for this position. Clock-relative
// positions report the top-center anchors; callers should check
// ClockRelative first.
func (p Position) Align() (HAlign, VAlign) {
	var h HAlign
	switch p {
	case PositionTopLeft, PositionBottomLeft:
		h = AlignStart
	case PositionTopRight, PositionBottomRight:
		h = AlignEnd
	default:
		h = AlignCenter
	}

	var v VAlign
	switch p {
	case PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		v = AlignBottom
	default:
		v = AlignTop
	}

	return h, v
}
