package domain

import "testing"

// TestPositionAlign verifies the placement mapping for every position.
func TestPositionAlign(t *testing.T) {
	tests := []struct {
		pos           Position
		wantH         HAlign
		wantV         VAlign
		clockRelative bool
	}{
		{PositionTopLeft, AlignStart, AlignTop, false},
		{PositionTopCenter, AlignCenter, AlignTop, false},
		{PositionTopRight, AlignEnd, AlignTop, false},
		{PositionBottomLeft, AlignStart, AlignBottom, false},
		{PositionBottomCenter, AlignCenter, AlignBottom, false},
		{PositionBottomRight, AlignEnd, AlignBottom, false},
		{PositionAboveClock, AlignCenter, AlignTop, true},
		{PositionUnderClock, AlignCenter, AlignTop, true},
	}

	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			h, v := tt.pos.Align()
			if h != tt.wantH {
				t.Errorf("HAlign: expected %v, got %v", tt.wantH, h)
			}
			if v != tt.wantV {
				t.Errorf("VAlign: expected %v, got %v", tt.wantV, v)
			}
			if tt.pos.ClockRelative() != tt.clockRelative {
				t.Errorf("ClockRelative: expected %v", tt.clockRelative)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	if got := PositionBottomRight.String(); got != "bottom-right" {
		t.Errorf("expected 'bottom-right', got %q", got)
	}
	if got := Position(99).String(); got != "top-center" {
		t.Errorf("unknown position should render as 'top-center', got %q", got)
	}
}
