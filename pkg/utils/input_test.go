package utils

import (
	"testing"
)

func TestPointerTrackerSequence(t *testing.T) {
	pt := NewPointerTracker()

	tests := []struct {
		name    string
		pressed bool
		x, y    int
		want    []PointerPhase
	}{
		{"idle", false, 10, 10, nil},
		{"press", true, 10, 10, []PointerPhase{PointerDown}},
		{"hold still", true, 10, 10, nil},
		{"drag", true, 15, 12, []PointerPhase{PointerMove}},
		{"release", false, 15, 12, []PointerPhase{PointerUp}},
		{"idle after release", false, 20, 20, nil},
	}

	for _, tt := range tests {
		events := pt.Feed(tt.pressed, tt.x, tt.y)
		if len(events) != len(tt.want) {
			t.Fatalf("%s: expected %d events, got %d", tt.name, len(tt.want), len(events))
		}
		for i, e := range events {
			if e.Phase != tt.want[i] {
				t.Errorf("%s: event %d phase = %v, want %v", tt.name, i, e.Phase, tt.want[i])
			}
			if e.X != float64(tt.x) || e.Y != float64(tt.y) {
				t.Errorf("%s: event at (%v, %v), want (%d, %d)", tt.name, e.X, e.Y, tt.x, tt.y)
			}
		}
		if pt.IsPressed() != tt.pressed {
			t.Errorf("%s: IsPressed = %v, want %v", tt.name, pt.IsPressed(), tt.pressed)
		}
	}
}

func TestPointerTrackerPosition(t *testing.T) {
	pt := NewPointerTracker()
	pt.Feed(true, 3, 4)
	if x, y := pt.Position(); x != 3 || y != 4 {
		t.Errorf("Position() = (%d, %d), want (3, 4)", x, y)
	}
}
