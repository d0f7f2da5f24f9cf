package systems

import (
	"testing"
	"time"

	"github.com/gonewx/mergepop/pkg/game"
)

func TestInputSystemTapDetection(t *testing.T) {
	tests := []struct {
		name         string
		holdFor      time.Duration
		upX, upY     float64
		wantTapSound bool
		wantSelected bool
	}{
		{"短按同一令牌", 100 * time.Millisecond, 300, 300, true, true},
		{"长按不算点击", 250 * time.Millisecond, 300, 300, false, false},
		{"刚好达到上限不算点击", 200 * time.Millisecond, 300, 300, false, false},
		{"抬起在空白处", 50 * time.Millisecond, 700, 500, true, false},
		{"抬起在令牌内其他位置", 50 * time.Millisecond, 320, 310, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sounds := &soundRecorder{}
			s := newTestSession(t, 1, sounds)
			id := spawnAt(t, s, "5", 300, 300)

			s.PointerDown(300, 300)
			s.Scheduler().Advance(tt.holdFor)
			s.PointerUp(tt.upX, tt.upY)

			if got := sounds.groupCount(game.SoundGroupTap) > 0; got != tt.wantTapSound {
				t.Errorf("tap sound = %v, want %v", got, tt.wantTapSound)
			}
			selected, _, ok := s.Selection().Selected()
			if ok != tt.wantSelected || (ok && selected != id) {
				t.Errorf("Selected() = %d, %v; want selected=%v", selected, ok, tt.wantSelected)
			}
		})
	}
}

func TestInputSystemTapOnDifferentTokens(t *testing.T) {
	s := newTestSession(t, 1, nil)
	spawnAt(t, s, "5", 300, 300)
	spawnAt(t, s, "6", 500, 300)

	s.PointerDown(300, 300)
	s.Scheduler().Advance(50 * time.Millisecond)
	s.PointerUp(500, 300)
	if _, _, ok := s.Selection().Selected(); ok {
		t.Error("press on one token and release on another registered a tap")
	}
}

func TestInputSystemTwoTapsFuse(t *testing.T) {
	s := newTestSession(t, 2, nil)
	a := spawnAt(t, s, "K", 200, 300)
	b := spawnAt(t, s, "K", 600, 400)

	tap := func(x, y float64) {
		s.PointerDown(x, y)
		s.Scheduler().Advance(80 * time.Millisecond)
		s.PointerUp(x, y)
		s.Scheduler().Advance(time.Second)
	}
	tap(200, 300)
	tap(600, 400)

	if s.Fusion().Stats().Committed != 1 {
		t.Fatalf("Committed = %d, want 1", s.Fusion().Stats().Committed)
	}
	if s.Registry().Has(a) || !s.Registry().Has(b) {
		t.Error("second tapped token should survive")
	}
	if msg, _ := s.Toasts().Toast(); msg != "Tapped two K!" {
		t.Errorf("toast = %q", msg)
	}
}

func TestInputSystemDragPullsToken(t *testing.T) {
	s := newTestSession(t, 3, nil)
	id := spawnAt(t, s, "2", 300, 300)
	token, _ := s.Registry().Token(id)

	s.PointerDown(300, 300)
	s.PointerMove(400, 300)
	for i := 0; i < 30; i++ {
		s.Update()
	}
	x, _, _ := s.World().Position(token.Body)
	if x <= 330 {
		t.Errorf("dragged token x = %.1f, want pulled toward pointer at 400", x)
	}
	if dragged, ok := s.input.Dragged(); !ok || dragged != id {
		t.Errorf("Dragged() = %d, %v", dragged, ok)
	}

	s.PointerUp(400, 300)
	if _, ok := s.input.Dragged(); ok {
		t.Error("token still dragged after release")
	}
}

func TestInputSystemFirstInputHook(t *testing.T) {
	calls := 0
	s, err := NewSession(testConfig(), newTestRand(1), SessionOptions{OnFirstInput: func() { calls++ }})
	if err != nil {
		t.Fatal(err)
	}
	s.PointerDown(10, 600)
	s.PointerUp(10, 600)
	s.PointerDown(10, 600)
	if calls != 1 {
		t.Errorf("OnFirstInput called %d times, want 1", calls)
	}
}
