package systems

import (
	"slices"
	"testing"
	"time"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/physics"
)

func pairOf(t *testing.T, s *Session, a, b ecs.EntityID) physics.Pair {
	t.Helper()
	ta, ok := s.Registry().Token(a)
	if !ok {
		t.Fatalf("token %d missing", a)
	}
	tb, ok := s.Registry().Token(b)
	if !ok {
		t.Fatalf("token %d missing", b)
	}
	if ta.Body > tb.Body {
		return physics.Pair{A: tb.Body, B: ta.Body}
	}
	return physics.Pair{A: ta.Body, B: tb.Body}
}

// 两个相距 50 像素的 "7"：碰撞、提交、动画、恢复并补充一个令牌
func TestFusionScenarioCollidingSevens(t *testing.T) {
	sounds := &soundRecorder{}
	s := newTestSession(t, 21, sounds)
	a := spawnAt(t, s, "7", 200, 300)
	b := spawnAt(t, s, "7", 250, 300)

	s.Update()
	if got := s.Fusion().Stats().Started; got != 1 {
		t.Fatalf("Started = %d after first step, want 1", got)
	}
	if got := sounds.count(game.SoundCollision); got != 1 {
		t.Errorf("collision sound played %d times, want 1", got)
	}
	if msg, visible := s.Toasts().Toast(); !visible || msg != "7 and 7 collided!" {
		t.Errorf("toast = %q (visible %v)", msg, visible)
	}
	// 提交前两个令牌都在
	if s.Registry().Count() != 2 {
		t.Fatalf("Count() = %d before commit delay", s.Registry().Count())
	}

	runUntil(s, 50*time.Millisecond)
	stats := s.Fusion().Stats()
	if stats.Committed != 1 || s.Registry().Count() != 1 {
		t.Fatalf("after commit: Committed = %d, Count() = %d", stats.Committed, s.Registry().Count())
	}
	survivor := s.Registry().IDs()[0]
	if survivor != a && survivor != b {
		t.Fatalf("survivor %d is neither token", survivor)
	}
	token, _ := s.Registry().Token(survivor)
	if token.Content != "7" || !token.IsAnimating || !token.IsProcessing {
		t.Errorf("survivor state = %+v", *token)
	}
	if body, _ := s.World().Body(token.Body); !body.Static {
		t.Error("survivor should be static while animating")
	}
	if !ecs.HasComponent[*components.JellyAnimationComponent](s.EntityManager(), survivor) {
		t.Error("survivor has no jelly animation")
	}
	if s.Combo().Level() != 1 {
		t.Errorf("combo level = %d, want 1", s.Combo().Level())
	}
	if s.Fireworks().Count() == 0 {
		t.Error("no firework particles after commit")
	}
	if s.Toasts().Combo().Visible {
		t.Error("combo banner shown for level 1")
	}

	runUntil(s, 550*time.Millisecond)
	stats = s.Fusion().Stats()
	if stats.Restored != 1 {
		t.Fatalf("Restored = %d, want 1", stats.Restored)
	}
	if s.Registry().Count() != 2 {
		t.Errorf("Count() = %d after restore, want survivor plus one replacement", s.Registry().Count())
	}
	token, _ = s.Registry().Token(survivor)
	if token.IsAnimating || token.IsProcessing {
		t.Errorf("survivor flags not cleared: %+v", *token)
	}
	if body, _ := s.World().Body(token.Body); body.Static {
		t.Error("survivor still static after restore")
	}
	if ecs.HasComponent[*components.JellyAnimationComponent](s.EntityManager(), survivor) {
		t.Error("jelly animation not removed")
	}
	scale, _ := ecs.GetComponent[*components.ScaleComponent](s.EntityManager(), survivor)
	if scale.ScaleX != 1 || scale.ScaleY != 1 {
		t.Errorf("scale = (%.2f, %.2f), want (1, 1)", scale.ScaleX, scale.ScaleY)
	}
}

func TestAttemptFusionPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID)
		want  bool
	}{
		{
			name: "内容相同",
			setup: func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID) {
				return spawnAt(t, s, "3", 200, 300), spawnAt(t, s, "3", 600, 300)
			},
			want: true,
		},
		{
			name: "内容不同",
			setup: func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID) {
				return spawnAt(t, s, "3", 200, 300), spawnAt(t, s, "4", 600, 300)
			},
			want: false,
		},
		{
			name: "同一个令牌",
			setup: func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID) {
				id := spawnAt(t, s, "3", 200, 300)
				return id, id
			},
			want: false,
		},
		{
			name: "一方已移除",
			setup: func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID) {
				a := spawnAt(t, s, "3", 200, 300)
				b := spawnAt(t, s, "3", 600, 300)
				s.Registry().Remove(b)
				return a, b
			},
			want: false,
		},
		{
			name: "一方正在融合",
			setup: func(t *testing.T, s *Session) (ecs.EntityID, ecs.EntityID) {
				a := spawnAt(t, s, "3", 200, 300)
				b := spawnAt(t, s, "3", 600, 300)
				token, _ := s.Registry().Token(b)
				token.IsProcessing = true
				return a, b
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, 1, nil)
			a, b := tt.setup(t, s)
			if got := s.Fusion().AttemptFusion(a, b, TriggerCollision); got != tt.want {
				t.Errorf("AttemptFusion() = %v, want %v", got, tt.want)
			}
			wantStarted := 0
			if tt.want {
				wantStarted = 1
			}
			if s.Fusion().Stats().Started != wantStarted {
				t.Errorf("Started = %d, want %d", s.Fusion().Stats().Started, wantStarted)
			}
		})
	}
}

func TestHandleCollisionsIsIdempotent(t *testing.T) {
	s := newTestSession(t, 2, nil)
	a := spawnAt(t, s, "9", 200, 300)
	b := spawnAt(t, s, "9", 600, 300)
	pairs := []physics.Pair{pairOf(t, s, a, b)}

	s.Fusion().HandleCollisions(pairs)
	s.Fusion().HandleCollisions(pairs)
	if s.Fusion().Stats().Started != 1 {
		t.Errorf("Started = %d after duplicate reports, want 1", s.Fusion().Stats().Started)
	}

	s.Scheduler().Advance(60 * time.Millisecond)
	if s.Fusion().Stats().Committed != 1 || s.Registry().Count() != 1 {
		t.Errorf("Committed = %d, Count() = %d", s.Fusion().Stats().Committed, s.Registry().Count())
	}
}

// 点击路径与碰撞路径争抢同一对令牌：只有先到的一条生效，败者只移除一次
func TestFusionCrossPathRace(t *testing.T) {
	s := newTestSession(t, 3, nil)
	a := spawnAt(t, s, "2", 200, 300)
	b := spawnAt(t, s, "2", 600, 300)
	c := spawnAt(t, s, "2", 400, 500)

	s.Selection().RegisterTap(a, 0)
	if got := s.Selection().RegisterTap(b, time.Second); got != TapFused {
		t.Fatalf("tap pair = %v", got)
	}
	s.Fusion().HandleCollisions([]physics.Pair{pairOf(t, s, a, b)})
	s.Fusion().HandleCollisions([]physics.Pair{pairOf(t, s, b, c)})
	if s.Fusion().AttemptFusion(c, a, TriggerTap) {
		t.Error("fusion with a processing token accepted")
	}
	if s.Fusion().Stats().Started != 1 {
		t.Fatalf("Started = %d, want 1", s.Fusion().Stats().Started)
	}

	s.Scheduler().Advance(60 * time.Millisecond)
	if s.Registry().Has(a) || !s.Registry().Has(b) || !s.Registry().Has(c) {
		t.Errorf("tap survivor should be b: has a=%v b=%v c=%v",
			s.Registry().Has(a), s.Registry().Has(b), s.Registry().Has(c))
	}
	if s.World().Count() != s.Registry().Count() {
		t.Errorf("world bodies %d != registry tokens %d", s.World().Count(), s.Registry().Count())
	}
	tokens := ecs.GetEntitiesWith1[*components.TokenComponent](s.EntityManager())
	if len(tokens) != s.Registry().Count() {
		t.Errorf("ECS tokens %d != registry tokens %d", len(tokens), s.Registry().Count())
	}

	// c 不受影响，之后可以和动画结束的 b 融合
	s.Scheduler().Advance(500 * time.Millisecond)
	if !s.Fusion().AttemptFusion(b, c, TriggerCollision) {
		t.Error("fusion after restore rejected")
	}
}

func TestFusionCommitGuardAbortsWhenLoserVanishes(t *testing.T) {
	s := newTestSession(t, 4, nil)
	a := spawnAt(t, s, "8", 200, 300)
	b := spawnAt(t, s, "8", 600, 300)

	if !s.Fusion().AttemptFusion(a, b, TriggerTap) {
		t.Fatal("AttemptFusion rejected")
	}
	// 点击触发时 b 存活，移除 a（败者）
	s.Registry().Remove(a)
	s.Scheduler().Advance(60 * time.Millisecond)

	stats := s.Fusion().Stats()
	if stats.Aborted != 1 || stats.Committed != 0 {
		t.Fatalf("stats = %+v, want one abort", stats)
	}
	token, ok := s.Registry().Token(b)
	if !ok {
		t.Fatal("survivor removed by aborted fusion")
	}
	if token.IsProcessing || token.IsAnimating {
		t.Errorf("survivor flags not cleared: %+v", *token)
	}
	if s.Combo().Count() != 0 || s.Fireworks().Count() != 0 {
		t.Error("aborted fusion counted combo or fired fireworks")
	}
}

func TestFusionRestoreAfterCategoryReset(t *testing.T) {
	s := newTestSession(t, 5, nil)
	a := spawnAt(t, s, "1", 200, 300)
	b := spawnAt(t, s, "1", 600, 300)
	s.Fusion().AttemptFusion(a, b, TriggerTap)
	s.Scheduler().Advance(60 * time.Millisecond)
	if s.Fusion().Stats().Committed != 1 {
		t.Fatal("fusion not committed")
	}

	if err := s.SetCategory("letters"); err != nil {
		t.Fatal(err)
	}
	s.Scheduler().Advance(2 * time.Second)

	if s.Fusion().Stats().Restored != 0 {
		t.Error("restore ran for a token removed by the category switch")
	}
	if s.Registry().Count() != 5 {
		t.Errorf("Count() = %d, want only the staggered batch of 5", s.Registry().Count())
	}
	for _, id := range s.Registry().IDs() {
		token, _ := s.Registry().Token(id)
		if !slices.Contains(s.Pool().Contents(), token.Content) {
			t.Errorf("non-letter token %q after switch", token.Content)
		}
	}
}

func TestFusionSurvivorRules(t *testing.T) {
	t.Run("点击时后点的存活", func(t *testing.T) {
		s := newTestSession(t, 6, nil)
		a := spawnAt(t, s, "4", 200, 300)
		b := spawnAt(t, s, "4", 600, 300)
		s.Fusion().AttemptFusion(a, b, TriggerTap)
		s.Scheduler().Advance(60 * time.Millisecond)
		if s.Registry().Has(a) || !s.Registry().Has(b) {
			t.Error("expected b to survive")
		}
	})

	t.Run("碰撞时被拖住的存活", func(t *testing.T) {
		for seed := int64(0); seed < 8; seed++ {
			s := newTestSession(t, seed, nil)
			a := spawnAt(t, s, "4", 200, 300)
			b := spawnAt(t, s, "4", 600, 300)
			s.PointerDown(600, 300)
			s.Fusion().HandleCollisions([]physics.Pair{pairOf(t, s, a, b)})
			s.Scheduler().Advance(60 * time.Millisecond)
			if !s.Registry().Has(b) || s.Registry().Has(a) {
				t.Fatalf("seed %d: dragged token b did not survive", seed)
			}
		}
	})
}

func TestFusionComboBanner(t *testing.T) {
	s := newTestSession(t, 7, nil)
	for i := 0; i < 2; i++ {
		a := spawnAt(t, s, "6", 200, 300)
		b := spawnAt(t, s, "6", 600, 300)
		s.Fusion().AttemptFusion(a, b, TriggerTap)
		s.Scheduler().Advance(time.Second)
	}
	if s.Combo().Level() != 2 {
		t.Fatalf("combo level = %d, want 2", s.Combo().Level())
	}
	banner := s.Toasts().Combo()
	if banner.Level != 2 || banner.Text != "Combo x2!" {
		t.Errorf("banner = %+v", banner)
	}
	if msg, _ := s.Toasts().Toast(); msg != "Tapped two 6!" {
		t.Errorf("toast = %q", msg)
	}
}

func TestCollisionSoundThrottle(t *testing.T) {
	sounds := &soundRecorder{}
	s := newTestSession(t, 8, sounds)
	a := spawnAt(t, s, "1", 200, 300)
	b := spawnAt(t, s, "2", 600, 300)
	pairs := []physics.Pair{pairOf(t, s, a, b)}

	s.Fusion().HandleCollisions(pairs)
	s.Fusion().HandleCollisions(pairs)
	s.Scheduler().Advance(100 * time.Millisecond)
	s.Fusion().HandleCollisions(pairs)
	if got := sounds.count(game.SoundCollision); got != 1 {
		t.Errorf("collision sound %d times within throttle, want 1", got)
	}
	s.Scheduler().Advance(150 * time.Millisecond)
	s.Fusion().HandleCollisions(pairs)
	if got := sounds.count(game.SoundCollision); got != 2 {
		t.Errorf("collision sound %d times after throttle, want 2", got)
	}
	if s.Fusion().Stats().Started != 0 {
		t.Error("different contents started a fusion")
	}
}
