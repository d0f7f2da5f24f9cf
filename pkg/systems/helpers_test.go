package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
)

// 测试辅助：被多个测试文件共享使用

// soundRecorder 记录播放过的音效
type soundRecorder struct {
	sounds []string
	groups []string
}

func (r *soundRecorder) PlaySound(id string) bool {
	r.sounds = append(r.sounds, id)
	return true
}

func (r *soundRecorder) PlayRandomSound(group string) bool {
	r.groups = append(r.groups, group)
	return true
}

func (r *soundRecorder) count(id string) int {
	n := 0
	for _, s := range r.sounds {
		if s == id {
			n++
		}
	}
	return n
}

func (r *soundRecorder) groupCount(group string) int {
	n := 0
	for _, g := range r.groups {
		if g == group {
			n++
		}
	}
	return n
}

// notifierRecorder 记录提示与连击横幅
type notifierRecorder struct {
	toasts []string
	combos []int
}

func (n *notifierRecorder) ShowToast(message string) { n.toasts = append(n.toasts, message) }
func (n *notifierRecorder) ShowCombo(level int)      { n.combos = append(n.combos, level) }

// fuserRecorder 记录 AttemptFusion 调用，返回预设结果
type fuserRecorder struct {
	result bool
	calls  [][2]ecs.EntityID
}

func (f *fuserRecorder) AttemptFusion(a, b ecs.EntityID, trigger FusionTrigger) bool {
	f.calls = append(f.calls, [2]ecs.EntityID{a, b})
	return f.result
}

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func testConfig() *config.GameConfig {
	return config.DefaultGameConfig()
}

// newTestSession 使用默认配置创建会话，并激活 numbers 类别（不分批生成）
func newTestSession(t *testing.T, seed int64, sounds SoundPlayer) *Session {
	t.Helper()
	s, err := NewSession(testConfig(), newTestRand(seed), SessionOptions{Sounds: sounds})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := s.Pool().SetActive("numbers"); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	return s
}

// runUntil 逐步推进会话，直到虚拟时钟到达 at
func runUntil(s *Session, at time.Duration) {
	for s.Scheduler().Now() < at {
		s.Update()
	}
}

// spawnAt 在指定位置生成令牌并把速度清零，测试失败时终止
func spawnAt(t *testing.T, s *Session, content string, x, y float64) ecs.EntityID {
	t.Helper()
	id, ok := s.Registry().SpawnAt(content, "#FF5733", x, y)
	if !ok {
		t.Fatalf("SpawnAt(%q) rejected", content)
	}
	token, _ := s.Registry().Token(id)
	s.World().SetVelocity(token.Body, 0, 0)
	return id
}
