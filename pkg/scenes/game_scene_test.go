package scenes

import (
	"testing"
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/utils"
)

func newTestScene(t *testing.T, settings *game.SettingsManager, category string) *GameScene {
	t.Helper()
	scene, err := NewGameScene(GameSceneOptions{
		Config:   config.DefaultGameConfig(),
		Settings: settings,
		Seed:     1,
		Category: category,
	})
	if err != nil {
		t.Fatalf("NewGameScene() error = %v", err)
	}
	return scene
}

func TestGameSceneStartCategory(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		saved     string
		want      string
	}{
		{"命令行指定", "letters", "fruits", "letters"},
		{"使用保存的类别", "", "fruits", "fruits"},
		{"默认类别", "", "", "numbers"},
		{"未知类别回退到保存的", "planets", "animals", "animals"},
		{"保存的类别也失效", "planets", "gone", "numbers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := game.NewSettingsManager(nil)
			settings.SetCategory(tt.saved)
			scene := newTestScene(t, settings, tt.requested)
			if got := scene.Session().Pool().Active(); got != tt.want {
				t.Errorf("active category = %q, want %q", got, tt.want)
			}
			if got := settings.GetSettings().Category; got != tt.want {
				t.Errorf("remembered category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGameSceneNoUsableCategory(t *testing.T) {
	cfg := config.DefaultGameConfig()
	cfg.DefaultCategory = "numbers"
	cfg.Categories = cfg.Categories[1:] // 去掉 numbers，让 Validate 失败
	if _, err := NewGameScene(GameSceneOptions{Config: cfg}); err == nil {
		t.Error("NewGameScene with missing default category should fail")
	}
}

func TestGameSceneSpawnsAndTaps(t *testing.T) {
	scene := newTestScene(t, nil, "numbers")
	session := scene.Session()
	for i := 0; i < 90; i++ {
		session.Update()
	}
	// 随机生成的令牌可能已经相撞融合，数量在 4~5 之间
	if n := session.Registry().Count(); n < 4 || n > 5 {
		t.Fatalf("Count() = %d after 1.5s, want 4 or 5", n)
	}

	// 点一下最上层的令牌：应被选中
	ids := session.Registry().IDs()
	id := ids[len(ids)-1]
	token, _ := session.Registry().Token(id)
	x, y, _ := session.World().Position(token.Body)
	scene.HandlePointer(utils.PointerEvent{Phase: utils.PointerDown, X: x, Y: y})
	session.Scheduler().Advance(50 * time.Millisecond)
	scene.HandlePointer(utils.PointerEvent{Phase: utils.PointerUp, X: x, Y: y})

	if selected, _, ok := session.Selection().Selected(); !ok || selected != id {
		t.Errorf("Selected() = %d, %v; want %d", selected, ok, id)
	}
}

func TestGameSceneToggles(t *testing.T) {
	settings := game.NewSettingsManager(nil)
	scene := newTestScene(t, settings, "")

	scene.ToggleMusic()
	scene.ToggleSound()
	if settings.GetSettings().MusicEnabled || settings.GetSettings().SoundEnabled {
		t.Error("toggles did not disable music and sound")
	}
	scene.ToggleMusic()
	if !settings.GetSettings().MusicEnabled {
		t.Error("second toggle did not re-enable music")
	}
	if !scene.SaveOnExit() {
		t.Error("SaveOnExit() = false with in-memory settings")
	}
}
