package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata，环境不支持时跳过
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skipf("Cannot create gdata manager for testing: %v", err)
	}
	return manager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.MusicVolume != 0.7 {
		t.Errorf("MusicVolume: got %v, want 0.7", settings.MusicVolume)
	}
	if settings.SoundVolume != 0.8 {
		t.Errorf("SoundVolume: got %v, want 0.8", settings.SoundVolume)
	}
	if !settings.MusicEnabled || !settings.SoundEnabled {
		t.Error("audio should be enabled by default")
	}
	if settings.Category != "" {
		t.Errorf("Category: got %q, want empty", settings.Category)
	}
}

// TestSettingsLoadSave 测试保存后重新加载
func TestSettingsLoadSave(t *testing.T) {
	manager := openTestGdata(t, "mergepop_test_settings")

	sm1 := NewSettingsManager(manager)
	sm1.SetMusicVolume(0.5)
	sm1.SetSoundVolume(0.6)
	sm1.SetMusicEnabled(false)
	sm1.SetCategory("fruits")
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	settings := NewSettingsManager(manager).GetSettings()
	if settings.MusicVolume != 0.5 {
		t.Errorf("Loaded MusicVolume: got %v, want 0.5", settings.MusicVolume)
	}
	if settings.SoundVolume != 0.6 {
		t.Errorf("Loaded SoundVolume: got %v, want 0.6", settings.SoundVolume)
	}
	if settings.MusicEnabled {
		t.Error("Loaded MusicEnabled: got true, want false")
	}
	if settings.Category != "fruits" {
		t.Errorf("Loaded Category: got %q, want fruits", settings.Category)
	}
}

// TestNilGdataManager 测试降级模式：不报错，不持久化
func TestNilGdataManager(t *testing.T) {
	sm := NewSettingsManager(nil)
	sm.SetSoundVolume(0.1)

	if err := sm.Save(); err != nil {
		t.Errorf("Save with nil gdata should not fail: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load with nil gdata should not fail: %v", err)
	}
	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("Load should reset to defaults, got %v", sm.GetSettings().SoundVolume)
	}
}

func TestClampVolume(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},
		{-0.1, 0},
		{1.5, 1},
		{0, 0},
		{1, 1},
	}
	for _, tt := range tests {
		if got := clampVolume(tt.input); got != tt.expected {
			t.Errorf("clampVolume(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
