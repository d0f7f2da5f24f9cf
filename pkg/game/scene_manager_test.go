package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene 记录调用情况的场景
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// savingScene 额外实现 Saveable
type savingScene struct {
	MockScene
	saves  int
	result bool
}

func (s *savingScene) SaveOnExit() bool {
	s.saves++
	return s.result
}

func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager()
	if sm.GetCurrentScene() != nil {
		t.Error("Expected no active scene initially")
	}
	// 没有场景时转发是空操作
	sm.Update(0.016)
	sm.Draw(nil)
	if !sm.SaveCurrent() {
		t.Error("SaveCurrent without a scene should succeed")
	}
}

func TestSceneManagerForwardsCallbacks(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	sm.Update(0.016)
	sm.Draw(nil)

	if !mockScene.updateCalled || !mockScene.drawCalled {
		t.Error("scene callbacks were not forwarded")
	}
	if mockScene.deltaTime != 0.016 {
		t.Errorf("expected deltaTime 0.016, got %v", mockScene.deltaTime)
	}
}

func TestSceneManagerSavesOnSwitch(t *testing.T) {
	sm := NewSceneManager()
	first := &savingScene{result: true}
	sm.SwitchTo(first)

	// 切换到同一场景不触发保存
	sm.SwitchTo(first)
	if first.saves != 0 {
		t.Fatalf("expected no save on same-scene switch, got %d", first.saves)
	}

	sm.SwitchTo(&MockScene{})
	if first.saves != 1 {
		t.Errorf("expected 1 save when leaving scene, got %d", first.saves)
	}
}

func TestSceneManagerSaveCurrentFailure(t *testing.T) {
	sm := NewSceneManager()
	sm.SwitchTo(&savingScene{result: false})
	if sm.SaveCurrent() {
		t.Error("expected SaveCurrent to report failure")
	}
}
