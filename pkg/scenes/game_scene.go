package scenes

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/systems"
	"github.com/gonewx/mergepop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// categoryKeys 数字键 1~9 依次对应顶部的类别按钮
var categoryKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// GameScene 对局画面
//
// 把 ebiten 的鼠标/触摸输入转换成指针事件交给 Session，
// 并负责背景音乐、快捷键和设置的保存。
//
// 快捷键：
//   - 1~9: 切换类别
//   - Space: 随机添加一个令牌
//   - M / S: 开关音乐 / 音效
type GameScene struct {
	session  *systems.Session
	audio    *game.AudioManager
	settings *game.SettingsManager
	pointer  *utils.PointerTracker
}

// GameSceneOptions 对局画面的依赖
// Audio 与 Settings 可为 nil（无声、不保存）
type GameSceneOptions struct {
	Config   *config.GameConfig
	Audio    *game.AudioManager
	Settings *game.SettingsManager
	Seed     int64

	// Category 启动类别，为空时依次尝试上次保存的类别和配置的默认类别
	Category string
}

// NewGameScene 创建对局画面并选中启动类别
func NewGameScene(opts GameSceneOptions) (*GameScene, error) {
	scene := &GameScene{
		audio:    opts.Audio,
		settings: opts.Settings,
		pointer:  utils.NewPointerTracker(),
	}

	sessionOpts := systems.SessionOptions{
		OnFirstInput:      scene.startMusic,
		OnCategoryChanged: scene.rememberCategory,
	}
	// 避免把 nil 指针装进接口
	if opts.Audio != nil {
		sessionOpts.Sounds = opts.Audio
	}

	session, err := systems.NewSession(opts.Config, rand.New(rand.NewSource(opts.Seed)), sessionOpts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	scene.session = session

	if err := scene.selectStartCategory(opts.Category, opts.Config.DefaultCategory); err != nil {
		return nil, err
	}
	return scene, nil
}

func (s *GameScene) selectStartCategory(requested, fallback string) error {
	candidates := []string{requested}
	if s.settings != nil {
		candidates = append(candidates, s.settings.GetSettings().Category)
	}
	candidates = append(candidates, fallback)

	for _, name := range candidates {
		if name == "" {
			continue
		}
		if err := s.session.SetCategory(name); err != nil {
			log.Printf("[GameScene] Warning: %v", err)
			continue
		}
		log.Printf("[GameScene] Start category: %s", name)
		return nil
	}
	return fmt.Errorf("no usable start category (tried %q, fallback %q)", requested, fallback)
}

// Session 当前对局
func (s *GameScene) Session() *systems.Session {
	return s.session
}

// Update 处理输入并推进一个 tick
func (s *GameScene) Update(deltaTime float64) {
	for _, ev := range s.pointer.Poll() {
		s.HandlePointer(ev)
	}
	s.handleKeys()

	s.session.Update()
	if s.audio != nil {
		s.audio.Update()
	}
}

// HandlePointer 把一次指针事件交给对局
func (s *GameScene) HandlePointer(ev utils.PointerEvent) {
	switch ev.Phase {
	case utils.PointerDown:
		s.session.PointerDown(ev.X, ev.Y)
	case utils.PointerMove:
		s.session.PointerMove(ev.X, ev.Y)
	case utils.PointerUp:
		s.session.PointerUp(ev.X, ev.Y)
	}
}

func (s *GameScene) handleKeys() {
	categories := s.session.Pool().Categories()
	for i, key := range categoryKeys {
		if i >= len(categories) {
			break
		}
		if inpututil.IsKeyJustPressed(key) {
			if err := s.session.SetCategory(categories[i]); err != nil {
				log.Printf("[GameScene] Warning: %v", err)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.session.AddRandom()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		s.ToggleMusic()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		s.ToggleSound()
	}
}

// ToggleMusic 开关背景音乐
func (s *GameScene) ToggleMusic() {
	if s.settings == nil {
		return
	}
	enabled := !s.settings.GetSettings().MusicEnabled
	s.settings.SetMusicEnabled(enabled)
	if s.audio != nil {
		s.audio.SetMusicEnabled(enabled)
		if enabled && s.audio.CurrentMusicID() == "" {
			s.audio.PlayRandomMusic()
		}
	}
	log.Printf("[GameScene] Music enabled: %v", enabled)
}

// ToggleSound 开关音效
func (s *GameScene) ToggleSound() {
	if s.settings == nil {
		return
	}
	enabled := !s.settings.GetSettings().SoundEnabled
	s.settings.SetSoundEnabled(enabled)
	if s.audio != nil {
		s.audio.SetSoundEnabled(enabled)
	}
	log.Printf("[GameScene] Sound enabled: %v", enabled)
}

// startMusic 第一次按下指针时开始背景音乐
func (s *GameScene) startMusic() {
	if s.audio == nil {
		return
	}
	if s.settings != nil && !s.settings.GetSettings().MusicEnabled {
		return
	}
	s.audio.PlayRandomMusic()
}

func (s *GameScene) rememberCategory(name string) {
	if s.settings != nil {
		s.settings.SetCategory(name)
	}
}

// Draw 绘制对局
func (s *GameScene) Draw(screen *ebiten.Image) {
	s.session.Draw(screen)
}

// SaveOnExit 保存设置（音量、开关、上次的类别）
func (s *GameScene) SaveOnExit() bool {
	if s.settings == nil {
		return true
	}
	if err := s.settings.Save(); err != nil {
		log.Printf("[GameScene] Warning: failed to save settings: %v", err)
		return false
	}
	return true
}
