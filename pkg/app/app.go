// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/embedded"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 内嵌配置文件路径
const (
	gameConfigPath  = "data/game.yaml"
	soundConfigPath = "data/sounds.yaml"
	sampleRate      = 48000
)

// Config 定义应用启动配置
// 环境变量提供默认值，命令行参数覆盖环境变量
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool `env:"MERGEPOP_VERBOSE"`
	// Category 启动类别，为空则使用上次保存的或配置中的默认类别
	Category string `env:"MERGEPOP_CATEGORY"`
	// ConfigPath 磁盘上的玩法配置文件，为空则使用内嵌的 data/game.yaml
	ConfigPath string `env:"MERGEPOP_CONFIG"`
	// Seed 随机种子，0 表示使用当前时间
	Seed int64 `env:"MERGEPOP_SEED"`
	// Mute 不创建音频上下文（无声运行）
	Mute bool `env:"MERGEPOP_MUTE"`
}

// LoadEnvConfig 从 MERGEPOP_* 环境变量读取启动配置
func LoadEnvConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	width        int
	height       int
	verbose      bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// LoadGameConfig 读取玩法配置：指定了路径时读磁盘，否则读内嵌文件
// 调用前必须先调用 embedded.Init()
func LoadGameConfig(path string) (*config.GameConfig, error) {
	if path != "" {
		return config.LoadGameConfig(path)
	}
	data, err := embedded.ReadFile(gameConfigPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded game config: %w", err)
	}
	return config.ParseGameConfig(data)
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gameConfig, err := LoadGameConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("玩法配置加载失败: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("[App] Random seed: %d", seed)

	settings := game.NewSettingsManager(game.OpenGdataManager(game.AppName))

	var audioManager *game.AudioManager
	if !cfg.Mute {
		data, err := embedded.ReadFile(soundConfigPath)
		if err != nil {
			return nil, fmt.Errorf("音效配置加载失败: %w", err)
		}
		soundConfig, err := game.ParseSoundConfig(data)
		if err != nil {
			return nil, fmt.Errorf("音效配置解析失败: %w", err)
		}
		audioManager = game.NewAudioManager(audio.NewContext(sampleRate), soundConfig, settings, seed)
		audioManager.PreloadSounds()
		log.Printf("[App] AudioManager initialized")
	}

	scene, err := scenes.NewGameScene(scenes.GameSceneOptions{
		Config:   gameConfig,
		Audio:    audioManager,
		Settings: settings,
		Seed:     seed,
		Category: cfg.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("对局创建失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager: sceneManager,
		settings:     settings,
		width:        gameConfig.Layout.Width,
		height:       gameConfig.Layout.Height,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.Close()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.width, a.height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.width, a.height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.settings.SetFullscreen(false)
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
			a.settings.SetFullscreen(true)
		}
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

// Size 逻辑屏幕尺寸（用于设置初始窗口大小）
func (a *App) Size() (int, int) {
	return a.width, a.height
}

// Close 保存当前场景的设置
func (a *App) Close() {
	if !a.sceneManager.SaveCurrent() {
		log.Printf("[App] Warning: failed to save settings on exit")
	}
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
