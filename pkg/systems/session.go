package systems

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/physics"
	"github.com/hajimehoshi/ebiten/v2"
)

// StepInterval 一个物理步对应的虚拟时间（60 TPS）
const StepInterval = time.Second / 60

// 令牌碰撞时切向速度转为角速度的比例
const tokenAngularFactor = 0.02

// SessionOptions 会话的可选协作者
type SessionOptions struct {
	// Sounds 音效播放，nil 时静音
	Sounds SoundPlayer

	// OnFirstInput 第一次指针按下时调用一次（浏览器要求用户手势后才能开始背景音乐）
	OnFirstInput func()

	// OnCategoryChanged 类别切换成功后调用（用于保存设置）
	OnCategoryChanged func(name string)
}

// Session 一局游戏：持有全部系统并按固定顺序推进
//
// 每个物理步：拖拽 → 夹紧与阻尼 → 物理积分 → 位置同步 → 碰撞融合 → 推进虚拟时钟。
// 定时回调（融合提交、动画结束、分批生成、提示消失）都在推进时钟时执行，
// 所以同一步内的碰撞总是先于任何延迟动作被处理。
type Session struct {
	cfg *config.GameConfig

	em        *ecs.EntityManager
	world     *physics.World
	scheduler *game.Scheduler

	pool      *ContentPool
	registry  *TokenRegistry
	selection *SelectionTracker
	combo     *ComboTracker
	fireworks *FireworkSystem
	fusion    *FusionCoordinator
	tokenSync *TokenSyncSystem
	jelly     *JellySystem
	input     *InputSystem
	buttons   *ButtonSystem
	toasts    *ToastSystem
	render    *RenderSystem

	opts    SessionOptions
	started bool
}

// NewSession 按配置组装一局游戏
// 不选择任何类别，调用方随后调用 SetCategory
func NewSession(cfg *config.GameConfig, rng RandomSource, opts SessionOptions) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	sounds := opts.Sounds
	if sounds == nil {
		sounds = silentSounds{}
	}

	palette, err := parsePalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	comboColors, err := parsePalette(cfg.Combo.Colors)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, opts: opts}
	s.em = ecs.NewEntityManager()
	s.scheduler = game.NewScheduler()
	s.world = physics.NewWorld(physics.Options{
		MinX:          0,
		MinY:          cfg.Layout.TopStrip,
		MaxX:          float64(cfg.Layout.Width),
		MaxY:          float64(cfg.Layout.Height),
		FrictionAir:   cfg.Physics.FrictionAir,
		Restitution:   cfg.Physics.Restitution,
		AngularFactor: tokenAngularFactor,
		CellSize:      cfg.Physics.CellSize,
	})

	s.pool = NewContentPool(cfg.Categories)
	s.registry = NewTokenRegistry(s.em, s.world, s.pool, s.scheduler, rng, sounds, cfg)
	s.combo = NewComboTracker(cfg.Combo.ResetWindow, cfg.Combo.MaxLevel, comboColors)
	s.fireworks = NewFireworkSystem(s.em, rng, sounds, cfg.Fireworks, palette)
	s.toasts = NewToastSystem(s.scheduler, s.combo, cfg.Timing)
	s.fusion = NewFusionCoordinator(FusionDeps{
		EntityManager: s.em,
		World:         s.world,
		Registry:      s.registry,
		Pool:          s.pool,
		Combo:         s.combo,
		Fireworks:     s.fireworks,
		Scheduler:     s.scheduler,
		Random:        rng,
		Sounds:        sounds,
		Notifier:      s.toasts,
	}, cfg)
	s.selection = NewSelectionTracker(s.fusion, cfg.Timing.TapCombineWindow)
	s.input = NewInputSystem(s.registry, s.world, s.selection, sounds, s.scheduler, cfg.Input)
	s.fusion.SetDragSource(s.input)
	s.tokenSync = NewTokenSyncSystem(s.em, s.world, s.registry, cfg.Physics)
	s.jelly = NewJellySystem(s.em)

	s.buttons = NewButtonSystem(s.em)
	s.buttons.Build(s.pool, cfg.Layout.TopStrip,
		func(name string) {
			if err := s.SetCategory(name); err != nil {
				log.Printf("[Session] Warning: %v", err)
			}
		},
		func() { s.AddRandom() },
	)

	log.Printf("[Session] Created: %dx%d, %d categories, max %d tokens",
		cfg.Layout.Width, cfg.Layout.Height, len(s.pool.Categories()), cfg.Population.MaxTokens)
	return s, nil
}

func parsePalette(hexes []string) ([]color.RGBA, error) {
	colors := make([]color.RGBA, 0, len(hexes))
	for _, hex := range hexes {
		c, err := config.ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("parse color %q: %w", hex, err)
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// Update 推进一个 tick：物理步加视觉效果
func (s *Session) Update() {
	s.Step()
	s.UpdateEffects()
}

// Step 推进一个物理步
func (s *Session) Step() {
	s.input.ApplyDrag()
	s.tokenSync.BeforeStep()
	pairs := s.world.Step()
	s.tokenSync.AfterStep()
	s.fusion.HandleCollisions(pairs)
	s.scheduler.Advance(StepInterval)
}

// UpdateEffects 推进一帧烟花与果冻动画
func (s *Session) UpdateEffects() {
	s.fireworks.Update()
	s.jelly.Update(StepInterval.Seconds())
}

// Draw 绘制当前画面
func (s *Session) Draw(screen *ebiten.Image) {
	if s.render == nil {
		s.render = NewRenderSystem(s.em, s.registry, s.pool, s.fireworks, s.buttons, s.toasts, s.cfg)
	}
	s.render.Draw(screen)
}

// PointerDown 指针按下：按钮优先，其次令牌区域
func (s *Session) PointerDown(x, y float64) {
	if !s.started {
		s.started = true
		if s.opts.OnFirstInput != nil {
			s.opts.OnFirstInput()
		}
	}
	if s.buttons.PointerDown(x, y) {
		return
	}
	s.input.PointerDown(x, y)
}

// PointerMove 指针移动
func (s *Session) PointerMove(x, y float64) {
	if s.buttons.Capturing() {
		return
	}
	s.input.PointerMove(x, y)
}

// PointerUp 指针抬起
func (s *Session) PointerUp(x, y float64) {
	if s.buttons.PointerUp(x, y) {
		return
	}
	s.input.PointerUp(x, y)
}

// SetCategory 切换类别：清空令牌、放弃点选、分批生成新令牌
func (s *Session) SetCategory(name string) error {
	switched := name != s.pool.Active() || s.registry.Count() == 0
	if err := s.registry.SetCategory(name); err != nil {
		return fmt.Errorf("set category: %w", err)
	}
	if !switched {
		return nil
	}
	s.selection.Clear()
	s.input.Reset()
	s.buttons.SetActiveCategory(name)
	if s.opts.OnCategoryChanged != nil {
		s.opts.OnCategoryChanged(name)
	}
	return nil
}

// AddRandom 随机添加一个令牌，已达上限时返回 false
func (s *Session) AddRandom() bool {
	_, ok := s.registry.SpawnRandom()
	return ok
}

// Config 会话使用的配置
func (s *Session) Config() *config.GameConfig { return s.cfg }

// EntityManager 实体管理器
func (s *Session) EntityManager() *ecs.EntityManager { return s.em }

// World 物理世界
func (s *Session) World() *physics.World { return s.world }

// Scheduler 虚拟时钟
func (s *Session) Scheduler() *game.Scheduler { return s.scheduler }

// Pool 内容类别
func (s *Session) Pool() *ContentPool { return s.pool }

// Registry 令牌注册表
func (s *Session) Registry() *TokenRegistry { return s.registry }

// Selection 点选状态
func (s *Session) Selection() *SelectionTracker { return s.selection }

// Combo 连击
func (s *Session) Combo() *ComboTracker { return s.combo }

// Fireworks 烟花
func (s *Session) Fireworks() *FireworkSystem { return s.fireworks }

// Fusion 融合协调器
func (s *Session) Fusion() *FusionCoordinator { return s.fusion }

// Toasts 提示
func (s *Session) Toasts() *ToastSystem { return s.toasts }

// Buttons 顶部按钮
func (s *Session) Buttons() *ButtonSystem { return s.buttons }
