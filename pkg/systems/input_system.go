package systems

import (
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/physics"
)

// InputSystem 令牌区域的指针交互
//
// 职责：
//   - 短按（按下到抬起短于 tapMaxDuration）播放点击音效；
//     按下和抬起落在同一个令牌上时交给 SelectionTracker
//   - 按住令牌时拖拽：每个物理步把令牌速度设为指向指针的弹簧速度
//   - 向 FusionCoordinator 报告被拖住的令牌（碰撞融合时它优先存活）
//
// 时间戳取自调度器的虚拟时钟。
type InputSystem struct {
	registry  *TokenRegistry
	world     *physics.World
	selection *SelectionTracker
	sounds    SoundPlayer
	scheduler *game.Scheduler
	cfg       config.InputConfig

	pressed   bool
	downAt    time.Duration
	downToken ecs.EntityID
	hasToken  bool
	pointerX  float64
	pointerY  float64
}

// NewInputSystem 创建输入系统
func NewInputSystem(registry *TokenRegistry, world *physics.World, selection *SelectionTracker,
	sounds SoundPlayer, scheduler *game.Scheduler, cfg config.InputConfig) *InputSystem {
	if sounds == nil {
		sounds = silentSounds{}
	}
	return &InputSystem{
		registry:  registry,
		world:     world,
		selection: selection,
		sounds:    sounds,
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// PointerDown 指针按下，记录按下时间与按中的令牌
func (s *InputSystem) PointerDown(x, y float64) {
	s.pressed = true
	s.downAt = s.scheduler.Now()
	s.pointerX, s.pointerY = x, y
	s.downToken, s.hasToken = s.registry.TokenAt(x, y)
}

// PointerMove 指针移动（仅在按下时有意义）
func (s *InputSystem) PointerMove(x, y float64) {
	s.pointerX, s.pointerY = x, y
}

// PointerUp 指针抬起
// 返回本次抬起是否构成落在令牌上的点击，以及点击的处理结果
func (s *InputSystem) PointerUp(x, y float64) (TapOutcome, bool) {
	if !s.pressed {
		return 0, false
	}
	s.pressed = false
	s.pointerX, s.pointerY = x, y

	now := s.scheduler.Now()
	downToken, hasToken := s.downToken, s.hasToken
	s.downToken, s.hasToken = 0, false

	if now-s.downAt >= s.cfg.TapMaxDuration {
		return 0, false
	}
	s.sounds.PlayRandomSound(game.SoundGroupTap)

	if !hasToken || !s.registry.Has(downToken) {
		return 0, false
	}
	if upToken, ok := s.registry.TokenAt(x, y); !ok || upToken != downToken {
		return 0, false
	}

	return s.selection.RegisterTap(downToken, now), true
}

// Dragged 当前被按住的令牌
func (s *InputSystem) Dragged() (ecs.EntityID, bool) {
	if !s.pressed || !s.hasToken || !s.registry.Has(s.downToken) {
		return 0, false
	}
	return s.downToken, true
}

// ApplyDrag 每个物理步之前调用：被按住的令牌以弹簧速度追随指针
// 动画中的令牌是静态刚体，不受拖拽影响
func (s *InputSystem) ApplyDrag() {
	id, ok := s.Dragged()
	if !ok {
		return
	}
	token, ok := s.registry.Token(id)
	if !ok || token.IsAnimating {
		return
	}
	x, y, ok := s.world.Position(token.Body)
	if !ok {
		return
	}
	k := s.cfg.DragStiffness
	s.world.SetVelocity(token.Body, (s.pointerX-x)*k, (s.pointerY-y)*k)
}

// Reset 放弃当前手势（切换类别时令牌已全部移除）
func (s *InputSystem) Reset() {
	s.pressed = false
	s.downToken, s.hasToken = 0, false
}
