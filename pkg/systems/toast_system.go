package systems

import (
	"image/color"
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/game"
)

// ComboBanner 连击横幅的显示状态
type ComboBanner struct {
	Level   int
	Text    string
	Color   color.RGBA
	Visible bool
	Fading  bool

	// ShownAt 显示开始的虚拟时间，渲染用它计算弹出和淡出进度
	ShownAt time.Duration
}

// ToastSystem 提示条与连击横幅（实现 Notifier）
//
// 提示条显示 toastDuration 后消失，新提示替换旧提示并重新计时。
// 连击横幅显示后 comboFadeAfter 开始淡出，comboHideAfter 隐藏；新横幅取消旧横幅的全部计时。
type ToastSystem struct {
	scheduler *game.Scheduler
	combo     *ComboTracker
	timing    config.TimingConfig

	message      string
	toastVisible bool
	toastShownAt time.Duration
	toastTimer   game.TimerID

	banner    ComboBanner
	fadeTimer game.TimerID
	hideTimer game.TimerID
}

// NewToastSystem 创建提示系统
// combo 用于查询横幅颜色
func NewToastSystem(scheduler *game.Scheduler, combo *ComboTracker, timing config.TimingConfig) *ToastSystem {
	return &ToastSystem{scheduler: scheduler, combo: combo, timing: timing}
}

// ShowToast 显示提示条
func (s *ToastSystem) ShowToast(message string) {
	s.cancel(&s.toastTimer)
	s.message = message
	s.toastVisible = true
	s.toastShownAt = s.scheduler.Now()
	s.toastTimer = s.scheduler.After(s.timing.ToastDuration, func() {
		s.toastTimer = 0
		s.toastVisible = false
	})
}

// ShowCombo 显示连击横幅
func (s *ToastSystem) ShowCombo(level int) {
	s.cancel(&s.fadeTimer)
	s.cancel(&s.hideTimer)

	s.banner = ComboBanner{
		Level:   level,
		Text:    ComboBannerText(level),
		Color:   s.combo.ComboBannerColor(level),
		Visible: true,
		ShownAt: s.scheduler.Now(),
	}
	s.fadeTimer = s.scheduler.After(s.timing.ComboFadeAfter, func() {
		s.fadeTimer = 0
		s.banner.Fading = true
	})
	s.hideTimer = s.scheduler.After(s.timing.ComboHideAfter, func() {
		s.hideTimer = 0
		s.banner.Visible = false
		s.banner.Fading = false
	})
}

// Toast 当前提示条文字与是否可见
func (s *ToastSystem) Toast() (string, bool) {
	return s.message, s.toastVisible
}

// ToastAge 提示条已显示的时长
func (s *ToastSystem) ToastAge() time.Duration {
	return s.scheduler.Now() - s.toastShownAt
}

// Combo 当前连击横幅状态
func (s *ToastSystem) Combo() ComboBanner {
	return s.banner
}

// ComboAge 横幅已显示的时长
func (s *ToastSystem) ComboAge() time.Duration {
	return s.scheduler.Now() - s.banner.ShownAt
}

// Clear 立即隐藏全部提示
func (s *ToastSystem) Clear() {
	s.cancel(&s.toastTimer)
	s.cancel(&s.fadeTimer)
	s.cancel(&s.hideTimer)
	s.toastVisible = false
	s.banner = ComboBanner{}
}

func (s *ToastSystem) cancel(id *game.TimerID) {
	if *id != 0 {
		s.scheduler.Cancel(*id)
		*id = 0
	}
}
