// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerPhase 指针事件类型
type PointerPhase int

const (
	// PointerDown 按下（鼠标左键或第一根手指）
	PointerDown PointerPhase = iota
	// PointerMove 按住移动
	PointerMove
	// PointerUp 抬起
	PointerUp
)

// PointerEvent 一次指针事件（屏幕坐标）
type PointerEvent struct {
	Phase PointerPhase
	X, Y  float64
}

// PointerTracker 把鼠标和触摸统一成 按下/移动/抬起 事件
//
// 同一时刻只跟踪一个指针：触摸优先，按下后锁定该触摸 ID 直到抬起。
// 触摸抬起时 ebiten 已拿不到该触摸的位置，使用最后一次记录的位置。
type PointerTracker struct {
	pressed bool
	isTouch bool
	touchID ebiten.TouchID
	lastX   int
	lastY   int
}

// NewPointerTracker 创建指针跟踪器
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{touchID: -1}
}

// Poll 读取本帧的 ebiten 输入状态，返回产生的事件（每帧调用一次）
func (pt *PointerTracker) Poll() []PointerEvent {
	if pt.pressed && pt.isTouch {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == pt.touchID {
				x, y := ebiten.TouchPosition(id)
				return pt.Feed(true, x, y)
			}
		}
		return pt.Feed(false, pt.lastX, pt.lastY)
	}

	if !pt.pressed {
		if touchIDs := inpututil.AppendJustPressedTouchIDs(nil); len(touchIDs) > 0 {
			x, y := ebiten.TouchPosition(touchIDs[0])
			pt.isTouch = true
			pt.touchID = touchIDs[0]
			return pt.Feed(true, x, y)
		}
	}

	x, y := ebiten.CursorPosition()
	pt.isTouch = false
	pt.touchID = -1
	return pt.Feed(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), x, y)
}

// Feed 用给定的按下状态和位置推进状态机
// 与 ebiten 无关，供 Poll 与测试共用
func (pt *PointerTracker) Feed(pressed bool, x, y int) []PointerEvent {
	var events []PointerEvent
	switch {
	case pressed && !pt.pressed:
		events = append(events, PointerEvent{Phase: PointerDown, X: float64(x), Y: float64(y)})
	case pressed && pt.pressed && (x != pt.lastX || y != pt.lastY):
		events = append(events, PointerEvent{Phase: PointerMove, X: float64(x), Y: float64(y)})
	case !pressed && pt.pressed:
		events = append(events, PointerEvent{Phase: PointerUp, X: float64(x), Y: float64(y)})
		pt.isTouch = false
		pt.touchID = -1
	}
	pt.pressed = pressed
	pt.lastX, pt.lastY = x, y
	return events
}

// IsPressed 指针是否处于按下状态
func (pt *PointerTracker) IsPressed() bool {
	return pt.pressed
}

// Position 最后一次记录的指针位置
func (pt *PointerTracker) Position() (int, int) {
	return pt.lastX, pt.lastY
}
