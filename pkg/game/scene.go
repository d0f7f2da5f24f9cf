package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 是一个可运行的画面（对局画面、烟花预览等）
// 同一时刻只有一个场景接收 Update/Draw
type Scene interface {
	// Update 推进一帧逻辑，deltaTime 单位为秒
	Update(deltaTime float64)

	// Draw 把场景绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：场景在程序退出时持久化偏好设置
//
// 对局本身不保存，退出时只写回音量、开关和上次选择的类别
type Saveable interface {
	// SaveOnExit 返回 false 表示保存失败（程序仍会正常退出）
	SaveOnExit() bool
}
