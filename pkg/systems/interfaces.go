package systems

import "github.com/gonewx/mergepop/pkg/ecs"

// RandomSource 随机数来源
// *rand.Rand 满足此接口；测试注入固定种子或脚本化的实现以锁定结果
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// SoundPlayer 音效播放（由 game.AudioManager 实现）
// 播放是尽力而为的：失败时返回 false，调用方不处理
type SoundPlayer interface {
	PlaySound(id string) bool
	PlayRandomSound(group string) bool
}

// Notifier 屏幕提示（由 ToastSystem 实现）
type Notifier interface {
	// ShowToast 显示一条会自动消失的提示，新提示替换旧提示
	ShowToast(message string)

	// ShowCombo 显示连击横幅
	ShowCombo(level int)
}

// Fuser 融合入口，SelectionTracker 通过它提交点击配对
type Fuser interface {
	AttemptFusion(a, b ecs.EntityID, trigger FusionTrigger) bool
}

// DragSource 报告当前被指针按住的令牌
type DragSource interface {
	Dragged() (ecs.EntityID, bool)
}

// silentSounds 在未接入音频时使用
type silentSounds struct{}

func (silentSounds) PlaySound(string) bool       { return false }
func (silentSounds) PlayRandomSound(string) bool { return false }

// noDrag 在没有输入系统时使用
type noDrag struct{}

func (noDrag) Dragged() (ecs.EntityID, bool) { return 0, false }
