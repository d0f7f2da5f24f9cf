package systems

import (
	"log"
	"time"

	"github.com/gonewx/mergepop/pkg/ecs"
)

// TapOutcome 一次点击的处理结果
type TapOutcome int

const (
	// TapRefreshed 再次点中已选中的令牌，只刷新时间
	TapRefreshed TapOutcome = iota
	// TapFused 与上一次选中的令牌配对成功，已提交融合
	TapFused
	// TapSelected 记为新的选中令牌（丢弃之前未配对的选择）
	TapSelected
)

func (o TapOutcome) String() string {
	switch o {
	case TapRefreshed:
		return "refreshed"
	case TapFused:
		return "fused"
	case TapSelected:
		return "selected"
	}
	return "unknown"
}

// SelectionTracker 连续点击配对
// 在 window 内先后点中两个内容相同的不同令牌即融合，后点的令牌存活
type SelectionTracker struct {
	fuser  Fuser
	window time.Duration

	last    ecs.EntityID
	lastAt  time.Duration
	hasLast bool
}

// NewSelectionTracker 创建点击配对跟踪器
func NewSelectionTracker(fuser Fuser, window time.Duration) *SelectionTracker {
	return &SelectionTracker{fuser: fuser, window: window}
}

// RegisterTap 记录一次落在令牌 id 上的有效点击
func (s *SelectionTracker) RegisterTap(id ecs.EntityID, now time.Duration) TapOutcome {
	if s.hasLast && s.last == id {
		s.lastAt = now
		return TapRefreshed
	}

	// 内容相同、双方都不在融合中由 AttemptFusion 判定
	if s.hasLast && now-s.lastAt <= s.window &&
		s.fuser.AttemptFusion(s.last, id, TriggerTap) {
		log.Printf("[SelectionTracker] Tap pair %d + %d committed", s.last, id)
		s.Clear()
		return TapFused
	}

	s.last = id
	s.lastAt = now
	s.hasLast = true
	return TapSelected
}

// Selected 返回当前选中的令牌
func (s *SelectionTracker) Selected() (ecs.EntityID, time.Duration, bool) {
	return s.last, s.lastAt, s.hasLast
}

// Clear 清空选择
func (s *SelectionTracker) Clear() {
	s.last = 0
	s.lastAt = 0
	s.hasLast = false
}
