package systems

import (
	"fmt"
	"image/color"
	"time"
)

// ComboTracker 连击计数
// 与上一次融合间隔不超过 resetWindow 时计数加一，否则从 1 重新开始
type ComboTracker struct {
	resetWindow time.Duration
	maxLevel    int
	colors      []color.RGBA

	lastFusionAt time.Duration
	count        int
	hasFused     bool
}

// NewComboTracker 创建连击跟踪器
// colors 为各等级横幅颜色，下标 0 对应 1 级
func NewComboTracker(resetWindow time.Duration, maxLevel int, colors []color.RGBA) *ComboTracker {
	if maxLevel < 1 {
		maxLevel = 1
	}
	return &ComboTracker{resetWindow: resetWindow, maxLevel: maxLevel, colors: colors}
}

// OnFusionCommitted 记录一次已提交的融合，返回连击等级（不超过 maxLevel）
func (c *ComboTracker) OnFusionCommitted(now time.Duration) int {
	if c.hasFused && now-c.lastFusionAt <= c.resetWindow {
		c.count++
	} else {
		c.count = 1
	}
	c.lastFusionAt = now
	c.hasFused = true
	return c.Level()
}

// Level 当前连击等级
func (c *ComboTracker) Level() int {
	if c.count > c.maxLevel {
		return c.maxLevel
	}
	return c.count
}

// Count 未截断的连击计数
func (c *ComboTracker) Count() int {
	return c.count
}

// Reset 清空连击
func (c *ComboTracker) Reset() {
	c.count = 0
	c.lastFusionAt = 0
	c.hasFused = false
}

// ComboBannerColor 连击横幅颜色，等级越界时取最近的一端
func (c *ComboTracker) ComboBannerColor(level int) color.RGBA {
	if len(c.colors) == 0 {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.colors) {
		idx = len(c.colors) - 1
	}
	return c.colors[idx]
}

// ComboBannerText 连击横幅文字
func ComboBannerText(level int) string {
	return fmt.Sprintf("Combo x%d!", level)
}
