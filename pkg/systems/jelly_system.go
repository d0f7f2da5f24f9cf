package systems

import (
	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/utils"
)

// JellySystem 融合后的果冻挤压动画
// 按渲染时钟推进 JellyAnimationComponent，把缩放写入 ScaleComponent（X 与 Y 反相）
// 组件由 FusionCoordinator 在提交时添加、恢复时移除
type JellySystem struct {
	entityManager *ecs.EntityManager
}

// NewJellySystem 创建果冻动画系统
func NewJellySystem(em *ecs.EntityManager) *JellySystem {
	return &JellySystem{entityManager: em}
}

// Update 推进 deltaTime 秒
func (s *JellySystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith2[*components.JellyAnimationComponent, *components.ScaleComponent](s.entityManager)
	for _, id := range entities {
		jelly, _ := ecs.GetComponent[*components.JellyAnimationComponent](s.entityManager, id)
		scale, _ := ecs.GetComponent[*components.ScaleComponent](s.entityManager, id)

		jelly.ElapsedTime += deltaTime
		progress := 1.0
		if jelly.Duration > 0 {
			progress = jelly.ElapsedTime / jelly.Duration
		}

		// 动画播完后保持原尺寸，等待恢复时移除组件
		wobble := utils.JellyWobble(progress, jelly.Wobbles) * jelly.Amplitude
		scale.ScaleX = 1 + wobble
		scale.ScaleY = 1 - wobble
	}
}
