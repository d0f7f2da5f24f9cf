package systems

import (
	"math"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/physics"
)

// TokenSyncSystem 令牌与物理刚体之间的逐步同步
//
// 每个物理步之前：
//   - 夹紧位置（TokenRegistry.ClampPositions）
//   - 动画中的令牌只做"快停时归零"，不同步位置
//   - 其余令牌速度大于 stopSpeed 时乘以 damping，否则归零
//
// 每个物理步之后把刚体位置与角度写回 PositionComponent 供渲染读取。
type TokenSyncSystem struct {
	entityManager *ecs.EntityManager
	world         *physics.World
	registry      *TokenRegistry
	cfg           config.PhysicsConfig
}

// NewTokenSyncSystem 创建同步系统
func NewTokenSyncSystem(em *ecs.EntityManager, world *physics.World, registry *TokenRegistry, cfg config.PhysicsConfig) *TokenSyncSystem {
	return &TokenSyncSystem{entityManager: em, world: world, registry: registry, cfg: cfg}
}

// BeforeStep 夹紧与减速
func (s *TokenSyncSystem) BeforeStep() {
	s.registry.ClampPositions()

	for _, id := range s.registry.IDs() {
		token, ok := s.registry.Token(id)
		if !ok {
			continue
		}
		vx, vy, ok := s.world.Velocity(token.Body)
		if !ok {
			continue
		}
		speed := math.Hypot(vx, vy)

		if token.IsAnimating {
			if speed > 0 && speed < s.cfg.SettleSpeed {
				s.world.SetVelocity(token.Body, 0, 0)
			}
			continue
		}

		if speed > s.cfg.StopSpeed {
			s.world.SetVelocity(token.Body, vx*s.cfg.Damping, vy*s.cfg.Damping)
		} else if speed > 0 {
			s.world.SetVelocity(token.Body, 0, 0)
		}
	}
}

// AfterStep 把刚体位置写回渲染组件；动画中的令牌保持原位
func (s *TokenSyncSystem) AfterStep() {
	for _, id := range s.registry.IDs() {
		token, ok := s.registry.Token(id)
		if !ok || token.IsAnimating {
			continue
		}
		pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if !ok {
			continue
		}
		x, y, ok := s.world.Position(token.Body)
		if !ok {
			continue
		}
		pos.X, pos.Y = x, y
		if token.NoRotate {
			pos.Angle = 0
		} else {
			pos.Angle = s.world.Angle(token.Body)
		}
	}
}
