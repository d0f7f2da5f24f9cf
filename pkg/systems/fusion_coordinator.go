package systems

import (
	"fmt"
	"log"
	"time"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/physics"
)

// FusionTrigger 融合的来源
type FusionTrigger int

const (
	// TriggerCollision 物理碰撞
	TriggerCollision FusionTrigger = iota
	// TriggerTap 连续点击两个相同令牌
	TriggerTap
)

func (t FusionTrigger) String() string {
	if t == TriggerTap {
		return "tap"
	}
	return "collision"
}

// 果冻动画参数
const (
	jellyAmplitude = 0.25
	jellyWobbles   = 2.5
)

// FusionStats 融合统计
type FusionStats struct {
	Started   int // 通过前置检查、进入融合流程
	Committed int // 已提交（败者已移除）
	Aborted   int // 提交前发现令牌失效而放弃
	Restored  int // 动画结束，存活者恢复
}

// FusionCoordinator 融合状态机
//
// 令牌状态：空闲 → 处理中 → 动画中 → 空闲。
// 碰撞和点击两条路径都从 AttemptFusion 进入，IsProcessing 在任何延迟动作注册之前同步检查并设置，
// 是两条路径之间唯一的互斥手段。
//
// 提交延迟 fusionCommitDelay 让同一步内重复上报的碰撞对先撞上 IsProcessing 检查；
// 动画时长 fusionAnimation 结束后存活者恢复并补充一个新令牌。
type FusionCoordinator struct {
	em        *ecs.EntityManager
	world     *physics.World
	registry  *TokenRegistry
	pool      *ContentPool
	combo     *ComboTracker
	fireworks *FireworkSystem
	scheduler *game.Scheduler
	rng       RandomSource
	sounds    SoundPlayer
	notifier  Notifier
	drag      DragSource

	timing       config.TimingConfig
	restoreSpeed int

	// 上一次为内容不同的碰撞播放音效的时间
	lastCollisionSound    time.Duration
	hasCollisionSoundTime bool

	stats FusionStats
}

// FusionDeps 融合协调器的协作者
// Sounds、Notifier、Drag 可为 nil
type FusionDeps struct {
	EntityManager *ecs.EntityManager
	World         *physics.World
	Registry      *TokenRegistry
	Pool          *ContentPool
	Combo         *ComboTracker
	Fireworks     *FireworkSystem
	Scheduler     *game.Scheduler
	Random        RandomSource
	Sounds        SoundPlayer
	Notifier      Notifier
	Drag          DragSource
}

// NewFusionCoordinator 创建融合协调器
func NewFusionCoordinator(deps FusionDeps, cfg *config.GameConfig) *FusionCoordinator {
	c := &FusionCoordinator{
		em:           deps.EntityManager,
		world:        deps.World,
		registry:     deps.Registry,
		pool:         deps.Pool,
		combo:        deps.Combo,
		fireworks:    deps.Fireworks,
		scheduler:    deps.Scheduler,
		rng:          deps.Random,
		sounds:       deps.Sounds,
		notifier:     deps.Notifier,
		drag:         deps.Drag,
		timing:       cfg.Timing,
		restoreSpeed: cfg.Physics.RestoreSpeed,
	}
	if c.sounds == nil {
		c.sounds = silentSounds{}
	}
	if c.drag == nil {
		c.drag = noDrag{}
	}
	return c
}

// SetDragSource 接入拖拽来源（输入系统创建晚于协调器）
func (c *FusionCoordinator) SetDragSource(drag DragSource) {
	if drag == nil {
		drag = noDrag{}
	}
	c.drag = drag
}

// Stats 返回融合统计
func (c *FusionCoordinator) Stats() FusionStats {
	return c.stats
}

// HandleCollisions 处理一个物理步内新开始的接触
// 内容相同的碰撞总是播放碰撞音效；内容不同的碰撞在节流间隔内只播一次
func (c *FusionCoordinator) HandleCollisions(pairs []physics.Pair) {
	for _, pair := range pairs {
		a, okA := c.registry.EntityForBody(pair.A)
		b, okB := c.registry.EntityForBody(pair.B)
		if !okA || !okB {
			continue
		}
		tokenA, _ := c.registry.Token(a)
		tokenB, _ := c.registry.Token(b)
		sameContent := tokenA.Content == tokenB.Content

		if sameContent {
			c.sounds.PlaySound(game.SoundCollision)
			c.AttemptFusion(a, b, TriggerCollision)
			continue
		}

		now := c.scheduler.Now()
		if !c.hasCollisionSoundTime || now-c.lastCollisionSound > c.timing.CollisionSoundThrottle {
			c.sounds.PlaySound(game.SoundCollision)
			c.lastCollisionSound = now
			c.hasCollisionSoundTime = true
		}
	}
}

// AttemptFusion 尝试融合两个令牌
//
// 前置条件：两者都在场上、内容相同、都不在融合中、不是同一个令牌；不满足时静默返回 false。
// 存活者：点击触发时为 b（后点的）；碰撞触发时为正被拖住的那个，否则随机。
func (c *FusionCoordinator) AttemptFusion(a, b ecs.EntityID, trigger FusionTrigger) bool {
	if a == b {
		return false
	}
	tokenA, okA := c.registry.Token(a)
	tokenB, okB := c.registry.Token(b)
	if !okA || !okB {
		return false
	}
	if tokenA.Content != tokenB.Content || tokenA.IsProcessing || tokenB.IsProcessing {
		return false
	}

	survivor, loser := c.chooseSurvivor(a, b, trigger)

	tokenA.IsProcessing = true
	tokenB.IsProcessing = true
	c.stats.Started++

	if c.notifier != nil {
		c.notifier.ShowToast(fusionMessage(c.pool, tokenA.Content, trigger))
	}
	log.Printf("[FusionCoordinator] %s fusion %d + %d (%q), survivor %d", trigger, a, b, tokenA.Content, survivor)

	c.scheduler.After(c.timing.FusionCommitDelay, func() {
		c.commit(survivor, loser)
	})
	return true
}

func (c *FusionCoordinator) chooseSurvivor(a, b ecs.EntityID, trigger FusionTrigger) (survivor, loser ecs.EntityID) {
	if trigger == TriggerTap {
		return b, a
	}
	if dragged, ok := c.drag.Dragged(); ok {
		if dragged == a {
			return a, b
		}
		if dragged == b {
			return b, a
		}
	}
	if c.rng.Float64() < 0.5 {
		return b, a
	}
	return a, b
}

// commit 提交融合：连击与烟花、移除败者、存活者冻结并播放果冻动画
func (c *FusionCoordinator) commit(survivor, loser ecs.EntityID) {
	survivorToken, okS := c.registry.Token(survivor)
	loserToken, okL := c.registry.Token(loser)
	if !okS || !okL || !survivorToken.IsProcessing || !loserToken.IsProcessing {
		if okS {
			survivorToken.IsProcessing = false
		}
		if okL {
			loserToken.IsProcessing = false
		}
		c.stats.Aborted++
		log.Printf("[FusionCoordinator] Fusion %d + %d aborted: token invalidated", survivor, loser)
		return
	}

	x, y, _ := c.world.Position(survivorToken.Body)
	level := c.combo.OnFusionCommitted(c.scheduler.Now())
	if level > 1 && c.notifier != nil {
		c.notifier.ShowCombo(level)
	}
	c.fireworks.Trigger(x, y, level)

	c.registry.Remove(loser)

	survivorToken.IsAnimating = true
	c.world.SetStatic(survivorToken.Body, true)
	c.em.AddComponent(survivor, &components.JellyAnimationComponent{
		Duration:  c.timing.FusionAnimation.Seconds(),
		Amplitude: jellyAmplitude,
		Wobbles:   jellyWobbles,
	})
	c.stats.Committed++
	log.Printf("[FusionCoordinator] Committed %d <- %d at (%.0f, %.0f), combo %d", survivor, loser, x, y, level)

	c.scheduler.After(c.timing.FusionAnimation, func() {
		c.restore(survivor)
	})
}

// restore 动画结束：恢复动力学、随机速度、清除标志、补充一个令牌
// 存活者已不在场上（例如切换了类别）时什么都不做
func (c *FusionCoordinator) restore(survivor ecs.EntityID) {
	token, ok := c.registry.Token(survivor)
	if !ok {
		return
	}

	ecs.RemoveComponent[*components.JellyAnimationComponent](c.em, survivor)
	if scale, ok := ecs.GetComponent[*components.ScaleComponent](c.em, survivor); ok {
		scale.ScaleX, scale.ScaleY = 1, 1
	}

	token.IsAnimating = false
	c.world.SetStatic(token.Body, false)
	c.world.SetVelocity(token.Body,
		float64(randInt(c.rng, -c.restoreSpeed, c.restoreSpeed)),
		float64(randInt(c.rng, -c.restoreSpeed, c.restoreSpeed)))
	token.IsProcessing = false
	c.stats.Restored++

	c.registry.SpawnRandom()
}

// fusionMessage 融合提示文字
func fusionMessage(pool *ContentPool, content string, trigger FusionTrigger) string {
	label := content
	if pool != nil {
		label = pool.Label(content)
	}
	if trigger == TriggerTap {
		return fmt.Sprintf("Tapped two %s!", label)
	}
	return fmt.Sprintf("%s and %s collided!", label, label)
}
