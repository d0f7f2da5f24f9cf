package systems

import (
	"log"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
	"github.com/gonewx/mergepop/pkg/physics"
)

// TokenRegistry 场上令牌的权威列表
//
// 职责：
//   - 生成令牌（ECS 实体 + 物理刚体），数量不超过 population.maxTokens
//   - 决定新令牌的内容（数量多时复制场上已有内容，提高配对机会）
//   - 切换类别：清空后分批生成
//   - 每个物理步把令牌夹回合法区域
type TokenRegistry struct {
	em        *ecs.EntityManager
	world     *physics.World
	pool      *ContentPool
	scheduler *game.Scheduler
	rng       RandomSource
	sounds    SoundPlayer
	cfg       *config.GameConfig

	tokens   []ecs.EntityID // 按创建顺序
	byBody   map[physics.BodyID]ecs.EntityID
	noRotate map[string]bool

	staggerTimer game.TimerID
}

// NewTokenRegistry 创建令牌注册表
// sounds 可为 nil（不播放出现音效）
func NewTokenRegistry(em *ecs.EntityManager, world *physics.World, pool *ContentPool,
	scheduler *game.Scheduler, rng RandomSource, sounds SoundPlayer, cfg *config.GameConfig) *TokenRegistry {
	if sounds == nil {
		sounds = silentSounds{}
	}
	noRotate := make(map[string]bool)
	for _, content := range cfg.Physics.NoRotate {
		noRotate[content] = true
	}
	return &TokenRegistry{
		em:        em,
		world:     world,
		pool:      pool,
		scheduler: scheduler,
		rng:       rng,
		sounds:    sounds,
		cfg:       cfg,
		byBody:    make(map[physics.BodyID]ecs.EntityID),
		noRotate:  noRotate,
	}
}

// Spawn 在随机位置生成一个令牌
// 数量已达上限时拒绝并返回 false
func (r *TokenRegistry) Spawn(content, color string) (ecs.EntityID, bool) {
	if r.Full() {
		log.Printf("[TokenRegistry] Spawn %q rejected: max tokens reached (%d)", content, r.cfg.Population.MaxTokens)
		return 0, false
	}
	radius := r.cfg.Layout.TokenRadius
	w := float64(r.cfg.Layout.Width)
	h := float64(r.cfg.Layout.Height)
	top := r.cfg.Layout.TopStrip

	x := randInt(r.rng, int(radius*2), int(w-radius*2))
	y := randInt(r.rng, int(top+radius), int(h-radius*2))
	return r.SpawnAt(content, color, float64(x), float64(y))
}

// SpawnAt 在指定圆心生成令牌，初速度在 [-spawnSpeed, spawnSpeed] 内随机
func (r *TokenRegistry) SpawnAt(content, color string, x, y float64) (ecs.EntityID, bool) {
	if r.Full() {
		log.Printf("[TokenRegistry] Spawn %q rejected: max tokens reached (%d)", content, r.cfg.Population.MaxTokens)
		return 0, false
	}

	r.sounds.PlaySound(game.SoundShow)

	radius := r.cfg.Layout.TokenRadius
	body := r.world.AddCircle(x, y, radius)
	speed := r.cfg.Physics.SpawnSpeed
	r.world.SetVelocity(body,
		float64(randInt(r.rng, -speed, speed)),
		float64(randInt(r.rng, -speed, speed)))

	id := r.em.CreateEntity()
	r.em.AddComponent(id, &components.TokenComponent{
		Content:  content,
		Color:    color,
		Body:     body,
		Radius:   radius,
		NoRotate: r.noRotate[content],
	})
	r.em.AddComponent(id, &components.PositionComponent{X: x, Y: y})
	r.em.AddComponent(id, &components.ScaleComponent{ScaleX: 1, ScaleY: 1})

	r.tokens = append(r.tokens, id)
	r.byBody[body] = id

	log.Printf("[TokenRegistry] Spawned token %d %q at (%.0f, %.0f), population %d", id, content, x, y, len(r.tokens))
	return id, true
}

// SpawnRandom 生成一个内容与颜色随机的令牌（补充、随机添加按钮、分批生成都走这里）
func (r *TokenRegistry) SpawnRandom() (ecs.EntityID, bool) {
	return r.Spawn(r.ContentForNewToken(), r.RandomColor())
}

// ContentForNewToken 决定新令牌的内容
// 令牌数超过 copyThreshold 时从场上随机复制一个已有内容，否则从活动类别中抽取
func (r *TokenRegistry) ContentForNewToken() string {
	if len(r.tokens) > r.cfg.Population.CopyThreshold {
		id := pick(r.rng, r.tokens)
		if token, ok := r.Token(id); ok {
			return token.Content
		}
	}
	return r.pool.Draw(r.rng)
}

// RandomColor 从调色板中随机取一个颜色
func (r *TokenRegistry) RandomColor() string {
	return pick(r.rng, r.cfg.Palette)
}

// SetCategory 切换内容类别
//
// 重复选择当前类别且场上已有令牌时不做任何事。
// 否则清空全部令牌，并每隔 staggerInterval 生成一个，共 initialBatch 个（不超过上限）。
// 新的切换会取消上一次尚未完成的分批生成。
func (r *TokenRegistry) SetCategory(name string) error {
	if name == r.pool.Active() && len(r.tokens) > 0 {
		return nil
	}
	if err := r.pool.SetActive(name); err != nil {
		return err
	}

	r.Clear()
	log.Printf("[TokenRegistry] Category switched to %s", name)

	batch := r.cfg.Population.InitialBatch
	if batch <= 0 {
		return nil
	}
	interval := r.cfg.Population.StaggerInterval
	spawned := 0
	var tick func()
	tick = func() {
		r.staggerTimer = 0
		r.SpawnRandom()
		spawned++
		if spawned < batch && !r.Full() {
			r.staggerTimer = r.scheduler.After(interval, tick)
		}
	}
	r.staggerTimer = r.scheduler.After(interval, tick)
	return nil
}

// Clear 移除全部令牌并取消分批生成
func (r *TokenRegistry) Clear() {
	if r.staggerTimer != 0 {
		r.scheduler.Cancel(r.staggerTimer)
		r.staggerTimer = 0
	}
	for _, id := range append([]ecs.EntityID(nil), r.tokens...) {
		r.Remove(id)
	}
}

// Remove 从注册表、ECS 和物理世界中移除令牌
// 令牌不存在时返回 false，重复移除是安全的
func (r *TokenRegistry) Remove(id ecs.EntityID) bool {
	token, ok := r.Token(id)
	if !ok {
		return false
	}
	r.world.Remove(token.Body)
	delete(r.byBody, token.Body)
	r.em.DestroyEntityNow(id)

	for i, tid := range r.tokens {
		if tid == id {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			break
		}
	}
	return true
}

// Token 返回已注册令牌的组件
func (r *TokenRegistry) Token(id ecs.EntityID) (*components.TokenComponent, bool) {
	return ecs.GetComponent[*components.TokenComponent](r.em, id)
}

// Has 令牌是否仍在场上
func (r *TokenRegistry) Has(id ecs.EntityID) bool {
	_, ok := r.Token(id)
	return ok
}

// Count 场上令牌数
func (r *TokenRegistry) Count() int {
	return len(r.tokens)
}

// Full 是否已达上限
func (r *TokenRegistry) Full() bool {
	return len(r.tokens) >= r.cfg.Population.MaxTokens
}

// IDs 按创建顺序返回全部令牌
func (r *TokenRegistry) IDs() []ecs.EntityID {
	return append([]ecs.EntityID(nil), r.tokens...)
}

// EntityForBody 刚体对应的令牌
func (r *TokenRegistry) EntityForBody(body physics.BodyID) (ecs.EntityID, bool) {
	id, ok := r.byBody[body]
	return id, ok
}

// TokenAt 返回覆盖点 (x, y) 的令牌，多个重叠时取最上层（最后创建）的
func (r *TokenRegistry) TokenAt(x, y float64) (ecs.EntityID, bool) {
	body, ok := r.world.BodyAt(x, y)
	if !ok {
		return 0, false
	}
	return r.EntityForBody(body)
}

// ClampPositions 把每个令牌的圆心夹回合法区域（不进入顶部控制条）
// 位置被修正的令牌速度清零，避免持续顶着边界
func (r *TokenRegistry) ClampPositions() {
	layout := r.cfg.Layout
	radius := layout.TokenRadius
	minX, maxX := radius, float64(layout.Width)-radius
	minY, maxY := layout.TopStrip+radius, float64(layout.Height)-radius

	for _, id := range r.tokens {
		token, ok := r.Token(id)
		if !ok {
			continue
		}
		x, y, ok := r.world.Position(token.Body)
		if !ok {
			continue
		}
		cx := clamp(x, minX, maxX)
		cy := clamp(y, minY, maxY)
		if cx != x || cy != y {
			r.world.SetPosition(token.Body, cx, cy)
			r.world.SetVelocity(token.Body, 0, 0)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
