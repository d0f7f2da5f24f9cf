package systems

import (
	"image/color"
	"log"
	"math"
	"slices"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/game"
)

// 烟花参数中固定的部分（随连击等级 p 线性放大）
const (
	innerRingMinDist = 25.0
	coreJitter       = 4
)

// FireworkSystem 融合烟花
//
// 每次触发生成三组粒子：两圈径向爆炸、向下飘落的碎星、爆心的白色闪光。
// 粒子是独立于令牌物理的 ECS 实体，由渲染时钟逐帧推进。
// 同屏粒子数达到上限后，触发只播放音效不再生成粒子。
type FireworkSystem struct {
	em      *ecs.EntityManager
	rng     RandomSource
	sounds  SoundPlayer
	cfg     config.FireworkConfig
	palette []color.RGBA
	core    color.RGBA

	count int
}

// NewFireworkSystem 创建烟花系统
// palette 为空时所有粒子使用爆心颜色
func NewFireworkSystem(em *ecs.EntityManager, rng RandomSource, sounds SoundPlayer,
	cfg config.FireworkConfig, palette []color.RGBA) *FireworkSystem {
	if sounds == nil {
		sounds = silentSounds{}
	}
	core, err := config.ParseColor(cfg.CoreColor)
	if err != nil {
		core = color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return &FireworkSystem{em: em, rng: rng, sounds: sounds, cfg: cfg, palette: palette, core: core}
}

// Trigger 在 (x, y) 放一个烟花，返回实际生成的粒子数
func (s *FireworkSystem) Trigger(x, y float64, comboLevel int) int {
	s.sounds.PlaySound(game.SoundFirework)
	s.sounds.PlayRandomSound(game.SoundGroupCheer)
	s.sounds.PlayRandomSound(game.SoundGroupPraise)

	if s.full() {
		log.Printf("[FireworkSystem] Particle cap reached (%d), sound only", s.cfg.MaxParticles)
		return 0
	}

	p := comboLevel
	if p < 1 {
		p = 1
	}
	if p > 5 {
		p = 5
	}
	pf := float64(p)

	spawned := 0
	spawned += s.spawnRing(x, y, s.cfg.InnerRingBase+p*2, innerRingMinDist, 45+pf*5, p)
	spawned += s.spawnRing(x, y, s.cfg.OuterRingBase+p*3, 45+pf*5, 90+pf*12, p)
	spawned += s.spawnEmbers(x, y, s.cfg.EmberBase+p*2, pf)
	spawned += s.spawnCore(x, y, s.cfg.CoreBase+p, pf)
	return spawned
}

// spawnRing 一圈径向粒子：角度均分加少量抖动，飞行距离决定初速度
func (s *FireworkSystem) spawnRing(x, y float64, count int, minDist, maxDist float64, p int) int {
	pf := float64(p)
	spawned := 0
	for i := 0; i < count; i++ {
		if s.full() {
			break
		}
		angle := float64(i)/float64(count)*2*math.Pi + (s.rng.Float64()-0.5)*(math.Pi/10)
		dist := float64(randInt(s.rng, int(minDist), int(maxDist)))
		speed := dist / float64(randInt(s.rng, 18-p, 26-p))

		s.spawn(components.FireworkParticleComponent{
			X:      x,
			Y:      y,
			VX:     math.Cos(angle) * speed,
			VY:     math.Sin(angle) * speed,
			Size:   randFloat(s.rng, 3+pf*0.3, 5+pf*0.5),
			Color:  s.randomColor(),
			MaxAge: randInt(s.rng, 32+p*3, 45+p*4),
		})
		spawned++
	}
	return spawned
}

// spawnEmbers 从爆心向下飘落的小碎星
func (s *FireworkSystem) spawnEmbers(x, y float64, count int, pf float64) int {
	spawned := 0
	for i := 0; i < count; i++ {
		if s.full() {
			break
		}
		spread := (s.rng.Float64() - 0.5) * (math.Pi / 3)
		speed := float64(randInt(s.rng, 1, 2)) + pf*0.3

		s.spawn(components.FireworkParticleComponent{
			X:      x,
			Y:      y,
			VX:     math.Cos(spread) * speed * 0.3,
			VY:     math.Sin(spread)*speed + 1.5,
			Size:   float64(randInt(s.rng, 2, 3)),
			Color:  s.randomColor(),
			MaxAge: randInt(s.rng, 35, 55),
		})
		spawned++
	}
	return spawned
}

// spawnCore 爆心短命亮点
func (s *FireworkSystem) spawnCore(x, y float64, count int, pf float64) int {
	spawned := 0
	for i := 0; i < count; i++ {
		if s.full() {
			break
		}
		s.spawn(components.FireworkParticleComponent{
			X:      x + float64(randInt(s.rng, -coreJitter, coreJitter)),
			Y:      y + float64(randInt(s.rng, -coreJitter, coreJitter)),
			Size:   2.5 + pf*0.2,
			Color:  s.core,
			MaxAge: randInt(s.rng, 12, 20),
		})
		spawned++
	}
	return spawned
}

func (s *FireworkSystem) spawn(particle components.FireworkParticleComponent) {
	particle.Alpha = 1
	id := s.em.CreateEntity()
	s.em.AddComponent(id, &particle)
	s.count++
}

func (s *FireworkSystem) full() bool {
	return s.count >= s.cfg.MaxParticles
}

func (s *FireworkSystem) randomColor() color.RGBA {
	if len(s.palette) == 0 {
		return s.core
	}
	return pick(s.rng, s.palette)
}

// Update 推进一帧：老化、移除到期粒子、积分、阻尼、重力、淡出
func (s *FireworkSystem) Update() {
	for _, id := range s.particles() {
		particle, ok := ecs.GetComponent[*components.FireworkParticleComponent](s.em, id)
		if !ok {
			continue
		}

		particle.Age++
		if particle.Age >= particle.MaxAge {
			s.em.DestroyEntityNow(id)
			s.count--
			continue
		}

		particle.X += particle.VX
		particle.Y += particle.VY
		particle.VX *= s.cfg.Damping
		particle.VY *= s.cfg.Damping
		particle.VY += s.cfg.Gravity

		particle.Alpha = 1 - float64(particle.Age)/float64(particle.MaxAge)
	}
}

// Count 当前粒子数
func (s *FireworkSystem) Count() int {
	return s.count
}

// Clear 移除全部粒子
func (s *FireworkSystem) Clear() {
	for _, id := range s.particles() {
		s.em.DestroyEntityNow(id)
	}
	s.count = 0
}

// Particles 按创建顺序返回粒子（渲染用）
func (s *FireworkSystem) Particles() []*components.FireworkParticleComponent {
	ids := s.particles()
	result := make([]*components.FireworkParticleComponent, 0, len(ids))
	for _, id := range ids {
		if particle, ok := ecs.GetComponent[*components.FireworkParticleComponent](s.em, id); ok {
			result = append(result, particle)
		}
	}
	return result
}

func (s *FireworkSystem) particles() []ecs.EntityID {
	ids := ecs.GetEntitiesWith1[*components.FireworkParticleComponent](s.em)
	slices.Sort(ids)
	return ids
}
