// Package main 融合流程的无界面验证程序
//
// 用固定种子跑若干局随机操作（点击、拖动、切换类别、随机添加），
// 每个 tick 之后检查场上状态是否一致，发现问题时以非零状态码退出。
//
// 用法：
//
//	go run ./cmd/verify_fusion [--runs 20] [--steps 3600] [--seed 1] [--verbose]
//
// 检查项：
//   - 注册表、物理世界、ECS 三者的令牌数量一致，且互相能找到对方
//   - 令牌数量不超过上限
//   - 正在做果冻动画的令牌一定处于融合流程中，且刚体为静态
//   - 融合统计：提交 + 放弃 <= 开始，恢复 <= 提交
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/systems"
)

var (
	runs    = flag.Int("runs", 20, "运行局数")
	steps   = flag.Int("steps", 3600, "每局 tick 数（60 tick = 1 秒）")
	seed    = flag.Int64("seed", 1, "第一局的随机种子，后续每局加 1")
	verbose = flag.Bool("verbose", false, "显示详细调试信息")
)

// 每个 tick 触发各种操作的概率
const (
	tapPairChance   = 0.02
	dragChance      = 0.01
	addRandomChance = 0.005
	switchChance    = 0.001
)

// verifier 驱动一局并记录违规
type verifier struct {
	session *systems.Session
	actions *rand.Rand
	step    int
	errors  []string
}

func newVerifier(cfg *config.GameConfig, seed int64) (*verifier, error) {
	session, err := systems.NewSession(cfg, rand.New(rand.NewSource(seed)), systems.SessionOptions{})
	if err != nil {
		return nil, err
	}
	if err := session.SetCategory(cfg.DefaultCategory); err != nil {
		return nil, err
	}
	return &verifier{
		session: session,
		actions: rand.New(rand.NewSource(seed ^ 0x5eed)),
	}, nil
}

func (v *verifier) failf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf("step %d: ", v.step)+fmt.Sprintf(format, args...))
}

func (v *verifier) run(n int) {
	for v.step = 0; v.step < n; v.step++ {
		v.act()
		v.session.Update()
		v.check()
		if len(v.errors) > 0 {
			return
		}
	}
}

// act 随机执行一个操作
func (v *verifier) act() {
	r := v.actions.Float64()
	switch {
	case r < switchChance:
		categories := v.session.Pool().Categories()
		name := categories[v.actions.Intn(len(categories))]
		if err := v.session.SetCategory(name); err != nil {
			v.failf("SetCategory(%q): %v", name, err)
		}
	case r < switchChance+addRandomChance:
		v.session.AddRandom()
	case r < switchChance+addRandomChance+dragChance:
		v.drag()
	case r < switchChance+addRandomChance+dragChance+tapPairChance:
		v.tapPair()
	}
}

func (v *verifier) position(id ecs.EntityID) (float64, float64, bool) {
	token, ok := v.session.Registry().Token(id)
	if !ok {
		return 0, 0, false
	}
	return v.session.World().Position(token.Body)
}

func (v *verifier) tap(id ecs.EntityID) {
	x, y, ok := v.position(id)
	if !ok {
		return
	}
	v.session.PointerDown(x, y)
	v.session.PointerUp(x, y)
}

// tapPair 找两个内容相同的令牌依次点击
func (v *verifier) tapPair() {
	byContent := make(map[string][]ecs.EntityID)
	for _, id := range v.session.Registry().IDs() {
		token, _ := v.session.Registry().Token(id)
		byContent[token.Content] = append(byContent[token.Content], id)
	}
	for _, ids := range byContent {
		if len(ids) >= 2 {
			v.tap(ids[0])
			v.tap(ids[1])
			return
		}
	}
}

// drag 按住一个令牌拖过半个屏幕
func (v *verifier) drag() {
	ids := v.session.Registry().IDs()
	if len(ids) == 0 {
		return
	}
	x, y, ok := v.position(ids[v.actions.Intn(len(ids))])
	if !ok {
		return
	}
	cfg := v.session.Config()
	tx := v.actions.Float64() * float64(cfg.Layout.Width)
	ty := cfg.Layout.TopStrip + v.actions.Float64()*(float64(cfg.Layout.Height)-cfg.Layout.TopStrip)

	v.session.PointerDown(x, y)
	const frames = 10
	for i := 1; i <= frames; i++ {
		f := float64(i) / frames
		v.session.PointerMove(x+(tx-x)*f, y+(ty-y)*f)
		v.session.Update()
		v.check()
	}
	v.session.PointerUp(tx, ty)
}

// check 检查场上状态的一致性
func (v *verifier) check() {
	s := v.session
	cfg := s.Config()

	count := s.Registry().Count()
	if count > cfg.Population.MaxTokens {
		v.failf("token count %d exceeds max %d", count, cfg.Population.MaxTokens)
	}
	if wc := s.World().Count(); wc != count {
		v.failf("world has %d bodies, registry has %d tokens", wc, count)
	}

	entities := ecs.GetEntitiesWith1[*components.TokenComponent](s.EntityManager())
	if len(entities) != count {
		v.failf("ECS has %d token entities, registry has %d", len(entities), count)
	}
	for _, id := range entities {
		token, ok := s.Registry().Token(id)
		if !ok {
			v.failf("entity %d has a token component but is not registered", id)
			continue
		}
		body, ok := s.World().Body(token.Body)
		if !ok {
			v.failf("token %d refers to missing body %d", id, token.Body)
			continue
		}
		if owner, ok := s.Registry().EntityForBody(token.Body); !ok || owner != id {
			v.failf("body %d maps to entity %d, want %d", token.Body, owner, id)
		}
		if token.IsAnimating && !token.IsProcessing {
			v.failf("token %d is animating but not processing", id)
		}
		if token.IsAnimating && !body.Static {
			v.failf("token %d is animating but its body is dynamic", id)
		}
	}

	stats := s.Fusion().Stats()
	if stats.Committed+stats.Aborted > stats.Started {
		v.failf("stats: committed %d + aborted %d > started %d", stats.Committed, stats.Aborted, stats.Started)
	}
	if stats.Restored > stats.Committed {
		v.failf("stats: restored %d > committed %d", stats.Restored, stats.Committed)
	}
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultGameConfig()
	failed := 0
	for i := 0; i < *runs; i++ {
		runSeed := *seed + int64(i)
		v, err := newVerifier(cfg, runSeed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
			os.Exit(1)
		}
		v.run(*steps)

		stats := v.session.Fusion().Stats()
		if len(v.errors) > 0 {
			failed++
			fmt.Printf("✗ seed %d: %d violation(s)\n", runSeed, len(v.errors))
			for _, e := range v.errors {
				fmt.Printf("    %s\n", e)
			}
			continue
		}
		fmt.Printf("✓ seed %d: started %d, committed %d, aborted %d, restored %d, tokens %d\n",
			runSeed, stats.Started, stats.Committed, stats.Aborted, stats.Restored, v.session.Registry().Count())
	}

	if failed > 0 {
		fmt.Printf("\n%d/%d runs failed\n", failed, *runs)
		os.Exit(1)
	}
	fmt.Printf("\nall %d runs passed\n", *runs)
}
