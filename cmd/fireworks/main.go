// Package main 烟花效果预览工具
//
// 用法：
//
//	go run ./cmd/fireworks [--level 1] [--auto-play] [--seed 0]
//
// 操作：
//
//	鼠标点击         - 在光标处放一个烟花
//	Left/Right      - 切换连击等级（1~5）
//	1-5             - 直接选择连击等级
//	Space           - 在屏幕中心放一个烟花
//	A               - 开关自动播放（每秒一个，等级循环）
//	R               - 清空所有粒子
//	Q/Escape        - 退出
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var (
	levelFlag    = flag.Int("level", 1, "初始连击等级（1~5）")
	autoPlayFlag = flag.Bool("auto-play", false, "每秒自动放一个烟花，等级循环")
	seedFlag     = flag.Int64("seed", 0, "随机种子（0 表示使用当前时间）")
	verboseFlag  = flag.Bool("verbose", false, "显示详细调试信息")
)

var errQuit = errors.New("quit requested")

var levelKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// autoPlayInterval 自动播放间隔（tick）
const autoPlayInterval = 60

// FireworkViewer 烟花预览，只使用 Session 的特效与渲染部分，场上没有令牌
type FireworkViewer struct {
	session  *systems.Session
	cfg      *config.GameConfig
	level    int
	autoPlay bool
	ticks    int
	launched int
}

func NewFireworkViewer(cfg *config.GameConfig, seed int64, level int, autoPlay bool) (*FireworkViewer, error) {
	session, err := systems.NewSession(cfg, rand.New(rand.NewSource(seed)), systems.SessionOptions{})
	if err != nil {
		return nil, err
	}
	v := &FireworkViewer{
		session:  session,
		cfg:      cfg,
		level:    clampLevel(level, cfg.Combo.MaxLevel),
		autoPlay: autoPlay,
	}
	// 启动时在中心放一个，避免空白屏幕
	v.launchCenter()
	return v, nil
}

func clampLevel(level, maxLevel int) int {
	if level < 1 {
		return 1
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
}

func (v *FireworkViewer) launch(x, y float64) {
	n := v.session.Fireworks().Trigger(x, y, v.level)
	v.launched++
	log.Printf("[Fireworks] Level %d at (%.0f, %.0f): %d particles, %d active",
		v.level, x, y, n, v.session.Fireworks().Count())
}

func (v *FireworkViewer) launchCenter() {
	top := v.cfg.Layout.TopStrip
	h := float64(v.cfg.Layout.Height)
	v.launch(float64(v.cfg.Layout.Width)/2, top+(h-top)/2)
}

func (v *FireworkViewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		v.level = v.level%v.cfg.Combo.MaxLevel + 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		v.level--
		if v.level < 1 {
			v.level = v.cfg.Combo.MaxLevel
		}
	}
	for i, key := range levelKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.level = clampLevel(i+1, v.cfg.Combo.MaxLevel)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		v.autoPlay = !v.autoPlay
		v.ticks = 0
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.session.Fireworks().Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.launchCenter()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		v.launch(float64(x), float64(y))
	}

	if v.autoPlay {
		v.ticks++
		if v.ticks >= autoPlayInterval {
			v.ticks = 0
			v.launchCenter()
			v.level = v.level%v.cfg.Combo.MaxLevel + 1
		}
	}

	v.session.UpdateEffects()
	return nil
}

func (v *FireworkViewer) Draw(screen *ebiten.Image) {
	v.session.Draw(screen)

	auto := "off"
	if v.autoPlay {
		auto = "on"
	}
	status := fmt.Sprintf("Level: %d/%d  Particles: %d/%d  Launched: %d  Auto: %s  FPS: %.0f\n"+
		"Click: launch  Left/Right, 1-5: level  Space: center  A: auto  R: clear  Q: quit",
		v.level, v.cfg.Combo.MaxLevel,
		v.session.Fireworks().Count(), v.cfg.Fireworks.MaxParticles,
		v.launched, auto, ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, status, 8, 8)
}

func (v *FireworkViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.cfg.Layout.Width, v.cfg.Layout.Height
}

func main() {
	flag.Parse()
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := config.DefaultGameConfig()
	viewer, err := NewFireworkViewer(cfg, seed, *levelFlag, *autoPlayFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Layout.Width, cfg.Layout.Height)
	ebiten.SetWindowTitle("Merge Pop - Firework Viewer")
	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, errQuit) {
		fmt.Fprintf(os.Stderr, "异常退出: %v\n", err)
		os.Exit(1)
	}
}
