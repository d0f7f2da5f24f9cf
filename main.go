package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gonewx/mergepop/pkg/app"
	"github.com/gonewx/mergepop/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	// 环境变量（MERGEPOP_*）作为默认值，命令行参数优先
	cfg, err := app.LoadEnvConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "环境变量无效: %v\n", err)
		os.Exit(1)
	}
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "显示详细调试信息")
	flag.StringVar(&cfg.Category, "category", cfg.Category, "启动类别（numbers / letters / animals / fruits）")
	flag.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "玩法配置文件（默认使用内嵌的 data/game.yaml）")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "随机种子（0 表示使用当前时间）")
	flag.BoolVar(&cfg.Mute, "mute", cfg.Mute, "静音运行")
	flag.Parse()

	embedded.Init(dataFS)

	gameApp, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}

	w, h := gameApp.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Merge Pop")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(gameApp); err != nil {
		fmt.Fprintf(os.Stderr, "游戏异常退出: %v\n", err)
		os.Exit(1)
	}
}
