package systems

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/config"
	"github.com/gonewx/mergepop/pkg/ecs"
	"github.com/gonewx/mergepop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	backgroundColor = color.RGBA{0xF0, 0xF4, 0xF8, 0xff}
	stripColor      = color.RGBA{0xFF, 0xFF, 0xFF, 0xff}
	stripLineColor  = color.RGBA{0xD0, 0xD8, 0xE0, 0xff}
	buttonColor     = color.RGBA{0x4C, 0xC9, 0xF0, 0xff}
	buttonActive    = color.RGBA{0x72, 0x09, 0xB7, 0xff}
	buttonPressed   = color.RGBA{0x3A, 0x0C, 0xA3, 0xff}
	toastColor      = color.RGBA{0x22, 0x22, 0x22, 0xdd}
	darkTextColor   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	lightTextColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

const (
	tokenFontSize  = 34.0
	buttonFontSize = 18.0
	toastFontSize  = 22.0
	comboFontSize  = 54.0

	// 粒子贴图边长，粒子 Size 为半径
	particleTexture = 16

	comboPopDuration = 200 * time.Millisecond
	toastFadeOut     = 300 * time.Millisecond
)

// RenderSystem 绘制整个游戏画面
//
// 绘制顺序：背景 → 顶部控制条与按钮 → 令牌 → 烟花粒子 → 提示条 → 连击横幅。
// 令牌的圆形底图按颜色缓存，旋转与果冻缩放通过 GeoM 施加；
// 粒子复用同一张圆点贴图，按帧拼成一个顶点数组一次 DrawTriangles。
type RenderSystem struct {
	entityManager *ecs.EntityManager
	registry      *TokenRegistry
	pool          *ContentPool
	fireworks     *FireworkSystem
	buttons       *ButtonSystem
	toasts        *ToastSystem
	layout        config.LayoutConfig
	timing        config.TimingConfig

	tokenFace  *text.GoTextFace
	buttonFace *text.GoTextFace
	toastFace  *text.GoTextFace
	comboFace  *text.GoTextFace

	tokenImages   map[string]*ebiten.Image
	textColors    map[string]color.RGBA
	particleImage *ebiten.Image

	particleVertices []ebiten.Vertex
	particleIndices  []uint16
}

// NewRenderSystem 创建渲染系统
// 字体加载失败时只绘制图形不绘制文字
func NewRenderSystem(em *ecs.EntityManager, registry *TokenRegistry, pool *ContentPool, fireworks *FireworkSystem,
	buttons *ButtonSystem, toasts *ToastSystem, cfg *config.GameConfig) *RenderSystem {
	s := &RenderSystem{
		entityManager:    em,
		registry:         registry,
		pool:             pool,
		fireworks:        fireworks,
		buttons:          buttons,
		toasts:           toasts,
		layout:           cfg.Layout,
		timing:           cfg.Timing,
		tokenImages:      make(map[string]*ebiten.Image),
		textColors:       make(map[string]color.RGBA),
		particleVertices: make([]ebiten.Vertex, 0, cfg.Fireworks.MaxParticles*4),
		particleIndices:  make([]uint16, 0, cfg.Fireworks.MaxParticles*6),
	}

	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[RenderSystem] Warning: failed to load font: %v", err)
		return s
	}
	s.tokenFace = &text.GoTextFace{Source: source, Size: tokenFontSize}
	s.buttonFace = &text.GoTextFace{Source: source, Size: buttonFontSize}
	s.toastFace = &text.GoTextFace{Source: source, Size: toastFontSize}
	s.comboFace = &text.GoTextFace{Source: source, Size: comboFontSize}
	return s
}

// Draw 绘制一帧
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.drawStrip(screen)
	s.drawTokens(screen)
	s.drawParticles(screen)
	s.drawToast(screen)
	s.drawCombo(screen)
}

func (s *RenderSystem) drawStrip(screen *ebiten.Image) {
	w := float32(s.layout.Width)
	h := float32(s.layout.TopStrip)
	vector.DrawFilledRect(screen, 0, 0, w, h, stripColor, false)
	vector.StrokeLine(screen, 0, h, w, h, 2, stripLineColor, false)

	for _, button := range s.buttons.Buttons() {
		fill := buttonColor
		switch {
		case button.Pressed:
			fill = buttonPressed
		case button.Active:
			fill = buttonActive
		}
		vector.DrawFilledRect(screen, float32(button.X), float32(button.Y),
			float32(button.Width), float32(button.Height), fill, true)
		if button.Active {
			vector.StrokeRect(screen, float32(button.X), float32(button.Y),
				float32(button.Width), float32(button.Height), 2, darkTextColor, true)
		}
		s.drawCenteredText(screen, button.Text, s.buttonFace,
			button.X+button.Width/2, button.Y+button.Height/2, lightTextColor, 1)
	}
}

func (s *RenderSystem) drawTokens(screen *ebiten.Image) {
	for _, id := range s.registry.IDs() {
		token, ok := s.registry.Token(id)
		if !ok {
			continue
		}
		pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if !ok {
			continue
		}
		scaleX, scaleY := 1.0, 1.0
		if scale, ok := ecs.GetComponent[*components.ScaleComponent](s.entityManager, id); ok {
			scaleX, scaleY = scale.ScaleX, scale.ScaleY
		}
		angle := pos.Angle
		if token.NoRotate {
			angle = 0
		}

		img := s.tokenImage(token.Color, token.Radius)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-token.Radius, -token.Radius)
		op.GeoM.Rotate(angle)
		op.GeoM.Scale(scaleX, scaleY)
		op.GeoM.Translate(pos.X, pos.Y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)

		if s.tokenFace == nil {
			continue
		}
		textOp := &text.DrawOptions{}
		textOp.LayoutOptions.PrimaryAlign = text.AlignCenter
		textOp.LayoutOptions.SecondaryAlign = text.AlignCenter
		textOp.GeoM.Rotate(angle)
		textOp.GeoM.Scale(scaleX, scaleY)
		textOp.GeoM.Translate(pos.X, pos.Y)
		textOp.ColorScale.ScaleWithColor(s.textColor(token.Color))
		text.Draw(screen, s.pool.Label(token.Content), s.tokenFace, textOp)
	}
}

// tokenImage 按颜色缓存的令牌底图：实心圆加白色描边
func (s *RenderSystem) tokenImage(hex string, radius float64) *ebiten.Image {
	key := fmt.Sprintf("%s/%.0f", hex, radius)
	if img, ok := s.tokenImages[key]; ok {
		return img
	}
	fill, err := config.ParseColor(hex)
	if err != nil {
		fill = buttonColor
	}
	size := int(radius*2) + 2
	img := ebiten.NewImage(size, size)
	r := float32(radius)
	vector.DrawFilledCircle(img, r+1, r+1, r, fill, true)
	vector.StrokeCircle(img, r+1, r+1, r-1.5, 3, lightTextColor, true)
	s.tokenImages[key] = img
	return img
}

func (s *RenderSystem) textColor(hex string) color.RGBA {
	if c, ok := s.textColors[hex]; ok {
		return c
	}
	c := lightTextColor
	if bg, err := config.ParseColor(hex); err == nil {
		c = ContrastTextColor(bg)
	}
	s.textColors[hex] = c
	return c
}

// ContrastTextColor 浅色背景上用深色文字，深色背景上用白色文字
func ContrastTextColor(bg color.RGBA) color.RGBA {
	c, ok := colorful.MakeColor(bg)
	if !ok {
		return lightTextColor
	}
	l, _, _ := c.Lab()
	if l > 0.75 {
		return darkTextColor
	}
	return lightTextColor
}

// drawParticles 批量绘制烟花粒子
func (s *RenderSystem) drawParticles(screen *ebiten.Image) {
	particles := s.fireworks.Particles()
	if len(particles) == 0 {
		return
	}
	if s.particleImage == nil {
		s.particleImage = ebiten.NewImage(particleTexture, particleTexture)
		half := float32(particleTexture) / 2
		vector.DrawFilledCircle(s.particleImage, half, half, half, lightTextColor, true)
	}

	s.particleVertices = s.particleVertices[:0]
	s.particleIndices = s.particleIndices[:0]
	for _, p := range particles {
		base := uint16(len(s.particleVertices))
		s.particleVertices = append(s.particleVertices, particleQuad(p)...)
		s.particleIndices = append(s.particleIndices,
			base+0, base+1, base+2,
			base+1, base+3, base+2,
		)
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(s.particleVertices, s.particleIndices, s.particleImage, op)
}

// particleQuad 粒子的四个顶点：左上、右上、左下、右下
func particleQuad(p *components.FireworkParticleComponent) []ebiten.Vertex {
	r := float32(p.Color.R) / 0xff
	g := float32(p.Color.G) / 0xff
	b := float32(p.Color.B) / 0xff
	a := float32(p.Alpha)

	x0, y0 := float32(p.X-p.Size), float32(p.Y-p.Size)
	x1, y1 := float32(p.X+p.Size), float32(p.Y+p.Size)
	const t = float32(particleTexture)

	return []ebiten.Vertex{
		{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		{DstX: x1, DstY: y0, SrcX: t, SrcY: 0, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		{DstX: x0, DstY: y1, SrcX: 0, SrcY: t, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
		{DstX: x1, DstY: y1, SrcX: t, SrcY: t, ColorR: r, ColorG: g, ColorB: b, ColorA: a},
	}
}

func (s *RenderSystem) drawToast(screen *ebiten.Image) {
	message, visible := s.toasts.Toast()
	if !visible || s.toastFace == nil {
		return
	}
	alpha := ToastAlpha(s.toasts.ToastAge(), s.timing.ToastDuration)

	w, h := text.Measure(message, s.toastFace, 0)
	padX, padY := 24.0, 12.0
	cx := float64(s.layout.Width) / 2
	cy := float64(s.layout.Height) - 60

	bg := toastColor
	bg.A = uint8(float64(bg.A) * alpha)
	vector.DrawFilledRect(screen, float32(cx-w/2-padX), float32(cy-h/2-padY),
		float32(w+padX*2), float32(h+padY*2), bg, true)
	s.drawCenteredText(screen, message, s.toastFace, cx, cy, lightTextColor, alpha)
}

func (s *RenderSystem) drawCombo(screen *ebiten.Image) {
	banner := s.toasts.Combo()
	if !banner.Visible || s.comboFace == nil {
		return
	}
	age := s.toasts.ComboAge()
	scale := ComboBannerScale(age)
	alpha := 1.0
	if banner.Fading {
		alpha = ComboBannerAlpha(age, s.timing.ComboFadeAfter, s.timing.ComboHideAfter)
	}

	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.SecondaryAlign = text.AlignCenter
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(s.layout.Width)/2, s.layout.TopStrip+90)
	op.ColorScale.ScaleWithColor(banner.Color)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, banner.Text, s.comboFace, op)
}

func (s *RenderSystem) drawCenteredText(screen *ebiten.Image, str string, face *text.GoTextFace,
	cx, cy float64, clr color.RGBA, alpha float64) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.SecondaryAlign = text.AlignCenter
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, str, face, op)
}

// ToastAlpha 提示条在最后一小段时间内淡出
func ToastAlpha(age, duration time.Duration) float64 {
	remaining := duration - age
	if remaining >= toastFadeOut {
		return 1
	}
	if remaining <= 0 {
		return 0
	}
	return utils.EaseOutQuad(float64(remaining) / float64(toastFadeOut))
}

// ComboBannerScale 横幅弹出：从 0.5 倍放大到原尺寸
func ComboBannerScale(age time.Duration) float64 {
	t := float64(age) / float64(comboPopDuration)
	return utils.Lerp(0.5, 1, utils.EaseOutCubic(t))
}

// ComboBannerAlpha 横幅在 fadeAfter 到 hideAfter 之间淡出
func ComboBannerAlpha(age, fadeAfter, hideAfter time.Duration) float64 {
	if age <= fadeAfter {
		return 1
	}
	if age >= hideAfter || hideAfter <= fadeAfter {
		return 0
	}
	t := float64(age-fadeAfter) / float64(hideAfter-fadeAfter)
	return 1 - utils.EaseOutQuad(t)
}
