package systems

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gonewx/mergepop/pkg/components"
)

func TestToastAlpha(t *testing.T) {
	d := 3 * time.Second
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{0, 1},
		{2700 * time.Millisecond, 1},
		{2850 * time.Millisecond, 0.75},
		{3 * time.Second, 0},
		{4 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := ToastAlpha(tt.age, d); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ToastAlpha(%v) = %.3f, want %.3f", tt.age, got, tt.want)
		}
	}
}

func TestComboBannerAlphaAndScale(t *testing.T) {
	fade, hide := 500*time.Millisecond, 1200*time.Millisecond
	if got := ComboBannerAlpha(300*time.Millisecond, fade, hide); got != 1 {
		t.Errorf("alpha before fade = %.2f", got)
	}
	if got := ComboBannerAlpha(hide, fade, hide); got != 0 {
		t.Errorf("alpha at hide = %.2f", got)
	}
	prev := 1.0
	for age := fade; age <= hide; age += 50 * time.Millisecond {
		got := ComboBannerAlpha(age, fade, hide)
		if got > prev {
			t.Fatalf("alpha increased at %v: %.3f > %.3f", age, got, prev)
		}
		prev = got
	}

	if got := ComboBannerScale(0); got != 0.5 {
		t.Errorf("scale at 0 = %.2f, want 0.5", got)
	}
	if got := ComboBannerScale(time.Second); got != 1 {
		t.Errorf("scale after pop = %.2f, want 1", got)
	}
}

func TestContrastTextColor(t *testing.T) {
	tests := []struct {
		name string
		bg   color.RGBA
		want color.RGBA
	}{
		{"浅绿底", color.RGBA{0xDA, 0xF7, 0xA6, 0xff}, darkTextColor},
		{"白底", color.RGBA{0xff, 0xff, 0xff, 0xff}, darkTextColor},
		{"深蓝底", color.RGBA{0x33, 0x57, 0xFF, 0xff}, lightTextColor},
		{"紫底", color.RGBA{0xB5, 0x17, 0x9E, 0xff}, lightTextColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContrastTextColor(tt.bg); got != tt.want {
				t.Errorf("ContrastTextColor(%v) = %v, want %v", tt.bg, got, tt.want)
			}
		})
	}
}

func TestParticleQuad(t *testing.T) {
	p := &components.FireworkParticleComponent{
		X: 100, Y: 50, Size: 4,
		Color: color.RGBA{0xff, 0, 0x80, 0xff},
		Alpha: 0.5,
	}
	vs := particleQuad(p)
	if len(vs) != 4 {
		t.Fatalf("got %d vertices", len(vs))
	}
	if vs[0].DstX != 96 || vs[0].DstY != 46 || vs[3].DstX != 104 || vs[3].DstY != 54 {
		t.Errorf("corners = (%.0f,%.0f) (%.0f,%.0f)", vs[0].DstX, vs[0].DstY, vs[3].DstX, vs[3].DstY)
	}
	for _, v := range vs {
		if v.ColorR != 1 || v.ColorG != 0 || v.ColorA != 0.5 {
			t.Errorf("vertex color = (%.2f, %.2f, %.2f, %.2f)", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
		}
	}
}
