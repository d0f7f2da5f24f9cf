package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有函数接受进度 t ∈ [0, 1]，超出范围时先截断。
// 参考：https://easings.net/

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOutCubic 三次方缓出：开始快，结束慢（连击横幅弹出）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseOutQuad 二次方缓出（提示条淡出）
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	t = clamp01(t)
	return 1 - (1-t)*(1-t)
}

// JellyWobble 果冻回弹曲线
// 振幅随进度线性衰减的正弦，t=0 与 t=1 时都为 0
//
// 参数：
//   - t: 动画进度
//   - wobbles: 整个动画内完整振动的次数
func JellyWobble(t, wobbles float64) float64 {
	t = clamp01(t)
	return math.Sin(t*wobbles*2*math.Pi) * (1 - t)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
