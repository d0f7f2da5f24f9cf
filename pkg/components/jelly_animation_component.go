package components

// JellyAnimationComponent 果冻动画组件
// 融合提交时挂到存活令牌上，动画结束（恢复动力学）时移除
//
// 缩放曲线为衰减正弦：X 与 Y 反相振动，振幅随进度线性衰减到 0
type JellyAnimationComponent struct {
	// ElapsedTime 已播放时间（秒）
	ElapsedTime float64

	// Duration 动画总时长（秒）
	Duration float64

	// Amplitude 初始振幅（0.25 表示最大拉伸 25%）
	Amplitude float64

	// Wobbles 动画期间完整振动的次数
	Wobbles float64
}
