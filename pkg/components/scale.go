package components

// ScaleComponent 存储实体级别的缩放因子
// 令牌的果冻动画通过逐帧改写 ScaleX/ScaleY 实现挤压回弹效果
type ScaleComponent struct {
	// ScaleX X轴缩放因子（1.0 = 原始大小）
	ScaleX float64

	// ScaleY Y轴缩放因子（1.0 = 原始大小）
	ScaleY float64
}
