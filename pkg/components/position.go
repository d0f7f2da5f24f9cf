package components

// PositionComponent 存储实体的屏幕坐标（圆心）
// 令牌的权威位置由物理世界持有，TokenSyncSystem 每个物理步把它同步到这里供渲染读取；
// 融合动画期间不同步（令牌被冻结在原地播放果冻动画）
type PositionComponent struct {
	X     float64
	Y     float64
	Angle float64 // 旋转角度（弧度）
}
