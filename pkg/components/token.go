package components

import "github.com/gonewx/mergepop/pkg/physics"

// TokenComponent 令牌组件
// 场上每个可融合的圆形令牌都带有此组件
//
// 状态流转：
//
//	空闲 → IsProcessing（已决定融合，等待提交）→ IsProcessing+IsAnimating（果冻动画）→ 空闲
//
// IsProcessing 是两条融合路径（物理碰撞、连续点击）之间唯一的互斥标志：
// 为 true 的令牌不能参与第二次融合
type TokenComponent struct {
	// Content 令牌显示的内容（数字、字母或 emoji），内容相同才能融合
	Content string

	// Color 背景色（#RRGGBB），纯装饰，不影响玩法
	Color string

	// Body 对应的物理刚体
	Body physics.BodyID

	// Radius 半径（像素）
	Radius float64

	// IsProcessing 是否处于融合流程中
	IsProcessing bool

	// IsAnimating 是否正在播放融合后的果冻动画
	// 为 true 时暂停位置同步，但仍做速度衰减
	IsAnimating bool

	// NoRotate 渲染时不旋转（"6" 和 "9" 旋转后无法区分）
	NoRotate bool
}
