package components

// ButtonComponent 顶部控制条按钮（ECS 架构）
//
// 纯数据组件，点击判定由 ButtonSystem 完成。
// 位置使用左上角坐标，与令牌（圆心坐标）不同。
type ButtonComponent struct {
	// Text 按钮上显示的文字
	Text string

	// X, Y 左上角坐标
	X float64
	Y float64

	// Width, Height 按钮尺寸（像素）
	Width  float64
	Height float64

	// Category 关联的内容类别；为空表示功能按钮（如"随机添加"）
	Category string

	// Active 是否高亮（当前类别）
	Active bool

	// Pressed 指针在按钮上按下且尚未抬起
	Pressed bool

	// OnClick 点击回调函数
	OnClick func()
}

// Contains 点 (x, y) 是否落在按钮内
func (b *ButtonComponent) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}
