package components

import "image/color"

// FireworkParticleComponent 烟花粒子组件
// 粒子是短命实体：每个渲染帧 Age+1，Age >= MaxAge 时销毁
//
// 与 ParticleComponent 不同，烟花粒子自带位置且按帧（而非秒）计时，
// 速度单位为 像素/帧
type FireworkParticleComponent struct {
	X, Y   float64
	VX, VY float64

	Size  float64
	Color color.RGBA

	Age    int
	MaxAge int

	// Alpha 由剩余寿命比例计算，用于淡出
	Alpha float64
}
