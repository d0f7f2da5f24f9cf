// Package physics 是令牌使用的二维物理适配层
//
// 只实现本游戏需要的最小能力：圆形刚体、无重力积分、空气阻力、
// 四周墙壁反弹、圆与圆的弹性碰撞，以及"碰撞开始"事件。
// 宽相检测交给 resolv 的网格空间（Space/Object.Check），窄相用圆心距离判定。
//
// 速度单位为 像素/步，Step 每调用一次推进一个固定物理步。
package physics

import (
	"math"
	"sort"

	"github.com/solarlune/resolv"
)

// BodyID 刚体标识，0 为无效值
type BodyID uint64

// tagBody 是所有圆形刚体在 resolv 空间中的标签
const tagBody = "body"

// Pair 一对刚体，A < B
type Pair struct {
	A BodyID
	B BodyID
}

func makePair(a, b BodyID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Options 物理世界参数
type Options struct {
	// Bounds 墙壁围成的矩形（内侧）
	MinX, MinY, MaxX, MaxY float64

	// FrictionAir 每步速度乘以 (1 - FrictionAir)
	FrictionAir float64

	// Restitution 撞墙与互撞的恢复系数
	Restitution float64

	// AngularFactor 切向速度转化为角速度的比例
	AngularFactor float64

	// CellSize resolv 网格尺寸（像素）
	CellSize int
}

// Body 圆形刚体
type Body struct {
	ID              BodyID
	X, Y            float64
	VX, VY          float64
	Radius          float64
	Angle           float64
	AngularVelocity float64
	Static          bool

	obj *resolv.Object
}

// World 物理世界
type World struct {
	opts   Options
	space  *resolv.Space
	bodies map[BodyID]*Body
	order  []BodyID // 按创建顺序，保证步进结果确定
	nextID BodyID

	// touching 上一步处于接触状态的刚体对，用于计算"碰撞开始"
	touching map[Pair]bool
}

// NewWorld 创建物理世界
func NewWorld(opts Options) *World {
	if opts.CellSize <= 0 {
		opts.CellSize = 32
	}
	w := int(math.Ceil(opts.MaxX)) + opts.CellSize
	h := int(math.Ceil(opts.MaxY)) + opts.CellSize
	return &World{
		opts:     opts,
		space:    resolv.NewSpace(w, h, opts.CellSize, opts.CellSize),
		bodies:   make(map[BodyID]*Body),
		touching: make(map[Pair]bool),
		nextID:   1,
	}
}

// Options 返回当前参数
func (w *World) Options() Options {
	return w.opts
}

// AddCircle 添加一个圆形刚体，返回其 ID
func (w *World) AddCircle(x, y, radius float64) BodyID {
	id := w.nextID
	w.nextID++

	obj := resolv.NewObject(x-radius, y-radius, radius*2, radius*2, tagBody)
	obj.Data = id
	w.space.Add(obj)

	w.bodies[id] = &Body{ID: id, X: x, Y: y, Radius: radius, obj: obj}
	w.order = append(w.order, id)
	return id
}

// Remove 移除刚体；刚体不存在时返回 false（重复移除是安全的）
func (w *World) Remove(id BodyID) bool {
	body, ok := w.bodies[id]
	if !ok {
		return false
	}
	w.space.Remove(body.obj)
	delete(w.bodies, id)
	for i, bid := range w.order {
		if bid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	for p := range w.touching {
		if p.A == id || p.B == id {
			delete(w.touching, p)
		}
	}
	return true
}

// Clear 移除全部刚体
func (w *World) Clear() {
	for _, id := range append([]BodyID(nil), w.order...) {
		w.Remove(id)
	}
}

// Has 刚体是否存在
func (w *World) Has(id BodyID) bool {
	_, ok := w.bodies[id]
	return ok
}

// Count 刚体数量
func (w *World) Count() int {
	return len(w.bodies)
}

// Body 返回刚体快照
func (w *World) Body(id BodyID) (Body, bool) {
	body, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *body, true
}

// Position 返回刚体圆心
func (w *World) Position(id BodyID) (x, y float64, ok bool) {
	body, ok := w.bodies[id]
	if !ok {
		return 0, 0, false
	}
	return body.X, body.Y, true
}

// SetPosition 直接设置刚体圆心
func (w *World) SetPosition(id BodyID, x, y float64) {
	if body, ok := w.bodies[id]; ok {
		body.X, body.Y = x, y
		w.syncObject(body)
	}
}

// Velocity 返回刚体速度
func (w *World) Velocity(id BodyID) (vx, vy float64, ok bool) {
	body, ok := w.bodies[id]
	if !ok {
		return 0, 0, false
	}
	return body.VX, body.VY, true
}

// SetVelocity 设置刚体速度；静态刚体忽略
func (w *World) SetVelocity(id BodyID, vx, vy float64) {
	if body, ok := w.bodies[id]; ok && !body.Static {
		body.VX, body.VY = vx, vy
	}
}

// Angle 返回刚体旋转角（弧度）
func (w *World) Angle(id BodyID) float64 {
	if body, ok := w.bodies[id]; ok {
		return body.Angle
	}
	return 0
}

// SetStatic 切换静态/动态；变为静态时速度清零
func (w *World) SetStatic(id BodyID, static bool) {
	body, ok := w.bodies[id]
	if !ok {
		return
	}
	body.Static = static
	if static {
		body.VX, body.VY = 0, 0
		body.AngularVelocity = 0
	}
}

// BodyAt 返回覆盖点 (x, y) 的刚体（后创建的优先，与绘制顺序一致）
func (w *World) BodyAt(x, y float64) (BodyID, bool) {
	for i := len(w.order) - 1; i >= 0; i-- {
		body := w.bodies[w.order[i]]
		dx, dy := x-body.X, y-body.Y
		if dx*dx+dy*dy <= body.Radius*body.Radius {
			return body.ID, true
		}
	}
	return 0, false
}

// Step 推进一个物理步，返回本步新开始接触的刚体对（按 A、B 排序）
func (w *World) Step() []Pair {
	for _, id := range w.order {
		body := w.bodies[id]
		if body.Static {
			continue
		}
		body.VX *= 1 - w.opts.FrictionAir
		body.VY *= 1 - w.opts.FrictionAir
		body.AngularVelocity *= 1 - w.opts.FrictionAir
		body.X += body.VX
		body.Y += body.VY
		body.Angle += body.AngularVelocity
		w.bounceWalls(body)
		w.syncObject(body)
	}

	current := w.detectContacts()

	started := make([]Pair, 0)
	for p := range current {
		if !w.touching[p] {
			started = append(started, p)
		}
	}
	w.touching = current

	sort.Slice(started, func(i, j int) bool {
		if started[i].A != started[j].A {
			return started[i].A < started[j].A
		}
		return started[i].B < started[j].B
	})
	return started
}

// detectContacts 宽相用 resolv 网格筛选候选，窄相按圆心距离判定并做分离与冲量
func (w *World) detectContacts() map[Pair]bool {
	contacts := make(map[Pair]bool)
	for _, id := range w.order {
		body := w.bodies[id]
		collision := body.obj.Check(0, 0, tagBody)
		if collision == nil {
			continue
		}
		for _, other := range collision.Objects {
			otherID, ok := other.Data.(BodyID)
			if !ok || otherID == id {
				continue
			}
			p := makePair(id, otherID)
			if contacts[p] {
				continue
			}
			otherBody, exists := w.bodies[otherID]
			if !exists {
				continue
			}
			if w.resolveCircles(body, otherBody) {
				contacts[p] = true
			}
		}
	}
	return contacts
}

// resolveCircles 两圆相交时推开并交换法向速度，返回是否接触
func (w *World) resolveCircles(a, b *Body) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	minDist := a.Radius + b.Radius
	distSq := dx*dx + dy*dy
	if distSq > minDist*minDist {
		return false
	}
	if a.Static && b.Static {
		return true
	}

	dist := math.Sqrt(distSq)
	nx, ny := 1.0, 0.0
	if dist > 1e-9 {
		nx, ny = dx/dist, dy/dist
	}

	overlap := minDist - dist
	switch {
	case a.Static:
		b.X += nx * overlap
		b.Y += ny * overlap
	case b.Static:
		a.X -= nx * overlap
		a.Y -= ny * overlap
	default:
		a.X -= nx * overlap / 2
		a.Y -= ny * overlap / 2
		b.X += nx * overlap / 2
		b.Y += ny * overlap / 2
	}

	// 相对速度沿法线分量 >0 表示正在接近
	rvx := a.VX - b.VX
	rvy := a.VY - b.VY
	approach := rvx*nx + rvy*ny
	if approach > 0 {
		impulse := (1 + w.opts.Restitution) * approach
		switch {
		case a.Static:
			b.VX += impulse * nx
			b.VY += impulse * ny
		case b.Static:
			a.VX -= impulse * nx
			a.VY -= impulse * ny
		default:
			a.VX -= impulse * nx / 2
			a.VY -= impulse * ny / 2
			b.VX += impulse * nx / 2
			b.VY += impulse * ny / 2
		}
		// 切向相对速度带动旋转
		tangent := rvx*-ny + rvy*nx
		if !a.Static {
			a.AngularVelocity += tangent * w.opts.AngularFactor / a.Radius
		}
		if !b.Static {
			b.AngularVelocity -= tangent * w.opts.AngularFactor / b.Radius
		}
	}

	w.syncObject(a)
	w.syncObject(b)
	return true
}

func (w *World) bounceWalls(body *Body) {
	r := body.Radius
	e := w.opts.Restitution
	if body.X-r < w.opts.MinX {
		body.X = w.opts.MinX + r
		body.VX = math.Abs(body.VX) * e
	}
	if body.X+r > w.opts.MaxX {
		body.X = w.opts.MaxX - r
		body.VX = -math.Abs(body.VX) * e
	}
	if body.Y-r < w.opts.MinY {
		body.Y = w.opts.MinY + r
		body.VY = math.Abs(body.VY) * e
	}
	if body.Y+r > w.opts.MaxY {
		body.Y = w.opts.MaxY - r
		body.VY = -math.Abs(body.VY) * e
	}
}

func (w *World) syncObject(body *Body) {
	body.obj.Position.X = body.X - body.Radius
	body.obj.Position.Y = body.Y - body.Radius
	body.obj.Update()
}
