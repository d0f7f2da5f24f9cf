package systems

import (
	"slices"

	"github.com/gonewx/mergepop/pkg/components"
	"github.com/gonewx/mergepop/pkg/ecs"
)

// 顶部按钮布局
const (
	buttonWidth  = 120.0
	buttonHeight = 44.0
	buttonGap    = 12.0
	buttonMargin = 12.0
)

// RandomButtonText "随机添加"按钮的文字
const RandomButtonText = "Random"

// ButtonSystem 顶部控制条按钮
//
// 职责：
//   - 每个类别一个按钮，外加一个"随机添加"按钮
//   - 处理指针按下/抬起：按下和抬起都落在同一个按钮上才触发 OnClick
//   - 高亮当前类别
//
// 按钮消费掉的指针事件不再交给令牌区域。
type ButtonSystem struct {
	entityManager *ecs.EntityManager

	pressed ecs.EntityID
}

// NewButtonSystem 创建按钮系统
func NewButtonSystem(em *ecs.EntityManager) *ButtonSystem {
	return &ButtonSystem{entityManager: em}
}

// Build 按顺序在控制条上排布按钮
// onCategory 在类别按钮被点击时调用，onRandom 在"随机添加"被点击时调用
func (s *ButtonSystem) Build(pool *ContentPool, topStrip float64, onCategory func(string), onRandom func()) {
	for _, id := range s.buttons() {
		s.entityManager.DestroyEntityNow(id)
	}
	s.pressed = 0

	y := (topStrip - buttonHeight) / 2
	if y < 0 {
		y = 0
	}
	x := buttonMargin
	for _, name := range pool.Categories() {
		category := name
		s.add(&components.ButtonComponent{
			Text:     pool.ButtonText(category),
			X:        x,
			Y:        y,
			Width:    buttonWidth,
			Height:   buttonHeight,
			Category: category,
			Active:   category == pool.Active(),
			OnClick:  func() { onCategory(category) },
		})
		x += buttonWidth + buttonGap
	}
	s.add(&components.ButtonComponent{
		Text:    RandomButtonText,
		X:       x,
		Y:       y,
		Width:   buttonWidth,
		Height:  buttonHeight,
		OnClick: onRandom,
	})
}

func (s *ButtonSystem) add(button *components.ButtonComponent) {
	id := s.entityManager.CreateEntity()
	s.entityManager.AddComponent(id, button)
}

// PointerDown 指针按下，返回是否落在按钮上
func (s *ButtonSystem) PointerDown(x, y float64) bool {
	id, button, ok := s.hit(x, y)
	if !ok {
		return false
	}
	s.pressed = id
	button.Pressed = true
	return true
}

// PointerUp 指针抬起，返回事件是否被按钮消费
// 抬起点仍在按下的按钮上时触发 OnClick
func (s *ButtonSystem) PointerUp(x, y float64) bool {
	if s.pressed == 0 {
		return false
	}
	pressed := s.pressed
	s.pressed = 0

	button, ok := ecs.GetComponent[*components.ButtonComponent](s.entityManager, pressed)
	if !ok {
		return true
	}
	button.Pressed = false
	if button.Contains(x, y) && button.OnClick != nil {
		button.OnClick()
	}
	return true
}

// Capturing 当前手势是否由按钮持有
func (s *ButtonSystem) Capturing() bool {
	return s.pressed != 0
}

// SetActiveCategory 高亮当前类别的按钮
func (s *ButtonSystem) SetActiveCategory(name string) {
	for _, button := range s.Buttons() {
		button.Active = button.Category != "" && button.Category == name
	}
}

// Buttons 按创建顺序返回全部按钮
func (s *ButtonSystem) Buttons() []*components.ButtonComponent {
	ids := s.buttons()
	result := make([]*components.ButtonComponent, 0, len(ids))
	for _, id := range ids {
		if button, ok := ecs.GetComponent[*components.ButtonComponent](s.entityManager, id); ok {
			result = append(result, button)
		}
	}
	return result
}

func (s *ButtonSystem) hit(x, y float64) (ecs.EntityID, *components.ButtonComponent, bool) {
	for _, id := range s.buttons() {
		button, ok := ecs.GetComponent[*components.ButtonComponent](s.entityManager, id)
		if ok && button.Contains(x, y) {
			return id, button, true
		}
	}
	return 0, nil, false
}

func (s *ButtonSystem) buttons() []ecs.EntityID {
	ids := ecs.GetEntitiesWith1[*components.ButtonComponent](s.entityManager)
	slices.Sort(ids)
	return ids
}
