package systems

import (
	"fmt"
	"log"

	"github.com/gonewx/mergepop/pkg/config"
)

// ContentPool 内容类别注册表
// 类别在配置中静态定义，也可以运行时追加；同一时刻只有一个活动类别
type ContentPool struct {
	order    []string
	contents map[string][]string
	buttons  map[string]string
	labels   map[string]string
	active   string
}

// NewContentPool 按配置顺序注册类别，默认没有活动类别
func NewContentPool(categories []config.CategoryConfig) *ContentPool {
	p := &ContentPool{
		contents: make(map[string][]string),
		buttons:  make(map[string]string),
		labels:   make(map[string]string),
	}
	for _, cat := range categories {
		if err := p.Register(cat.Name, cat.Contents); err != nil {
			log.Printf("[ContentPool] Warning: skip category %q: %v", cat.Name, err)
			continue
		}
		if cat.Button != "" {
			p.buttons[cat.Name] = cat.Button
		}
		for content, label := range cat.Labels {
			p.labels[content] = label
		}
	}
	return p
}

// Register 注册或替换一个类别
func (p *ContentPool) Register(name string, contents []string) error {
	if name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if len(contents) == 0 {
		return fmt.Errorf("category %s has no contents", name)
	}
	if _, exists := p.contents[name]; !exists {
		p.order = append(p.order, name)
	}
	p.contents[name] = append([]string(nil), contents...)
	return nil
}

// Categories 返回按注册顺序排列的类别名
func (p *ContentPool) Categories() []string {
	return append([]string(nil), p.order...)
}

// Has 类别是否存在
func (p *ContentPool) Has(name string) bool {
	_, ok := p.contents[name]
	return ok
}

// SetActive 切换活动类别
func (p *ContentPool) SetActive(name string) error {
	if !p.Has(name) {
		return fmt.Errorf("unknown category %q", name)
	}
	p.active = name
	return nil
}

// Active 返回活动类别名
func (p *ContentPool) Active() string {
	return p.active
}

// Contents 返回活动类别的内容列表
func (p *ContentPool) Contents() []string {
	return p.contents[p.active]
}

// Draw 从活动类别中均匀随机取一个内容；没有活动类别时返回空串
func (p *ContentPool) Draw(rng RandomSource) string {
	return pick(rng, p.Contents())
}

// ButtonText 类别按钮上的文字，未配置时用类别名
func (p *ContentPool) ButtonText(name string) string {
	if text, ok := p.buttons[name]; ok {
		return text
	}
	return name
}

// Label 内容的显示文字
// emoji 等字体无法绘制的符号可以在配置里给出替代文字，否则原样返回
func (p *ContentPool) Label(content string) string {
	if label, ok := p.labels[content]; ok {
		return label
	}
	return content
}
