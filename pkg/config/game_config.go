package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// GameConfig 游戏玩法配置
//
// 配置文件位置: data/game.yaml（内嵌），可用 --config 指定磁盘上的覆盖文件。
// 所有时间字段使用 Go duration 字符串（如 "50ms"、"10s"）。
type GameConfig struct {
	Layout     LayoutConfig     `yaml:"layout"`
	Population PopulationConfig `yaml:"population"`
	Timing     TimingConfig     `yaml:"timing"`
	Input      InputConfig      `yaml:"input"`
	Combo      ComboConfig      `yaml:"combo"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Fireworks  FireworkConfig   `yaml:"fireworks"`

	// Palette 令牌与烟花粒子使用的颜色（十六进制）
	Palette []string `yaml:"palette"`

	// DefaultCategory 启动时选中的类别
	DefaultCategory string `yaml:"defaultCategory"`

	// Categories 内容类别，按顶部按钮顺序排列
	Categories []CategoryConfig `yaml:"categories"`
}

// LayoutConfig 视口布局
type LayoutConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// TopStrip 顶部控制条高度，令牌不会进入这片区域
	TopStrip float64 `yaml:"topStrip"`

	// TokenRadius 令牌半径（像素）
	TokenRadius float64 `yaml:"tokenRadius"`
}

// PopulationConfig 令牌数量控制
type PopulationConfig struct {
	// MaxTokens 场上令牌上限
	MaxTokens int `yaml:"maxTokens"`

	// CopyThreshold 令牌数超过该值时，新令牌内容从场上已有令牌中复制
	CopyThreshold int `yaml:"copyThreshold"`

	// InitialBatch 切换类别后分批生成的令牌数
	InitialBatch int `yaml:"initialBatch"`

	// StaggerInterval 分批生成的间隔
	StaggerInterval time.Duration `yaml:"staggerInterval"`
}

// TimingConfig 融合流程与提示的时间参数
type TimingConfig struct {
	FusionCommitDelay      time.Duration `yaml:"fusionCommitDelay"`
	FusionAnimation        time.Duration `yaml:"fusionAnimation"`
	TapCombineWindow       time.Duration `yaml:"tapCombineWindow"`
	CollisionSoundThrottle time.Duration `yaml:"collisionSoundThrottle"`
	ToastDuration          time.Duration `yaml:"toastDuration"`
	ComboFadeAfter         time.Duration `yaml:"comboFadeAfter"`
	ComboHideAfter         time.Duration `yaml:"comboHideAfter"`
}

// InputConfig 输入判定
type InputConfig struct {
	// TapMaxDuration 按下到抬起短于该值才算一次点击
	TapMaxDuration time.Duration `yaml:"tapMaxDuration"`

	// DragStiffness 拖拽时令牌向指针靠拢的弹簧系数（0~1）
	DragStiffness float64 `yaml:"dragStiffness"`
}

// ComboConfig 连击
type ComboConfig struct {
	ResetWindow time.Duration `yaml:"resetWindow"`
	MaxLevel    int           `yaml:"maxLevel"`

	// Colors 各连击等级的横幅颜色，下标 0 对应 1 级
	Colors []string `yaml:"colors"`
}

// PhysicsConfig 物理参数
// 速度单位为"像素/物理步"
type PhysicsConfig struct {
	FrictionAir float64 `yaml:"frictionAir"`
	Restitution float64 `yaml:"restitution"`

	// Damping 速度大于 StopSpeed 时每步乘以该系数，否则直接归零
	Damping   float64 `yaml:"damping"`
	StopSpeed float64 `yaml:"stopSpeed"`

	// SettleSpeed 动画中的令牌速度低于该值时归零
	SettleSpeed float64 `yaml:"settleSpeed"`

	// SpawnSpeed 新令牌每个轴上的随机初速度范围 [-SpawnSpeed, SpawnSpeed]
	SpawnSpeed int `yaml:"spawnSpeed"`

	// RestoreSpeed 融合动画结束后每个轴上的随机速度范围
	RestoreSpeed int `yaml:"restoreSpeed"`

	// CellSize 宽相位网格单元尺寸
	CellSize int `yaml:"cellSize"`

	// NoRotate 不旋转的内容（"6" 和 "9" 旋转后无法区分）
	NoRotate []string `yaml:"noRotate"`
}

// FireworkConfig 烟花粒子
type FireworkConfig struct {
	MaxParticles int     `yaml:"maxParticles"`
	Damping      float64 `yaml:"damping"`
	Gravity      float64 `yaml:"gravity"`

	// 各粒子组在 1 级连击时的基础数量
	InnerRingBase int `yaml:"innerRingBase"`
	OuterRingBase int `yaml:"outerRingBase"`
	EmberBase     int `yaml:"emberBase"`
	CoreBase      int `yaml:"coreBase"`

	// CoreColor 爆心闪光颜色
	CoreColor string `yaml:"coreColor"`
}

// CategoryConfig 一个内容类别
type CategoryConfig struct {
	Name string `yaml:"name"`

	// Button 顶部按钮文字
	Button string `yaml:"button"`

	// Contents 内容符号，决定融合是否匹配
	Contents []string `yaml:"contents"`

	// Labels 可选的显示文字（内容 -> 文字），用于字体无法绘制的符号
	Labels map[string]string `yaml:"labels,omitempty"`
}

// DefaultGameConfig 返回与 data/game.yaml 一致的默认配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Layout: LayoutConfig{Width: 960, Height: 640, TopStrip: 70, TokenRadius: 40},
		Population: PopulationConfig{
			MaxTokens:       15,
			CopyThreshold:   10,
			InitialBatch:    5,
			StaggerInterval: 200 * time.Millisecond,
		},
		Timing: TimingConfig{
			FusionCommitDelay:      50 * time.Millisecond,
			FusionAnimation:        500 * time.Millisecond,
			TapCombineWindow:       5 * time.Second,
			CollisionSoundThrottle: 200 * time.Millisecond,
			ToastDuration:          3 * time.Second,
			ComboFadeAfter:         500 * time.Millisecond,
			ComboHideAfter:         1200 * time.Millisecond,
		},
		Input: InputConfig{TapMaxDuration: 200 * time.Millisecond, DragStiffness: 0.2},
		Combo: ComboConfig{
			ResetWindow: 10 * time.Second,
			MaxLevel:    5,
			Colors:      []string{"#FF5733", "#FF8C00", "#FFD000", "#32CD32", "#4CC9F0"},
		},
		Physics: PhysicsConfig{
			FrictionAir:  0.05,
			Restitution:  0.8,
			Damping:      0.98,
			StopSpeed:    0.05,
			SettleSpeed:  0.02,
			SpawnSpeed:   3,
			RestoreSpeed: 2,
			CellSize:     40,
			NoRotate:     []string{"6", "9"},
		},
		Fireworks: FireworkConfig{
			MaxParticles:  400,
			Damping:       0.985,
			Gravity:       0.03,
			InnerRingBase: 10,
			OuterRingBase: 14,
			EmberBase:     6,
			CoreBase:      4,
			CoreColor:     "#FFFFFF",
		},
		Palette:         []string{"#FF5733", "#33FF57", "#3357FF", "#FF33A1", "#FFC300", "#DAF7A6", "#4CC9F0", "#B5179E"},
		DefaultCategory: "numbers",
		Categories: []CategoryConfig{
			{Name: "numbers", Button: "123", Contents: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
			{Name: "letters", Button: "ABC", Contents: []string{
				"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
				"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
			}},
			{Name: "animals", Button: "Animals", Contents: []string{"🐶", "🐱", "🐰", "🐻", "🐼", "🐯", "🦁", "🐷", "🐸", "🦉"},
				Labels: map[string]string{
					"🐶": "Dog", "🐱": "Cat", "🐰": "Bunny", "🐻": "Bear", "🐼": "Panda",
					"🐯": "Tiger", "🦁": "Lion", "🐷": "Pig", "🐸": "Frog", "🦉": "Owl",
				}},
			{Name: "fruits", Button: "Fruits", Contents: []string{"🍎", "🍊", "🍌", "🍇", "🍓", "🍍", "🍉", "🍑", "🍒", "🥝"},
				Labels: map[string]string{
					"🍎": "Apple", "🍊": "Orange", "🍌": "Banana", "🍇": "Grape", "🍓": "Berry",
					"🍍": "Pine", "🍉": "Melon", "🍑": "Peach", "🍒": "Cherry", "🥝": "Kiwi",
				}},
		},
	}
}

// ParseGameConfig 解析 YAML 配置
// 文件中未出现的字段保留默认值
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// LoadGameConfig 从磁盘加载配置文件
//
// 参数:
//   - path: 配置文件路径（如 "data/game.yaml"）
//
// 返回:
//   - *GameConfig: 加载成功后的配置
//   - error: 读取、解析或验证失败
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// Validate 验证配置有效性
func (c *GameConfig) Validate() error {
	if err := validateLayout(c.Layout); err != nil {
		return err
	}

	p := c.Population
	if p.MaxTokens <= 0 {
		return fmt.Errorf("population.maxTokens must be > 0, got %d", p.MaxTokens)
	}
	if p.CopyThreshold < 0 {
		return fmt.Errorf("population.copyThreshold must be >= 0, got %d", p.CopyThreshold)
	}
	if p.InitialBatch < 0 || p.InitialBatch > p.MaxTokens {
		return fmt.Errorf("population.initialBatch must be in [0, %d], got %d", p.MaxTokens, p.InitialBatch)
	}
	if p.StaggerInterval < 0 {
		return fmt.Errorf("population.staggerInterval must be >= 0")
	}

	t := c.Timing
	if t.FusionCommitDelay < 0 || t.FusionAnimation < 0 || t.TapCombineWindow <= 0 {
		return fmt.Errorf("timing: fusion delays must be >= 0 and tapCombineWindow > 0")
	}
	if t.ComboFadeAfter > t.ComboHideAfter {
		return fmt.Errorf("timing.comboFadeAfter (%v) must not exceed comboHideAfter (%v)", t.ComboFadeAfter, t.ComboHideAfter)
	}

	if c.Input.TapMaxDuration <= 0 {
		return fmt.Errorf("input.tapMaxDuration must be > 0")
	}
	if c.Input.DragStiffness < 0 || c.Input.DragStiffness > 1 {
		return fmt.Errorf("input.dragStiffness must be in [0, 1], got %v", c.Input.DragStiffness)
	}

	if c.Combo.MaxLevel < 1 {
		return fmt.Errorf("combo.maxLevel must be >= 1, got %d", c.Combo.MaxLevel)
	}
	if len(c.Combo.Colors) == 0 {
		return fmt.Errorf("combo.colors cannot be empty")
	}
	for _, hex := range c.Combo.Colors {
		if _, err := ParseColor(hex); err != nil {
			return fmt.Errorf("combo.colors: %w", err)
		}
	}

	ph := c.Physics
	if ph.FrictionAir < 0 || ph.FrictionAir >= 1 {
		return fmt.Errorf("physics.frictionAir must be in [0, 1), got %v", ph.FrictionAir)
	}
	if ph.Damping <= 0 || ph.Damping > 1 {
		return fmt.Errorf("physics.damping must be in (0, 1], got %v", ph.Damping)
	}
	if ph.SpawnSpeed < 0 || ph.RestoreSpeed < 0 {
		return fmt.Errorf("physics: spawnSpeed and restoreSpeed must be >= 0")
	}
	if ph.CellSize <= 0 {
		return fmt.Errorf("physics.cellSize must be > 0, got %d", ph.CellSize)
	}

	f := c.Fireworks
	if f.MaxParticles < 0 {
		return fmt.Errorf("fireworks.maxParticles must be >= 0, got %d", f.MaxParticles)
	}
	if _, err := ParseColor(f.CoreColor); err != nil {
		return fmt.Errorf("fireworks.coreColor: %w", err)
	}

	if len(c.Palette) == 0 {
		return fmt.Errorf("palette cannot be empty")
	}
	for _, hex := range c.Palette {
		if _, err := ParseColor(hex); err != nil {
			return fmt.Errorf("palette: %w", err)
		}
	}

	return validateCategories(c)
}

func validateLayout(l LayoutConfig) error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("layout size must be positive, got %dx%d", l.Width, l.Height)
	}
	if l.TokenRadius <= 0 {
		return fmt.Errorf("layout.tokenRadius must be > 0, got %v", l.TokenRadius)
	}
	// 生成区间 [2r, w-2r] x [top+r, h-2r] 必须非空
	if float64(l.Width) < 4*l.TokenRadius {
		return fmt.Errorf("layout.width %d too small for token radius %v", l.Width, l.TokenRadius)
	}
	if float64(l.Height)-2*l.TokenRadius < l.TopStrip+l.TokenRadius {
		return fmt.Errorf("layout.height %d too small for top strip %v", l.Height, l.TopStrip)
	}
	return nil
}

func validateCategories(c *GameConfig) error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("categories cannot be empty")
	}
	seen := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category name cannot be empty")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %s", cat.Name)
		}
		seen[cat.Name] = true
		if len(cat.Contents) == 0 {
			return fmt.Errorf("category %s has no contents", cat.Name)
		}
	}
	if !seen[c.DefaultCategory] {
		return fmt.Errorf("defaultCategory %q is not a defined category", c.DefaultCategory)
	}
	return nil
}

// Category 按名称查找类别
func (c *GameConfig) Category(name string) (CategoryConfig, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}

// ComboColor 返回连击等级对应的横幅颜色，等级越界时取最近的一端
func (c *GameConfig) ComboColor(level int) color.RGBA {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.Combo.Colors) {
		idx = len(c.Combo.Colors) - 1
	}
	col, _ := ParseColor(c.Combo.Colors[idx])
	return col
}

// ParseColor 把 "#RRGGBB" 解析为不透明的 color.RGBA
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
