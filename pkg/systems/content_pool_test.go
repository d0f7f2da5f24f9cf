package systems

import (
	"slices"
	"testing"

	"github.com/gonewx/mergepop/pkg/config"
)

func TestContentPoolFromConfig(t *testing.T) {
	pool := NewContentPool(config.DefaultGameConfig().Categories)

	want := []string{"numbers", "letters", "animals", "fruits"}
	if got := pool.Categories(); !slices.Equal(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if pool.Active() != "" {
		t.Errorf("Active() = %q, want empty before SetActive", pool.Active())
	}
	if got := pool.Draw(newTestRand(1)); got != "" {
		t.Errorf("Draw() without active category = %q, want empty", got)
	}
}

func TestContentPoolSetActive(t *testing.T) {
	pool := NewContentPool(config.DefaultGameConfig().Categories)

	tests := []struct {
		name    string
		active  string
		wantErr bool
	}{
		{"数字", "numbers", false},
		{"字母", "letters", false},
		{"未知类别", "planets", true},
		{"空名称", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := pool.Active()
			err := pool.SetActive(tt.active)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetActive(%q) error = %v, wantErr %v", tt.active, err, tt.wantErr)
			}
			if tt.wantErr && pool.Active() != before {
				t.Errorf("failed SetActive changed active category to %q", pool.Active())
			}
			if !tt.wantErr && pool.Active() != tt.active {
				t.Errorf("Active() = %q, want %q", pool.Active(), tt.active)
			}
		})
	}
}

func TestContentPoolDrawStaysInCategory(t *testing.T) {
	pool := NewContentPool(config.DefaultGameConfig().Categories)
	if err := pool.SetActive("letters"); err != nil {
		t.Fatal(err)
	}
	rng := newTestRand(7)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		content := pool.Draw(rng)
		if !slices.Contains(pool.Contents(), content) {
			t.Fatalf("Draw() = %q, not in letters", content)
		}
		seen[content] = true
	}
	if len(seen) < 20 {
		t.Errorf("Draw() produced only %d distinct letters in 500 draws", len(seen))
	}
}

func TestContentPoolRegister(t *testing.T) {
	pool := NewContentPool(nil)

	if err := pool.Register("", []string{"a"}); err == nil {
		t.Error("Register with empty name should fail")
	}
	if err := pool.Register("shapes", nil); err == nil {
		t.Error("Register with no contents should fail")
	}
	if err := pool.Register("shapes", []string{"■", "●"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// 替换已有类别不改变顺序
	if err := pool.Register("colors", []string{"red"}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Register("shapes", []string{"▲"}); err != nil {
		t.Fatal(err)
	}
	if got := pool.Categories(); !slices.Equal(got, []string{"shapes", "colors"}) {
		t.Errorf("Categories() = %v", got)
	}
	_ = pool.SetActive("shapes")
	if got := pool.Contents(); !slices.Equal(got, []string{"▲"}) {
		t.Errorf("Contents() = %v, want replaced list", got)
	}
}

func TestContentPoolLabelsAndButtons(t *testing.T) {
	pool := NewContentPool([]config.CategoryConfig{{
		Name:     "animals",
		Button:   "Animals",
		Contents: []string{"🐶", "🐱"},
		Labels:   map[string]string{"🐶": "Dog"},
	}})

	if got := pool.ButtonText("animals"); got != "Animals" {
		t.Errorf("ButtonText() = %q", got)
	}
	if got := pool.ButtonText("unknown"); got != "unknown" {
		t.Errorf("ButtonText(unknown) = %q, want name fallback", got)
	}
	if got := pool.Label("🐶"); got != "Dog" {
		t.Errorf("Label(dog) = %q", got)
	}
	if got := pool.Label("🐱"); got != "🐱" {
		t.Errorf("Label without mapping = %q, want content", got)
	}
}
