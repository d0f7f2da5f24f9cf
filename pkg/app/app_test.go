package app

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/gonewx/mergepop/pkg/embedded"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("MERGEPOP_VERBOSE", "true")
	t.Setenv("MERGEPOP_CATEGORY", "fruits")
	t.Setenv("MERGEPOP_SEED", "42")
	t.Setenv("MERGEPOP_MUTE", "1")

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("LoadEnvConfig() error = %v", err)
	}
	want := Config{Verbose: true, Category: "fruits", Seed: 42, Mute: true}
	if cfg != want {
		t.Errorf("LoadEnvConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadEnvConfigInvalid(t *testing.T) {
	t.Setenv("MERGEPOP_SEED", "not-a-number")
	if _, err := LoadEnvConfig(); err == nil {
		t.Error("LoadEnvConfig() with bad seed should fail")
	}
}

func TestLoadGameConfigEmbedded(t *testing.T) {
	data, err := os.ReadFile("../../data/game.yaml")
	if err != nil {
		t.Fatalf("read data/game.yaml: %v", err)
	}
	embedded.Init(fstest.MapFS{
		"data/game.yaml": &fstest.MapFile{Data: data},
	})

	cfg, err := LoadGameConfig("")
	if err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}
	if cfg.DefaultCategory != "numbers" {
		t.Errorf("DefaultCategory = %q, want numbers", cfg.DefaultCategory)
	}
}

func TestLoadGameConfigMissingFile(t *testing.T) {
	if _, err := LoadGameConfig(t.TempDir() + "/missing.yaml"); err == nil {
		t.Error("LoadGameConfig() with a missing file should fail")
	}
}
