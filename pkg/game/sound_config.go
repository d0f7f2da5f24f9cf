package game

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// 音效资源 ID 与分组
// 分组内的多个音效在播放时随机挑选一个，避免重复感
const (
	SoundShow      = "SOUND_SHOW"      // 新令牌出现
	SoundCollision = "SOUND_COLLISION" // 令牌相撞
	SoundFirework  = "SOUND_FIREWORK"  // 烟花

	SoundGroupTap    = "tap"    // 短按
	SoundGroupCheer  = "cheer"  // 融合欢呼
	SoundGroupPraise = "praise" // 融合夸奖
)

// SoundConfig represents the sound definition file loaded from YAML.
// It defines the structure of data/sounds.yaml.
//
// Sounds are synthesized at load time from tone lists instead of being
// decoded from audio files, so the game ships without binary audio assets.
//
// Structure:
//
//	sampleRate: 48000
//	sounds:
//	  - id: SOUND_TAP_1
//	    group: tap
//	    tones:
//	      - {wave: sine, freq: 880, endFreq: 660, duration: 60ms, volume: 0.5}
//	music:
//	  - id: MUSIC_1
//	    beat: 250ms
//	    repeat: 4
//	    notes: [523.25, 0, 659.25, 783.99]
type SoundConfig struct {
	SampleRate int             `yaml:"sampleRate"`
	Sounds     []SoundResource `yaml:"sounds"`
	Music      []MusicResource `yaml:"music"`
}

// SoundResource is a single synthesized sound effect.
type SoundResource struct {
	ID    string     `yaml:"id"`              // Resource ID (unique identifier)
	Group string     `yaml:"group,omitempty"` // Optional random-pick group
	Tones []ToneSpec `yaml:"tones"`           // Played back to back
}

// ToneSpec describes one synthesized segment.
//
// Fields:
//   - Wave: "sine", "square", "triangle" or "noise"
//   - Freq / EndFreq: start and end frequency in Hz (linear sweep; EndFreq 0 = constant)
//   - Duration: segment length
//   - Volume: peak amplitude 0..1, shaped by a short attack and linear release
type ToneSpec struct {
	Wave     string        `yaml:"wave"`
	Freq     float64       `yaml:"freq"`
	EndFreq  float64       `yaml:"endFreq,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Volume   float64       `yaml:"volume"`
}

// MusicResource is a background track synthesized from a note list.
// A note of 0 is a rest.
type MusicResource struct {
	ID     string        `yaml:"id"`
	Wave   string        `yaml:"wave,omitempty"`
	Beat   time.Duration `yaml:"beat"`
	Repeat int           `yaml:"repeat"`
	Volume float64       `yaml:"volume"`
	Notes  []float64     `yaml:"notes"`
}

// ParseSoundConfig 解析音效定义 YAML
func ParseSoundConfig(data []byte) (*SoundConfig, error) {
	var cfg SoundConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sound config YAML: %w", err)
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	if err := validateSoundConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid sound config: %w", err)
	}
	return &cfg, nil
}

// validateSoundConfig 验证配置的有效性
func validateSoundConfig(cfg *SoundConfig) error {
	seen := make(map[string]bool)
	for _, s := range cfg.Sounds {
		if s.ID == "" {
			return fmt.Errorf("sound id cannot be empty")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate sound id %s", s.ID)
		}
		seen[s.ID] = true
		if len(s.Tones) == 0 {
			return fmt.Errorf("sound %s has no tones", s.ID)
		}
		for i, tone := range s.Tones {
			if err := validateTone(tone); err != nil {
				return fmt.Errorf("sound %s tone %d: %w", s.ID, i, err)
			}
		}
	}
	for _, m := range cfg.Music {
		if m.ID == "" {
			return fmt.Errorf("music id cannot be empty")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate sound id %s", m.ID)
		}
		seen[m.ID] = true
		if m.Beat <= 0 {
			return fmt.Errorf("music %s beat must be > 0", m.ID)
		}
		if len(m.Notes) == 0 {
			return fmt.Errorf("music %s has no notes", m.ID)
		}
	}
	return nil
}

func validateTone(tone ToneSpec) error {
	switch tone.Wave {
	case "sine", "square", "triangle", "noise":
	default:
		return fmt.Errorf("unknown wave %q", tone.Wave)
	}
	if tone.Duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if tone.Volume < 0 || tone.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %v", tone.Volume)
	}
	if tone.Wave != "noise" && tone.Freq <= 0 {
		return fmt.Errorf("freq must be > 0 for %s wave", tone.Wave)
	}
	return nil
}

// Groups 返回分组名 -> 音效 ID 列表（保持文件中的顺序）
func (cfg *SoundConfig) Groups() map[string][]string {
	groups := make(map[string][]string)
	for _, s := range cfg.Sounds {
		if s.Group != "" {
			groups[s.Group] = append(groups[s.Group], s.ID)
		}
	}
	return groups
}
