package game

import (
	"log"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// AudioManager 音频管理器
// 职责：
//   - 统一管理游戏中所有音效和背景音乐的播放
//   - 实现音量控制（从 SettingsManager 读取设置）
//   - 音效分组随机播放；背景音乐随机轮播，一首结束自动换下一首
//
// 所有播放都是"尽力而为"：音频上下文缺失、音效未定义或设置关闭时
// 只返回 false，不影响游戏逻辑。
type AudioManager struct {
	context         *audio.Context
	config          *SoundConfig
	settingsManager *SettingsManager
	rng             *rand.Rand

	pcmCache     map[string][]byte        // 资源ID -> 合成后的 PCM
	soundPlayers map[string]*audio.Player // 音效播放器缓存（资源ID -> 播放器）
	musicPlayers map[string]*audio.Player // 背景音乐播放器缓存（资源ID -> 播放器）
	groups       map[string][]string
	tracks       map[string]MusicResource
	trackOrder   []string

	currentMusic   *audio.Player // 当前播放的背景音乐
	currentMusicID string        // 当前播放的背景音乐ID
	playlistActive bool          // 是否处于随机轮播模式
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文（可为 nil，此时所有播放静默失败）
//   - cfg: 音效定义
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
//   - seed: 随机挑选音效/曲目用的种子
func NewAudioManager(ctx *audio.Context, cfg *SoundConfig, sm *SettingsManager, seed int64) *AudioManager {
	am := &AudioManager{
		context:         ctx,
		config:          cfg,
		settingsManager: sm,
		rng:             rand.New(rand.NewSource(seed)),
		pcmCache:        make(map[string][]byte),
		soundPlayers:    make(map[string]*audio.Player),
		musicPlayers:    make(map[string]*audio.Player),
		groups:          make(map[string][]string),
		tracks:          make(map[string]MusicResource),
	}
	if cfg != nil {
		am.groups = cfg.Groups()
		for _, m := range cfg.Music {
			am.tracks[m.ID] = m
			am.trackOrder = append(am.trackOrder, m.ID)
		}
	}
	return am
}

// PlaySound 播放音效
// 音效使用 SoundVolume 设置控制音量；正在播放时从头重新开始
//
// 返回：
//   - bool: 是否成功播放
func (am *AudioManager) PlaySound(soundID string) bool {
	if am.settingsManager != nil && !am.settingsManager.GetSettings().SoundEnabled {
		return false
	}

	player := am.getSoundPlayer(soundID)
	if player == nil {
		return false
	}

	player.SetVolume(am.getSoundVolume())
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind sound %s: %v", soundID, err)
	}
	player.Play()
	return true
}

// PlayRandomSound 从分组中随机挑选一个音效播放
func (am *AudioManager) PlayRandomSound(group string) bool {
	ids := am.groups[group]
	if len(ids) == 0 {
		return false
	}
	return am.PlaySound(ids[am.rng.Intn(len(ids))])
}

// PlayRandomMusic 停止当前音乐并随机播放一首，开启轮播
func (am *AudioManager) PlayRandomMusic() bool {
	if len(am.trackOrder) == 0 {
		return false
	}
	am.playlistActive = true
	return am.PlayMusic(am.trackOrder[am.rng.Intn(len(am.trackOrder))])
}

// PlayMusic 播放背景音乐（单曲，不循环）
// 同一时间只能播放一首背景音乐
func (am *AudioManager) PlayMusic(musicID string) bool {
	if am.settingsManager != nil && !am.settingsManager.GetSettings().MusicEnabled {
		return false
	}

	am.StopMusic()

	player := am.getMusicPlayer(musicID)
	if player == nil {
		return false
	}

	volume := am.getMusicVolume()
	player.SetVolume(volume)
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind music %s: %v", musicID, err)
	}
	player.Play()

	am.currentMusic = player
	am.currentMusicID = musicID

	log.Printf("[AudioManager] Playing music: %s (volume: %.2f)", musicID, volume)
	return true
}

// Update 每帧调用：轮播模式下当前曲目结束后随机换下一首
func (am *AudioManager) Update() {
	if !am.playlistActive || am.currentMusic == nil {
		return
	}
	if !am.currentMusic.IsPlaying() {
		am.PlayRandomMusic()
	}
}

// StopMusic 停止当前背景音乐
func (am *AudioManager) StopMusic() {
	if am.currentMusic != nil {
		am.currentMusic.Pause()
		am.currentMusic = nil
		am.currentMusicID = ""
	}
}

// CurrentMusicID 返回当前播放的曲目ID
func (am *AudioManager) CurrentMusicID() string {
	return am.currentMusicID
}

// SetMusicEnabled 开关背景音乐；关闭时立即停止，重新开启时恢复轮播
func (am *AudioManager) SetMusicEnabled(enabled bool) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicEnabled(enabled)
	}
	if !enabled {
		am.StopMusic()
		return
	}
	if am.playlistActive {
		am.PlayRandomMusic()
	}
}

// SetSoundEnabled 开关音效
func (am *AudioManager) SetSoundEnabled(enabled bool) {
	if am.settingsManager != nil {
		am.settingsManager.SetSoundEnabled(enabled)
	}
}

// SetMusicVolume 设置音乐音量，立即应用到当前播放的背景音乐
func (am *AudioManager) SetMusicVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicVolume(volume)
	}
	volume = am.getMusicVolume()
	for _, player := range am.musicPlayers {
		player.SetVolume(volume)
	}
}

// SetSoundVolume 设置音效音量
func (am *AudioManager) SetSoundVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetSoundVolume(volume)
	}
	volume = am.getSoundVolume()
	for _, player := range am.soundPlayers {
		player.SetVolume(volume)
	}
}

// getSoundPlayer 获取或合成音效播放器
func (am *AudioManager) getSoundPlayer(soundID string) *audio.Player {
	if player, exists := am.soundPlayers[soundID]; exists {
		return player
	}
	if am.context == nil || am.config == nil {
		return nil
	}

	pcm := am.soundPCM(soundID)
	if pcm == nil {
		log.Printf("[AudioManager] Warning: Sound not found: %s", soundID)
		return nil
	}
	player := am.context.NewPlayerFromBytes(pcm)
	am.soundPlayers[soundID] = player
	return player
}

// getMusicPlayer 获取或合成音乐播放器
func (am *AudioManager) getMusicPlayer(musicID string) *audio.Player {
	if player, exists := am.musicPlayers[musicID]; exists {
		return player
	}
	if am.context == nil {
		return nil
	}

	track, ok := am.tracks[musicID]
	if !ok {
		log.Printf("[AudioManager] Warning: Music not found: %s", musicID)
		return nil
	}
	pcm, cached := am.pcmCache[musicID]
	if !cached {
		pcm = SynthesizeMusic(track, am.config.SampleRate)
		am.pcmCache[musicID] = pcm
	}
	player := am.context.NewPlayerFromBytes(pcm)
	am.musicPlayers[musicID] = player
	return player
}

// soundPCM 返回音效的 PCM 数据（首次访问时合成并缓存）
func (am *AudioManager) soundPCM(soundID string) []byte {
	if pcm, ok := am.pcmCache[soundID]; ok {
		return pcm
	}
	for _, s := range am.config.Sounds {
		if s.ID == soundID {
			pcm := SynthesizeTones(s.Tones, am.config.SampleRate)
			am.pcmCache[soundID] = pcm
			return pcm
		}
	}
	return nil
}

// getMusicVolume 获取音乐音量设置
func (am *AudioManager) getMusicVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().MusicVolume
	}
	return 0.7 // 默认值
}

// getSoundVolume 获取音效音量设置
func (am *AudioManager) getSoundVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().SoundVolume
	}
	return 0.8 // 默认值
}

// PreloadSounds 预合成全部音效，避免首次播放时卡顿
func (am *AudioManager) PreloadSounds() {
	if am.config == nil {
		return
	}
	for _, s := range am.config.Sounds {
		am.getSoundPlayer(s.ID)
	}
	log.Printf("[AudioManager] Preloaded %d sounds", len(am.config.Sounds))
}
