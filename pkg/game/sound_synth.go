package game

import (
	"encoding/binary"
	"math"
	"math/rand"
)

// attackSeconds 每段音的起音时长，避免波形突变产生爆音
const attackSeconds = 0.005

// SynthesizeTones 把音段序列合成为 16 位小端立体声 PCM
// 输出格式与 ebiten audio.Context.NewPlayerFromBytes 的要求一致
func SynthesizeTones(tones []ToneSpec, sampleRate int) []byte {
	total := 0
	for _, tone := range tones {
		total += toneSamples(tone, sampleRate)
	}

	buf := make([]byte, 0, total*4)
	noise := rand.New(rand.NewSource(1))
	for _, tone := range tones {
		buf = appendTone(buf, tone, sampleRate, noise)
	}
	return buf
}

// SynthesizeMusic 把音符表合成为一段完整的背景音乐
func SynthesizeMusic(track MusicResource, sampleRate int) []byte {
	wave := track.Wave
	if wave == "" {
		wave = "triangle"
	}
	repeat := track.Repeat
	if repeat <= 0 {
		repeat = 1
	}

	tones := make([]ToneSpec, 0, len(track.Notes)*repeat)
	for r := 0; r < repeat; r++ {
		for _, freq := range track.Notes {
			tone := ToneSpec{Wave: wave, Freq: freq, Duration: track.Beat, Volume: track.Volume}
			if freq <= 0 {
				tone.Volume = 0
				tone.Freq = 1
			}
			tones = append(tones, tone)
		}
	}
	return SynthesizeTones(tones, sampleRate)
}

func toneSamples(tone ToneSpec, sampleRate int) int {
	return int(tone.Duration.Seconds() * float64(sampleRate))
}

func appendTone(buf []byte, tone ToneSpec, sampleRate int, noise *rand.Rand) []byte {
	n := toneSamples(tone, sampleRate)
	if n == 0 {
		return buf
	}
	endFreq := tone.EndFreq
	if endFreq <= 0 {
		endFreq = tone.Freq
	}
	attack := int(attackSeconds * float64(sampleRate))

	phase := 0.0
	var frame [4]byte
	for i := 0; i < n; i++ {
		progress := float64(i) / float64(n)
		freq := tone.Freq + (endFreq-tone.Freq)*progress
		phase += freq / float64(sampleRate)
		phase -= math.Floor(phase)

		var v float64
		switch tone.Wave {
		case "square":
			if phase < 0.5 {
				v = 1
			} else {
				v = -1
			}
		case "triangle":
			v = 4*math.Abs(phase-0.5) - 1
		case "noise":
			v = noise.Float64()*2 - 1
		default:
			v = math.Sin(2 * math.Pi * phase)
		}

		envelope := 1 - progress
		if i < attack {
			envelope *= float64(i) / float64(attack)
		}

		sample := int16(v * envelope * tone.Volume * math.MaxInt16)
		binary.LittleEndian.PutUint16(frame[0:2], uint16(sample))
		binary.LittleEndian.PutUint16(frame[2:4], uint16(sample))
		buf = append(buf, frame[:]...)
	}
	return buf
}
