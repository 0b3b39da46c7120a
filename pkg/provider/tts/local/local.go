// Package local provides an offline TTS fallback. It renders a short spoken
// placeholder clip as 16-bit PCM WAV so the delivery pipeline always has
// audio to stream, even when every cloud voice service is down.
//
// The clip is a soft amplitude-modulated tone whose duration scales with
// the word count of the input text, which keeps playback length roughly
// proportional to what the cloud voice would have produced.
package local

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
)

const (
	sampleRate = 16000
	baseFreq   = 220.0

	// secondsPerWord approximates a conversational speaking rate of
	// ~150 words per minute.
	secondsPerWord = 0.4

	minClipSeconds = 0.5
	maxClipSeconds = 30.0
)

// Provider implements tts.Provider with locally generated audio.
type Provider struct{}

var _ tts.Provider = (*Provider)(nil)

// New creates a local Provider. It never fails and needs no credentials.
func New() *Provider {
	return &Provider{}
}

// Synthesize implements tts.Provider. The voice's pitch delta shifts the
// tone frequency so persona voices remain distinguishable in fallback mode.
func (p *Provider) Synthesize(_ context.Context, text string, voice tts.Voice) (*tts.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("local: %w: text must not be empty", fault.ErrInvalidInput)
	}

	words := len(strings.Fields(text))
	seconds := float64(words) * secondsPerWord
	if seconds < minClipSeconds {
		seconds = minClipSeconds
	}
	if seconds > maxClipSeconds {
		seconds = maxClipSeconds
	}

	// Each pitch unit shifts the tone by a semitone.
	freq := baseFreq * math.Pow(2, float64(voice.PitchDelta)/12)

	audio := renderWAV(seconds, freq)
	return &tts.Result{
		Audio:       audio,
		VoiceUsed:   voice.ID,
		ServiceUsed: "local",
	}, nil
}

// renderWAV produces a complete RIFF/WAVE file containing a modulated tone.
func renderWAV(seconds, freq float64) []byte {
	n := int(seconds * sampleRate)
	pcm := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		// 4 Hz amplitude modulation gives the clip a speech-like cadence.
		env := 0.5 + 0.5*math.Sin(2*math.Pi*4*t)
		s := 0.25 * env * math.Sin(2*math.Pi*freq*t)
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(s*math.MaxInt16)))
	}

	var buf bytes.Buffer
	dataLen := uint32(len(pcm))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))       // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))        // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))        // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))        // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))       // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm)
	return buf.Bytes()
}
