package speech

import (
	log "log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	cueSampleRate = beep.SampleRate(44100)
	cueFreq       = 880
)

// CuePlayer renders haptic patterns as short audio pulses and plays the
// optional listening chime. Everything here is best-effort: if the
// speaker cannot be opened the player stays silent.
type CuePlayer struct {
	mu        sync.Mutex
	enabled   bool
	chimePath string
}

func NewCuePlayer(chimePath string) *CuePlayer {
	p := &CuePlayer{chimePath: chimePath}
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(time.Second/10)); err != nil {
		log.Warn("No audio output for cues, staying silent", "err", err)
		return p
	}
	p.enabled = true
	return p
}

// Pulse plays the pattern as alternating tone and silence. Blocks
// until the pattern finishes so patterns never overlap.
func (p *CuePlayer) Pulse(pattern Pattern) {
	if !p.enabled || len(pattern) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tone, err := generators.SinTone(cueSampleRate, cueFreq)
	if err != nil {
		return
	}

	parts := make([]beep.Streamer, 0, len(pattern)+1)
	for i, d := range pattern {
		n := cueSampleRate.N(d)
		if i%2 == 0 {
			parts = append(parts, beep.Take(n, tone))
		} else {
			parts = append(parts, beep.Silence(n))
		}
	}

	done := make(chan struct{})
	parts = append(parts, beep.Callback(func() { close(done) }))
	speaker.Play(beep.Seq(parts...))
	<-done
}

// Chime plays the configured listening chime, if any.
func (p *CuePlayer) Chime() {
	if !p.enabled || p.chimePath == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(p.chimePath)
	if err != nil {
		log.Warn("Failed to open chime", "path", p.chimePath, "err", err)
		return
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		log.Warn("Failed to decode chime", "err", err)
		return
	}
	defer streamer.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(
		beep.Resample(4, format.SampleRate, cueSampleRate, streamer),
		beep.Callback(func() { close(done) }),
	))
	<-done
}
