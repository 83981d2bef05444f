// Package speech drives spoken output and haptic feedback. Speech is
// serialized and interrupting: a new utterance cancels whatever is
// still being spoken, so the shopper always hears the latest reply.
package speech

import (
	"time"

	"shopvoice/internal/emotion"
)

// Synthesizer renders a reply as speech. Speak is fire-and-forget.
type Synthesizer interface {
	Speak(text string, state emotion.State)
	Stop()
	Close()
}

// Haptics plays a short feedback pattern. Best-effort: an absent
// capability simply does nothing.
type Haptics interface {
	Pulse(pattern Pattern)
}

// Pattern alternates pulse and gap durations, starting with a pulse.
type Pattern []time.Duration

var (
	PatternConfirm = Pattern{80 * time.Millisecond}
	PatternError   = Pattern{60 * time.Millisecond, 60 * time.Millisecond, 60 * time.Millisecond}
	PatternOffline = Pattern{
		60 * time.Millisecond, 60 * time.Millisecond,
		60 * time.Millisecond, 60 * time.Millisecond,
		60 * time.Millisecond,
	}
)

// voiceParams are the per-emotion espeak settings: calmer and slower
// for frustrated shoppers, brighter for happy ones.
type voiceParams struct {
	rate  int // words per minute
	pitch int // 0..99
}

var toneTable = map[emotion.State]voiceParams{
	emotion.Neutral:    {rate: 170, pitch: 50},
	emotion.Happy:      {rate: 185, pitch: 62},
	emotion.Frustrated: {rate: 145, pitch: 42},
	emotion.Confused:   {rate: 155, pitch: 50},
}

func paramsFor(state emotion.State) voiceParams {
	if p, ok := toneTable[state]; ok {
		return p
	}
	return toneTable[emotion.Neutral]
}

// Noop satisfies both interfaces for degraded (text-only, silent)
// operation and for tests.
type Noop struct{}

func (Noop) Speak(string, emotion.State) {}
func (Noop) Stop()                       {}
func (Noop) Close()                      {}
func (Noop) Pulse(Pattern)               {}
