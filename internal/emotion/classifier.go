package emotion

import (
	"context"
	log "log/slog"
	"time"
)

// Inferencer is the external prosody-analysis capability. It receives
// the utterance audio as mono 16 kHz PCM along with the transcript.
type Inferencer interface {
	Infer(ctx context.Context, transcript string, pcm16k []float32) (State, error)
}

const defaultTimeout = 3 * time.Second

// Classifier decides per utterance between the lexical heuristic and
// the remote prosody capability. The remote path runs only when audio
// is present (the capture session withholds it without consent) and
// always falls back to the heuristic: classification never fails and
// never blocks past its timeout.
type Classifier struct {
	remote  Inferencer
	timeout time.Duration
}

func NewClassifier(remote Inferencer, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Classifier{remote: remote, timeout: timeout}
}

func (c *Classifier) Classify(ctx context.Context, transcript string, pcm16k []float32) State {
	if c.remote == nil || len(pcm16k) == 0 {
		return Heuristic(transcript)
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	state, err := c.remote.Infer(rctx, transcript, pcm16k)
	if err != nil || !state.Valid() {
		log.Debug("Prosody inference unavailable, using heuristic", "err", err)
		return Heuristic(transcript)
	}
	return state
}
