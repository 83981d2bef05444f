// Package capture owns the continuous listening session: microphone
// input, utterance endpointing, speech recognition and the event
// stream the orchestrator consumes.
package capture

import (
	"context"
	"errors"
	"fmt"
)

// Event is one recognized speech segment. Interim events carry partial
// text for UI display only; exactly one Final event per utterance goes
// into the processing queue. Audio is present only when the shopper has
// consented to tone analysis.
type Event struct {
	Text  string
	Final bool
	Seq   int
	Audio []float32
}

// Capture error taxonomy. These disable or pause voice input; they
// never crash the session owner.
var (
	ErrUnsupported      = errors.New("speech capture not supported on this platform")
	ErrPermissionDenied = errors.New("microphone permission denied")
)

// StreamError wraps a recoverable recognition or stream failure; the
// session returns to idle and may be restarted by the user.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("capture stream: %v", e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

// Mic records one utterance of mono 16 kHz PCM, returning when the
// speaker goes silent or ctx is cancelled.
type Mic interface {
	Record(ctx context.Context) ([]float32, error)
}

// Recognizer transcribes one utterance. onInterim, when non-nil, is
// called with the running partial text as segments decode.
type Recognizer interface {
	Transcribe(ctx context.Context, pcm []float32, onInterim func(string)) (string, error)
}
