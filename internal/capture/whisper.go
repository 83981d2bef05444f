package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer transcribes utterances with a local whisper.cpp
// model, so recognition keeps working offline.
type WhisperRecognizer struct {
	model whisper.Model
}

func NewWhisperRecognizer(modelPath string) (*WhisperRecognizer, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &WhisperRecognizer{model: m}, nil
}

func (w *WhisperRecognizer) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

// Transcribe expects mono 16 kHz float32 PCM. Decoded segments are
// streamed to onInterim as they arrive; the return value is the full
// utterance text.
func (w *WhisperRecognizer) Transcribe(ctx context.Context, pcm []float32, onInterim func(string)) (string, error) {
	if w.model == nil {
		return "", errors.New("nil model")
	}
	if len(pcm) == 0 {
		return "", errors.New("no audio samples")
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}
	if err := wctx.SetLanguage("en"); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}

		parts = append(parts, strings.TrimSpace(s.Text))
		if onInterim != nil {
			onInterim(strings.Join(parts, " "))
		}
	}

	return strings.Join(parts, " "), nil
}
