package capture

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate       = 16000
	frameSize        = 320 // 20ms
	silenceThreshRMS = 0.015
	silenceFrames    = 30 // 600ms of trailing silence ends the utterance
	maxUtteranceSec  = 10
)

// PortAudioMic records utterances from the default input device with
// RMS-based silence endpointing.
type PortAudioMic struct{}

func NewPortAudioMic() (*PortAudioMic, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, ErrUnsupported
	}
	return &PortAudioMic{}, nil
}

func (m *PortAudioMic) Close() {
	portaudio.Terminate()
}

func (m *PortAudioMic) Record(ctx context.Context) ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, classifyOpenErr(err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, &StreamError{Err: err}
	}
	defer stream.Stop()

	var (
		speaking bool
		silent   int
	)
	maxFrames := maxUtteranceSec * sampleRate / frameSize

	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			// In-flight utterance is discarded on cancellation.
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, &StreamError{Err: err}
		}

		if frameRMS(buf) > silenceThreshRMS {
			speaking = true
			silent = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silent++
			if silent >= silenceFrames {
				break
			}
			out = append(out, buf...)
		}
	}

	if len(out) == 0 {
		return nil, &StreamError{Err: errors.New("no speech detected")}
	}
	return out, nil
}

func classifyOpenErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access") {
		return ErrPermissionDenied
	}
	if strings.Contains(msg, "no device") || strings.Contains(msg, "no default") {
		return ErrUnsupported
	}
	return &StreamError{Err: err}
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
