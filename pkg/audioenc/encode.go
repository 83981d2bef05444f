// Package audioenc converts between the engine's working format
// (mono float32 PCM at 16 kHz) and on-disk / on-wire audio formats.
package audioenc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const SampleRate = 16000

// EncodeWAV16k renders mono 16 kHz float32 PCM as a 16-bit WAV file in
// memory, the format the prosody service accepts.
func EncodeWAV16k(pcm []float32) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no samples")
	}

	ints := make([]int, len(pcm))
	for i, s := range pcm {
		v := int(clamp(float64(s), -1, 1) * 32767)
		ints[i] = v
	}

	var ws writeSeeker
	enc := wav.NewEncoder(&ws, SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav: %w", err)
	}
	return ws.buf.Bytes(), nil
}

// writeSeeker is the in-memory io.WriteSeeker the wav encoder needs.
type writeSeeker struct {
	buf bytes.Buffer
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if extra := ws.pos + len(p) - ws.buf.Len(); extra > 0 {
		ws.buf.Write(make([]byte, extra))
	}
	copy(ws.buf.Bytes()[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = ws.pos + int(offset)
	case io.SeekEnd:
		next = ws.buf.Len() + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position")
	}
	ws.pos = next
	return int64(next), nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
