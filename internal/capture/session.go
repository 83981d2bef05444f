package capture

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
)

// Session is the listening state machine: a single Idle <-> Listening
// toggle. While listening it records utterances back to back, emitting
// interim events for UI display and one final event per utterance.
//
// Start is idempotent; the microphone is owned exclusively for the
// lifetime of the listening state. Any capture or recognition error
// returns the session to idle and is reported through onError: the
// session never restarts itself, re-activation is a user decision.
type Session struct {
	mic       Mic
	rec       Recognizer
	consented func() bool
	emit      func(Event)
	onError   func(error)

	mu        sync.Mutex
	listening bool
	cancel    context.CancelFunc
	seq       int
}

func NewSession(mic Mic, rec Recognizer, consented func() bool, emit func(Event), onError func(error)) *Session {
	return &Session{
		mic:       mic,
		rec:       rec,
		consented: consented,
		emit:      emit,
		onError:   onError,
	}
}

func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Start moves Idle -> Listening. Starting an already-listening session
// is a no-op. Without a recognition capability the session never
// leaves idle.
func (s *Session) Start() error {
	if s.mic == nil || s.rec == nil {
		return ErrUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.listening = true

	go s.run(ctx)
	return nil
}

// Stop moves Listening -> Idle, discarding any in-flight utterance.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listening {
		return
	}
	s.cancel()
	s.listening = false
}

func (s *Session) idle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening {
		s.cancel()
		s.listening = false
	}
}

func (s *Session) run(ctx context.Context) {
	defer s.idle()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pcm, err := s.mic.Record(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			s.onError(err)
			return
		}

		s.mu.Lock()
		s.seq++
		seq := s.seq
		s.mu.Unlock()

		text, err := s.rec.Transcribe(ctx, pcm, func(partial string) {
			s.emit(Event{Text: partial, Seq: seq})
		})
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			s.onError(&StreamError{Err: err})
			return
		}
		if text == "" {
			continue
		}

		ev := Event{Text: text, Final: true, Seq: seq}
		if s.consented() {
			ev.Audio = pcm
		}
		// Without consent the recording buffer is dropped here and
		// never leaves the session.
		log.Debug("Utterance finalized", "seq", seq, "text", text, "audio", len(ev.Audio) > 0)
		s.emit(ev)
	}
}

// Inject feeds a prerecorded utterance through recognition as if it
// had been spoken, bypassing the microphone. Debug aid for running the
// pipeline without audio hardware.
func (s *Session) Inject(ctx context.Context, pcm []float32) error {
	if s.rec == nil {
		return ErrUnsupported
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	text, err := s.rec.Transcribe(ctx, pcm, nil)
	if err != nil {
		return &StreamError{Err: err}
	}
	if text == "" {
		return &StreamError{Err: errors.New("no speech recognized")}
	}

	ev := Event{Text: text, Final: true, Seq: seq}
	if s.consented() {
		ev.Audio = pcm
	}
	s.emit(ev)
	return nil
}
