// Package session holds the interaction control loop: one finalized
// utterance in, one classified, routed, spoken-and-acted-on result out.
package session

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"shopvoice/internal/capture"
	"shopvoice/internal/cart"
	"shopvoice/internal/catalog"
	"shopvoice/internal/connectivity"
	"shopvoice/internal/emotion"
	"shopvoice/internal/intent"
	"shopvoice/internal/payment"
	"shopvoice/internal/speech"
)

const utteranceTimeout = 30 * time.Second

// Reply is the result of one processed utterance, handed to the
// optional mirror callback (the host UI bus).
type Reply struct {
	Text    string
	Emotion emotion.State
	Seq     int
}

// Orchestrator owns the cart and runs utterances through the pipeline
// strictly in the order they were spoken. Final transcripts arriving
// while one is still in flight queue up FIFO and unbounded; nothing is
// interleaved, so cart mutations apply in speech order.
type Orchestrator struct {
	classifier *emotion.Classifier
	cat        *catalog.Catalog
	pay        payment.Processor
	voice      speech.Synthesizer
	haptic     speech.Haptics
	net        *connectivity.Monitor
	mirror     func(Reply)

	mu    sync.Mutex
	cart  cart.Cart
	queue []capture.Event
	wake  chan struct{}
	done  chan struct{}
}

type Config struct {
	Classifier *emotion.Classifier
	Catalog    *catalog.Catalog
	Payment    payment.Processor
	Voice      speech.Synthesizer
	Haptics    speech.Haptics
	Net        *connectivity.Monitor
	Mirror     func(Reply) // optional
}

func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		classifier: cfg.Classifier,
		cat:        cfg.Catalog,
		pay:        cfg.Payment,
		voice:      cfg.Voice,
		haptic:     cfg.Haptics,
		net:        cfg.Net,
		mirror:     cfg.Mirror,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	o.net.OnChange(o.onConnectivity)
	go o.run()
	return o
}

func (o *Orchestrator) Stop() {
	close(o.done)
}

// Cart returns a snapshot of the current cart.
func (o *Orchestrator) Cart() cart.Cart {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cart
}

// Enqueue accepts a capture event. Interim events are ignored here;
// they only ever feed the UI mirror. Exactly one final event per
// utterance enters the queue.
func (o *Orchestrator) Enqueue(ev capture.Event) {
	if !ev.Final {
		return
	}

	o.mu.Lock()
	o.queue = append(o.queue, ev)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// HandleCaptureError turns a capture failure into a spoken, recoverable
// notification. Voice input may be disabled afterwards but the session
// loop itself keeps running.
func (o *Orchestrator) HandleCaptureError(err error) {
	var msg string
	switch {
	case errors.Is(err, capture.ErrUnsupported):
		msg = "Voice input isn't available on this device. You can keep shopping by text."
	case errors.Is(err, capture.ErrPermissionDenied):
		msg = "I don't have microphone access. Voice input is off until you allow it."
	default:
		msg = "I lost the microphone for a moment. Say the word and I'll listen again."
	}
	log.Warn("Capture error", "err", err)
	o.haptic.Pulse(speech.PatternError)
	o.speak(Reply{Text: msg, Emotion: emotion.Neutral})
}

func (o *Orchestrator) run() {
	for {
		ev, ok := o.next()
		if !ok {
			select {
			case <-o.wake:
				continue
			case <-o.done:
				return
			}
		}
		o.process(ev)
	}
}

func (o *Orchestrator) next() (capture.Event, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return capture.Event{}, false
	}
	ev := o.queue[0]
	o.queue = o.queue[1:]
	return ev, true
}

// process runs one utterance through classify -> route -> synthesize.
// Any panic from an unexpected intent shape is caught here: the loop
// answers with a generic recoverable response and moves on.
func (o *Orchestrator) process(ev capture.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Utterance processing failed", "seq", ev.Seq, "panic", r)
			o.haptic.Pulse(speech.PatternError)
			o.speak(Reply{
				Text:    "Something went wrong there. Could you say that again?",
				Emotion: emotion.Neutral,
				Seq:     ev.Seq,
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), utteranceTimeout)
	defer cancel()

	state := o.classifier.Classify(ctx, ev.Text, ev.Audio)
	log.Info("Classified", "seq", ev.Seq, "text", ev.Text, "emotion", state)

	in := intent.Parse(ev.Text, o.cat)
	log.Info("Routed", "seq", ev.Seq, "intent", in.Kind)

	// Connectivity precondition: checkout needs the payment processor.
	if in.Kind == intent.Checkout && !o.net.Online() {
		o.haptic.Pulse(speech.PatternOffline)
		o.speak(Reply{
			Text:    "You're offline right now, so I can't complete the purchase. Your cart is safe.",
			Emotion: state,
			Seq:     ev.Seq,
		})
		return
	}

	o.mu.Lock()
	current := o.cart
	o.mu.Unlock()

	out := intent.Route(in, state, current, o.cat)

	o.mu.Lock()
	o.cart = out.Cart
	o.mu.Unlock()

	o.speak(Reply{Text: out.Response, Emotion: state, Seq: ev.Seq})

	if out.Charge {
		o.charge(ctx, out, state, ev.Seq)
		return
	}

	if in.Kind == intent.AddToCart && in.HasProduct {
		o.haptic.Pulse(speech.PatternConfirm)
	}
}

func (o *Orchestrator) charge(ctx context.Context, out intent.Outcome, state emotion.State, seq int) {
	receipt, err := o.pay.Charge(ctx, out.ChargeTotal, out.Cart.Summary())
	if err != nil {
		// The cart stays intact so the shopper can retry.
		var perr *payment.Error
		reason := "the payment didn't go through"
		if errors.As(err, &perr) {
			reason = perr.Reason
		}
		log.Warn("Charge failed", "seq", seq, "err", err)
		o.haptic.Pulse(speech.PatternError)
		o.speak(Reply{
			Text:    fmt.Sprintf("I'm sorry, %s. Your cart is untouched if you'd like to try again.", reason),
			Emotion: state,
			Seq:     seq,
		})
		return
	}

	o.mu.Lock()
	o.cart = cart.Cart{}
	o.mu.Unlock()

	log.Info("Charged", "seq", seq, "reference", receipt.Reference, "amount", out.ChargeTotal)
	o.haptic.Pulse(speech.PatternConfirm)
	o.speak(Reply{
		Text:    fmt.Sprintf("Payment confirmed, reference %s. Thanks for shopping with us!", receipt.Reference),
		Emotion: state,
		Seq:     seq,
	})
}

func (o *Orchestrator) onConnectivity(s connectivity.State) {
	if s == connectivity.Offline {
		o.haptic.Pulse(speech.PatternOffline)
		o.speak(Reply{Text: "Looks like we're offline. Browsing still works, checkout will have to wait.", Emotion: emotion.Neutral})
		return
	}
	o.haptic.Pulse(speech.PatternConfirm)
	o.speak(Reply{Text: "We're back online.", Emotion: emotion.Neutral})
}

func (o *Orchestrator) speak(r Reply) {
	o.voice.Speak(r.Text, r.Emotion)
	if o.mirror != nil {
		o.mirror(r)
	}
}
