package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopvoice/internal/capture"
	"shopvoice/internal/catalog"
	"shopvoice/internal/connectivity"
	"shopvoice/internal/emotion"
	"shopvoice/internal/payment"
	"shopvoice/internal/session"
	"shopvoice/internal/speech"
)

type fakePay struct {
	mu      sync.Mutex
	calls   []float64
	err     error
	doPanic bool
}

func (p *fakePay) Charge(_ context.Context, amount float64, _ string) (payment.Receipt, error) {
	if p.doPanic {
		panic("processor lost its mind")
	}
	p.mu.Lock()
	p.calls = append(p.calls, amount)
	p.mu.Unlock()
	if p.err != nil {
		return payment.Receipt{}, p.err
	}
	return payment.Receipt{Reference: "txn-1"}, nil
}

func (p *fakePay) chargeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePay) amounts() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.calls...)
}

type fakeVoice struct {
	mu    sync.Mutex
	lines []string
}

func (v *fakeVoice) Speak(text string, _ emotion.State) {
	v.mu.Lock()
	v.lines = append(v.lines, text)
	v.mu.Unlock()
}
func (v *fakeVoice) Stop()  {}
func (v *fakeVoice) Close() {}

func (v *fakeVoice) spoken() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.lines...)
}

type fakeHaptic struct {
	mu       sync.Mutex
	patterns []speech.Pattern
}

func (h *fakeHaptic) Pulse(p speech.Pattern) {
	h.mu.Lock()
	h.patterns = append(h.patterns, p)
	h.mu.Unlock()
}

type env struct {
	o      *session.Orchestrator
	voice  *fakeVoice
	haptic *fakeHaptic
	pay    *fakePay
	net    *connectivity.Monitor

	mu      sync.Mutex
	replies []session.Reply
}

func newEnv(t *testing.T, pay *fakePay) *env {
	t.Helper()
	e := &env{
		voice:  &fakeVoice{},
		haptic: &fakeHaptic{},
		pay:    pay,
		net:    connectivity.NewMonitor(),
	}
	e.o = session.New(session.Config{
		Classifier: emotion.NewClassifier(nil, 0),
		Catalog:    catalog.Default(),
		Payment:    pay,
		Voice:      e.voice,
		Haptics:    e.haptic,
		Net:        e.net,
		Mirror: func(r session.Reply) {
			e.mu.Lock()
			e.replies = append(e.replies, r)
			e.mu.Unlock()
		},
	})
	t.Cleanup(e.o.Stop)
	return e
}

func (e *env) say(seq int, text string) {
	e.o.Enqueue(capture.Event{Text: text, Final: true, Seq: seq})
}

func (e *env) waitReplies(t *testing.T, n int) []session.Reply {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e.mu.Lock()
		if len(e.replies) >= n {
			out := append([]session.Reply(nil), e.replies...)
			e.mu.Unlock()
			return out
		}
		e.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("never saw %d replies", n)
	return nil
}

func TestAddToCartFlow(t *testing.T) {
	e := newEnv(t, &fakePay{})

	e.say(1, "Add earbuds to cart")
	replies := e.waitReplies(t, 1)

	require.Contains(t, replies[0].Text, "Wireless Earbuds")
	c := e.o.Cart()
	require.Len(t, c.Lines, 1)
	require.Equal(t, 1, c.Lines[0].ProductID)
	require.Equal(t, 1, c.Lines[0].Quantity)
}

func TestUtteranceOrderingIsPreserved(t *testing.T) {
	e := newEnv(t, &fakePay{})

	// Both finals dispatched before the first finishes routing.
	e.say(1, "add earbuds please")
	e.say(2, "add a smart watch")
	e.waitReplies(t, 2)

	c := e.o.Cart()
	require.Len(t, c.Lines, 2)
	require.Equal(t, "Wireless Earbuds", c.Lines[0].Name)
	require.Equal(t, "Smart Watch", c.Lines[1].Name)
}

func TestInterimEventsNeverProcessed(t *testing.T) {
	e := newEnv(t, &fakePay{})

	e.o.Enqueue(capture.Event{Text: "add earbuds", Final: false, Seq: 1})
	e.say(2, "what's in my cart")
	replies := e.waitReplies(t, 1)

	require.Contains(t, replies[0].Text, "cart is empty")
	require.True(t, e.o.Cart().Empty())
}

func TestFrustratedDiscountFlow(t *testing.T) {
	e := newEnv(t, &fakePay{})

	e.say(1, "this is too expensive, give me a discount")
	replies := e.waitReplies(t, 1)

	require.Equal(t, emotion.Frustrated, replies[0].Emotion)
	require.Contains(t, replies[0].Text, "15%")
}

func TestOfflineCheckoutShortCircuits(t *testing.T) {
	pay := &fakePay{}
	e := newEnv(t, pay)
	e.net.Set(connectivity.Offline)

	e.say(1, "add earbuds")
	e.say(2, "checkout")
	replies := e.waitReplies(t, 3) // offline notice + add + checkout refusal

	last := replies[len(replies)-1]
	require.Contains(t, last.Text, "offline")
	require.Zero(t, pay.chargeCount(), "payment collaborator must not be invoked offline")
	require.Len(t, e.o.Cart().Lines, 1, "cart unchanged")
}

func TestCheckoutChargesAndClearsCart(t *testing.T) {
	pay := &fakePay{}
	e := newEnv(t, pay)

	e.say(1, "add earbuds")
	e.say(2, "checkout please")
	replies := e.waitReplies(t, 3) // add + checkout + confirmation

	require.Equal(t, 1, pay.chargeCount())
	require.InDelta(t, 49.99, pay.amounts()[0], 0.001) // neutral: no discount
	require.True(t, e.o.Cart().Empty())
	require.Contains(t, replies[2].Text, "txn-1")
}

func TestCheckoutEmptyCartNeverCharges(t *testing.T) {
	pay := &fakePay{}
	e := newEnv(t, pay)

	e.say(1, "checkout")
	replies := e.waitReplies(t, 1)

	require.Zero(t, pay.chargeCount())
	require.Contains(t, replies[0].Text, "empty")
}

func TestPaymentFailureKeepsCart(t *testing.T) {
	pay := &fakePay{err: &payment.Error{Reason: "card declined"}}
	e := newEnv(t, pay)

	e.say(1, "add earbuds")
	e.say(2, "checkout")
	replies := e.waitReplies(t, 3)

	require.Contains(t, replies[2].Text, "card declined")
	require.Len(t, e.o.Cart().Lines, 1, "cart must survive a failed charge for retry")
}

func TestPanicInsideLoopRecovers(t *testing.T) {
	pay := &fakePay{doPanic: true}
	e := newEnv(t, pay)

	e.say(1, "add earbuds")
	e.say(2, "checkout")
	replies := e.waitReplies(t, 3)

	require.Contains(t, replies[2].Text, "say that again")

	// The loop survives and keeps serving.
	e.say(3, "what's in my cart")
	replies = e.waitReplies(t, 4)
	require.Contains(t, replies[3].Text, "1 item")
}

func TestConnectivityTransitionSpeaksAndPulses(t *testing.T) {
	e := newEnv(t, &fakePay{})

	e.net.Set(connectivity.Offline)
	replies := e.waitReplies(t, 1)
	require.Contains(t, replies[0].Text, "offline")

	e.haptic.mu.Lock()
	require.NotEmpty(t, e.haptic.patterns)
	e.haptic.mu.Unlock()
}

func TestCaptureErrorIsRecoverable(t *testing.T) {
	e := newEnv(t, &fakePay{})

	e.o.HandleCaptureError(capture.ErrPermissionDenied)
	replies := e.waitReplies(t, 1)
	require.Contains(t, replies[0].Text, "microphone")

	// Loop still alive.
	e.say(1, "add earbuds")
	e.waitReplies(t, 2)
	require.Len(t, e.o.Cart().Lines, 1)
}
