package emotion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopvoice/internal/emotion"
)

func TestHeuristicDecisionTable(t *testing.T) {
	cases := []struct {
		transcript string
		want       emotion.State
	}{
		{"this is too expensive", emotion.Frustrated},
		{"that's way too much", emotion.Frustrated},
		{"I can't afford that", emotion.Frustrated},
		{"so frustrating", emotion.Frustrated},
		{"I'm frustrated with this", emotion.Frustrated},
		{"I love it", emotion.Happy},
		{"perfect, thanks", emotion.Happy},
		{"great choice", emotion.Happy},
		{"thank you so much", emotion.Happy},
		{"can you help me", emotion.Confused},
		{"I'm confused", emotion.Confused},
		{"this is confusing", emotion.Confused},
		{"show me electronics", emotion.Neutral},
		{"", emotion.Neutral},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, emotion.Heuristic(tc.transcript), "transcript: %q", tc.transcript)
	}
}

func TestHeuristicFirstRuleWins(t *testing.T) {
	// Contains both a frustrated and a happy trigger.
	require.Equal(t, emotion.Frustrated, emotion.Heuristic("I love it but it is too expensive"))
}

func TestHeuristicCaseInsensitive(t *testing.T) {
	require.Equal(t, emotion.Frustrated, emotion.Heuristic("THIS IS TOO EXPENSIVE"))
}

// forbiddenInferencer fails the test if the remote path is ever taken.
type forbiddenInferencer struct{ t *testing.T }

func (f forbiddenInferencer) Infer(context.Context, string, []float32) (emotion.State, error) {
	f.t.Fatal("remote inference invoked without an audio sample")
	return "", nil
}

func TestClassifyWithoutAudioNeverCallsRemote(t *testing.T) {
	c := emotion.NewClassifier(forbiddenInferencer{t}, time.Second)

	got := c.Classify(context.Background(), "this is too expensive", nil)
	require.Equal(t, emotion.Frustrated, got)
}

type stubInferencer struct {
	state emotion.State
	err   error
	delay time.Duration
}

func (s stubInferencer) Infer(ctx context.Context, _ string, _ []float32) (emotion.State, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.state, s.err
}

func TestClassifyUsesRemoteWhenAudioPresent(t *testing.T) {
	c := emotion.NewClassifier(stubInferencer{state: emotion.Happy}, time.Second)

	// Transcript alone would read frustrated; tone wins.
	got := c.Classify(context.Background(), "too expensive", []float32{0.1, 0.2})
	require.Equal(t, emotion.Happy, got)
}

func TestClassifyFallsBackOnRemoteError(t *testing.T) {
	c := emotion.NewClassifier(stubInferencer{err: errors.New("service down")}, time.Second)

	got := c.Classify(context.Background(), "too expensive", []float32{0.1})
	require.Equal(t, emotion.Frustrated, got)
}

func TestClassifyFallsBackOnTimeout(t *testing.T) {
	c := emotion.NewClassifier(stubInferencer{state: emotion.Happy, delay: time.Second}, 20*time.Millisecond)

	start := time.Now()
	got := c.Classify(context.Background(), "thank you", []float32{0.1})
	require.Equal(t, emotion.Happy, got) // heuristic agrees here
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestClassifyRejectsInvalidRemoteState(t *testing.T) {
	c := emotion.NewClassifier(stubInferencer{state: emotion.State("ecstatic")}, time.Second)

	got := c.Classify(context.Background(), "thank you", []float32{0.1})
	require.Equal(t, emotion.Happy, got)
}
