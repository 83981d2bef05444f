package consent_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"shopvoice/internal/consent"
)

func TestDefaultsToNotGranted(t *testing.T) {
	g := consent.NewGate(consent.NewMemStore())

	s := g.Get()
	require.False(t, s.Granted)
	require.Nil(t, s.GrantedAt)
}

func TestGrantPersistsAndReloads(t *testing.T) {
	store := consent.NewMemStore()

	g := consent.NewGate(store)
	s := g.Set(true)
	require.True(t, s.Granted)
	require.NotNil(t, s.GrantedAt)

	// A fresh gate over the same store sees the decision.
	g2 := consent.NewGate(store)
	s2 := g2.Get()
	require.True(t, s2.Granted)
	require.Equal(t, s.GrantedAt.Unix(), s2.GrantedAt.Unix())
}

func TestSetIsIdempotent(t *testing.T) {
	g := consent.NewGate(consent.NewMemStore())

	first := g.Set(true)
	second := g.Set(true)
	require.Equal(t, first, second)
}

func TestRevoke(t *testing.T) {
	g := consent.NewGate(consent.NewMemStore())

	g.Set(true)
	s := g.Set(false)
	require.False(t, s.Granted)
	require.Nil(t, s.GrantedAt)
}

func TestPersistenceFailureKeepsSessionState(t *testing.T) {
	store := consent.NewMemStore()
	store.FailSet = errors.New("disk full")

	g := consent.NewGate(store)
	s := g.Set(true)
	require.True(t, s.Granted, "consent must still apply for the current session")
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/consent.json"
	store := consent.NewFileStore(path)

	g := consent.NewGate(store)
	g.Set(true)

	g2 := consent.NewGate(consent.NewFileStore(path))
	require.True(t, g2.Get().Granted)
}
