package consent

import (
	"encoding/json"
	log "log/slog"
	"sync"
	"time"
)

const (
	storeKey = "consent"
	version  = "1"
)

// State is the user's biometric-analysis decision. Only an explicit
// grant or revoke mutates it; nothing infers it from behaviour.
type State struct {
	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
	Version   string     `json:"version"`
}

// Store is the key-value persistence collaborator. A missing key
// returns (nil, false, nil).
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Gate tracks the consent decision for the session and persists it
// through the Store. Persistence failures are logged, never escalated:
// the in-memory decision still applies.
type Gate struct {
	mu    sync.Mutex
	store Store
	state State
}

func NewGate(store Store) *Gate {
	g := &Gate{
		store: store,
		state: State{Granted: false, Version: version},
	}

	raw, ok, err := store.Get(storeKey)
	if err != nil {
		log.Warn("Failed to load consent, defaulting to not granted", "err", err)
		return g
	}
	if !ok {
		return g
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn("Corrupt consent record, defaulting to not granted", "err", err)
		return g
	}
	g.state = s
	return g
}

func (g *Gate) Get() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Set records an explicit grant or revoke and persists it. Setting the
// same value twice is idempotent: the persisted record is unchanged.
func (g *Gate) Set(granted bool) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Granted == granted && g.state.Version == version {
		return g.state
	}

	s := State{Granted: granted, Version: version}
	if granted {
		now := time.Now().UTC()
		s.GrantedAt = &now
	}
	g.state = s

	raw, err := json.Marshal(s)
	if err == nil {
		err = g.store.Set(storeKey, raw)
	}
	if err != nil {
		log.Warn("Failed to persist consent, keeping for this session", "err", err)
	}

	return g.state
}
