// Package connectivity caches the process-wide online/offline state.
// Reads are synchronous and never touch the network; the host pushes
// transitions in.
package connectivity

import (
	log "log/slog"
	"sync"
)

type State string

const (
	Online  State = "online"
	Offline State = "offline"
)

// Monitor holds the current state and notifies a single subscriber of
// transitions. The zero state is online.
type Monitor struct {
	mu       sync.Mutex
	offline  bool
	onChange func(State)
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// OnChange registers the transition callback. Called without the lock
// held, from the goroutine that pushed the transition.
func (m *Monitor) OnChange(f func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = f
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return Offline
	}
	return Online
}

func (m *Monitor) Online() bool {
	return m.State() == Online
}

// Set records a transition pushed by the connectivity collaborator.
// Repeating the current state does not notify.
func (m *Monitor) Set(s State) {
	m.mu.Lock()
	offline := s == Offline
	changed := offline != m.offline
	m.offline = offline
	f := m.onChange
	m.mu.Unlock()

	if changed {
		log.Info("Connectivity changed", "state", s)
		if f != nil {
			f(s)
		}
	}
}
