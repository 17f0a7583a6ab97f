package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/realtime"
)

// Snapshot is the latest connection health known to the UI.
type Snapshot struct {
	User                api.User
	HasUser             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures

	Realtime      realtime.Status
	RealtimeError error
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Live reports whether pushed updates are currently flowing.
func (s Snapshot) Live() bool {
	return s.Realtime == realtime.StatusConnected
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the result of a health poll. When err is non-nil the
// previous user is kept but the error is recorded for visibility.
func (s *Store) Update(user *api.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if user != nil {
		s.snapshot.User = *user
		s.snapshot.HasUser = true
	} else {
		s.snapshot.User = api.User{}
		s.snapshot.HasUser = false
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// SetRealtime records the realtime connection status. It has the shape of
// realtime.StatusFunc.
func (s *Store) SetRealtime(status realtime.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Realtime = status
	s.snapshot.RealtimeError = err
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
