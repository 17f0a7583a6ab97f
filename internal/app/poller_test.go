package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/logging"
	"github.com/five82/comanda/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	base := 3 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"no failures", 0, 3 * time.Second},
		{"negative failures", -2, 3 * time.Second},
		{"one failure", 1, 6 * time.Second},
		{"two failures", 2, 12 * time.Second},
		{"three failures", 3, 24 * time.Second},
		{"four failures capped", 4, maxBackoff},
		{"many failures capped", 50, maxBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateBackoff(tt.failures, base); got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoffNeverExceedsCap(t *testing.T) {
	for _, base := range []time.Duration{time.Second, defaultPollInterval, time.Minute} {
		for failures := 0; failures <= 20; failures++ {
			got := calculateBackoff(failures, base)
			if failures > 0 && got > maxBackoff {
				t.Errorf("calculateBackoff(%d, %v) = %v, exceeds %v", failures, base, got, maxBackoff)
			}
		}
	}
}

type fakeUsers struct {
	mu    sync.Mutex
	user  api.User
	err   error
	calls int
}

func (f *fakeUsers) CurrentUser(context.Context) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.user, f.err
}

type fakeSession struct {
	cleared int
}

func (f *fakeSession) Clear() error {
	f.cleared++
	return nil
}

func TestRefreshRecordsUser(t *testing.T) {
	store := &state.Store{}
	users := &fakeUsers{user: api.User{ID: 7, Name: "Ana"}}
	sess := &fakeSession{}

	if ok := refresh(context.Background(), store, users, sess, logging.Discard()); !ok {
		t.Fatal("refresh reported failure")
	}
	snap := store.Snapshot()
	if !snap.HasUser || snap.User.Name != "Ana" {
		t.Fatalf("snapshot user = %+v, want Ana", snap.User)
	}
	if sess.cleared != 0 {
		t.Fatalf("session cleared %d times on success", sess.cleared)
	}
}

func TestRefreshClearsSessionOnUnauthorized(t *testing.T) {
	store := &state.Store{}
	users := &fakeUsers{err: &api.Error{Kind: api.KindUnauthorized, Status: 401, Method: "GET", Path: "/users/me"}}
	sess := &fakeSession{}

	if ok := refresh(context.Background(), store, users, sess, logging.Discard()); ok {
		t.Fatal("refresh reported success on 401")
	}
	if sess.cleared != 1 {
		t.Fatalf("session cleared %d times, want 1", sess.cleared)
	}
	if snap := store.Snapshot(); snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("snapshot = %+v, want one recorded failure", snap)
	}
}

func TestRefreshKeepsSessionOnTransportError(t *testing.T) {
	store := &state.Store{}
	users := &fakeUsers{err: errors.New("connection refused")}
	sess := &fakeSession{}

	refresh(context.Background(), store, users, sess, logging.Discard())
	refresh(context.Background(), store, users, sess, logging.Discard())

	if sess.cleared != 0 {
		t.Fatalf("session cleared on transport error")
	}
	if !store.Snapshot().IsOffline() {
		t.Fatal("expected offline after two failures")
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poll(ctx, &state.Store{}, &fakeUsers{}, &fakeSession{}, time.Hour, logging.Discard())
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not return after cancel")
	}
}
