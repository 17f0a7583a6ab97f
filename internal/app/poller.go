package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/state"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// userSource is the health probe the poller calls.
type userSource interface {
	CurrentUser(ctx context.Context) (api.User, error)
}

// sessionClearer drops the stored tokens once the API rejects them.
type sessionClearer interface {
	Clear() error
}

// calculateBackoff returns the wait before the next poll after failures
// consecutive failures, doubling from base up to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}

// poll refreshes the store at interval until ctx is cancelled, backing off
// while the API keeps failing.
func poll(ctx context.Context, store *state.Store, client userSource, sess sessionClearer, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	failures := 0
	for {
		wait := interval
		if failures > 0 {
			wait = calculateBackoff(failures, interval)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if refresh(ctx, store, client, sess, logger) {
			failures = 0
		} else {
			failures++
		}
	}
}

// refresh fetches the signed-in user once and records the outcome. It
// reports whether the call succeeded.
func refresh(ctx context.Context, store *state.Store, client userSource, sess sessionClearer, logger *log.Logger) bool {
	user, err := client.CurrentUser(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		store.Update(nil, err)
		if api.IsUnauthorized(err) {
			logger.Warn("session rejected by api, clearing tokens")
			if cerr := sess.Clear(); cerr != nil {
				logger.Error("clear session", "err", cerr)
			}
			return false
		}
		logger.Warn("health poll failed", "err", err)
		return false
	}
	store.Update(&user, nil)
	return true
}
