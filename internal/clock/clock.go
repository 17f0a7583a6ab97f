// Package clock abstracts the time operations used by the cache and the
// debounced controllers so tests can drive them deterministically.
package clock

import "time"

// Clock is the subset of the time package that timing-sensitive code uses.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed. The real clock runs f on its own
	// goroutine; the fake clock runs it synchronously inside Advance.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer cancels a pending AfterFunc call.
type Timer interface {
	// Stop reports whether the call was cancelled before it ran.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
