// Package state holds the connection health shared between the background
// workers and the UI.
//
// The health poller writes the signed-in user (or the last error) with
// Update, and the realtime connection reports its status through
// SetRealtime. The UI reads a copy with Snapshot on every tick. Snapshot
// returns values, so the UI never observes a torn update.
//
// IsOffline turns true after two consecutive failed polls. One failure is
// usually a blip and does not change the header.
package state
