// Package logtail reads the end of comanda's own log file for the activity
// view.
//
// Read keeps a ring of the last N lines while scanning, so memory stays
// bounded by N regardless of file size. Tail additionally parses each line
// into an Entry (time, level, message and trailing key=value fields) as
// written by the file logger:
//
//	2025-03-01T12:00:00Z INFO order status updated order=7 status=DELIVERED
//
// Lines that do not follow that format are kept verbatim as the message.
package logtail
