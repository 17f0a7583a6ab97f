// Package app is the composition root of comanda.
//
// # Startup
//
// Run performs these steps in order:
//
//  1. Load ~/.config/comanda/config.toml (defaults when missing)
//  2. Open the log file and the SQLite session store
//  3. Build the API client with the session as its token source
//  4. Prompt for credentials when no valid session is stored
//  5. Start the query cache, realtime bridge and health poller
//  6. Run the TUI until the operator quits, logs out or the context ends
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()       Read config.toml
//	       ├─────> session.Open()      Stored tokens
//	       ├─────> login()             huh prompt when signed out
//	       └─────> serve()
//	                ├─> cache.Run()        Evicts idle queries
//	                ├─> bridge.Run()       Realtime events -> invalidation
//	                ├─> bridge.Connect()   Websocket with reconnect
//	                ├─> poll()             GET /users/me -> state.Store
//	                └─> ui.Run()           Blocks; cancels the rest on exit
//
// # Polling
//
// The poller checks the signed-in user every interval (default 15 seconds).
// Consecutive failures double the wait up to 30 seconds. A 401 clears the
// stored session so the next start asks for credentials again.
//
// # Errors
//
// Configuration, logging and session failures abort startup. Poll and
// realtime failures are logged and surfaced in the header while the TUI
// keeps running.
package app
