// Package ui provides the terminal interface of the comanda admin client.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds only presentation state
// (current view, selections, prompt, toasts, open dialog); data lives in the
// query cache and is read through the listview controllers, which own the
// filters and the mounted subscriptions of each view.
//
// # Package Structure
//
//   - app.go: Model, Options, the Update loop and Run
//   - header.go: status bar and per-view command hints
//   - orders.go, products.go, stats.go, activity.go: the four views
//   - modal.go: dialog registry and host; *_modal.go are the dialogs
//   - input.go: the single-line prompt used for searches and date ranges
//   - toast.go: transient notifications
//   - table.go: table and box rendering shared by the views
//
// # Views
//
//   - Pedidos: paginated orders with search, status, shift and date filters,
//     plus the kitchen summary for the selected shift
//   - Productos: catalog with inline stock editing and the product dialogs
//   - Estadísticas: revenue, order counts and dish ranking for a date range
//   - Actividad: the tail of the program's own log file
//
// # Event Flow
//
//  1. New mounts the view restored from the saved location
//  2. Init arms one waiter per controller change channel, the realtime event
//     channel and the stock notice channel; each waiter re-arms on receipt
//  3. Keys go to the help overlay, then the open dialog, then the prompt,
//     then global bindings, then the current view
//  4. Writes run as commands through the cache's Mutate and report back as
//     resultMsg, which raises a toast and closes the dialog on success
//  5. Leaving a view unmounts its queries; leaving Pedidos also closes the
//     realtime subscription
package ui
