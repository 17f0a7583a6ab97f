// Package modal holds the identifiers, registry and open/close state of the
// program's dialogs. Rendering lives in the ui package; this package only
// decides which dialog is open and with what arguments.
package modal

import (
	"errors"
	"fmt"
	"sync"
)

// ID names a dialog.
type ID int

const (
	None ID = iota
	ProductModal
	NewProductModal
	SidesModal
	DeleteConfirmationModal
	OrderStatusModal
)

// IDs lists every openable dialog.
var IDs = []ID{ProductModal, NewProductModal, SidesModal, DeleteConfirmationModal, OrderStatusModal}

func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case ProductModal:
		return "product"
	case NewProductModal:
		return "new-product"
	case SidesModal:
		return "sides"
	case DeleteConfirmationModal:
		return "delete-confirmation"
	case OrderStatusModal:
		return "order-status"
	default:
		return fmt.Sprintf("modal(%d)", int(id))
	}
}

// Size is the dialog's footprint.
type Size int

const (
	Small Size = iota
	Medium
	Large
)

// Props are the arguments a dialog is opened with.
type Props struct {
	ProductID   string
	ProductName string
	Photo       string
	Title       string
	OrderID     int64
}

// ErrUnknownModal is returned when resolving an unregistered ID.
var ErrUnknownModal = errors.New("unknown modal")

// Entry describes how to build one dialog.
type Entry[C any] struct {
	Title string
	Size  Size
	New   func(Props) C
}

// Registry maps dialog IDs to their entries. C is the component type of the
// rendering layer.
type Registry[C any] struct {
	entries map[ID]Entry[C]
}

// NewRegistry returns an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{entries: make(map[ID]Entry[C])}
}

// Register adds or replaces the entry for id.
func (r *Registry[C]) Register(id ID, entry Entry[C]) {
	r.entries[id] = entry
}

// Resolve returns the entry for id.
func (r *Registry[C]) Resolve(id ID) (Entry[C], error) {
	entry, ok := r.entries[id]
	if !ok || entry.New == nil {
		return Entry[C]{}, fmt.Errorf("%w: %s", ErrUnknownModal, id)
	}
	return entry, nil
}

// Validate reports every declared ID without a usable entry.
func (r *Registry[C]) Validate() error {
	var missing []error
	for _, id := range IDs {
		if _, err := r.Resolve(id); err != nil {
			missing = append(missing, err)
		}
	}
	return errors.Join(missing...)
}

// Session is the open dialog, or the zero value when none is open.
type Session struct {
	ID    ID
	Props Props
}

// Open reports whether a dialog is open.
func (s Session) Open() bool { return s.ID != None }

// Controller owns the single open-dialog slot.
type Controller struct {
	mu      sync.Mutex
	session Session
}

// Open shows id with props, replacing any open dialog.
func (c *Controller) Open(id ID, props Props) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == None {
		c.session = Session{}
		return
	}
	c.session = Session{ID: id, Props: props}
}

// Close hides the dialog and forgets its props.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Session{}
}

// Current returns the open dialog.
func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
