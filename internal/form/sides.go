package form

import (
	"context"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/five82/comanda/internal/api"
)

const maxConcurrentSideSaves = 4

// SideWriter applies side updates.
type SideWriter interface {
	UpdateSide(ctx context.Context, id int64, update api.SideUpdate) (api.Side, error)
}

// SideName validates the name of a new side dish.
func SideName(name string) (string, Errors) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Errors{"name": "El nombre de la guarnición es obligatorio"}
	}
	return name, nil
}

// SidesDraft collects edits to existing side dishes until they are saved
// together.
type SidesDraft struct {
	edits map[int64]api.SideUpdate
}

// NewSidesDraft returns an empty draft.
func NewSidesDraft() *SidesDraft {
	return &SidesDraft{edits: make(map[int64]api.SideUpdate)}
}

// Rename records a new name for side.
func (d *SidesDraft) Rename(side api.Side, name string) {
	u := d.edits[side.ID]
	if name == side.Name {
		u.Name = nil
	} else {
		u.Name = &name
	}
	d.put(side.ID, u)
}

// SetActive records a new availability for side.
func (d *SidesDraft) SetActive(side api.Side, active bool) {
	u := d.edits[side.ID]
	if active == side.IsActive {
		u.IsActive = nil
	} else {
		u.IsActive = &active
	}
	d.put(side.ID, u)
}

func (d *SidesDraft) put(id int64, u api.SideUpdate) {
	if u.Name == nil && u.IsActive == nil {
		delete(d.edits, id)
		return
	}
	d.edits[id] = u
}

// Apply returns side with the draft's edits applied, for display.
func (d *SidesDraft) Apply(side api.Side) api.Side {
	u, ok := d.edits[side.ID]
	if !ok {
		return side
	}
	if u.Name != nil {
		side.Name = *u.Name
	}
	if u.IsActive != nil {
		side.IsActive = *u.IsActive
	}
	return side
}

// Dirty reports whether the draft has unsaved edits.
func (d *SidesDraft) Dirty() bool { return len(d.edits) > 0 }

// Validate checks that no side was renamed to a blank name.
func (d *SidesDraft) Validate() Errors {
	for _, u := range d.edits {
		if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
			return Errors{"name": "El nombre de la guarnición es obligatorio"}
		}
	}
	return nil
}

// Save sends every edit concurrently and returns the first failure. The
// draft is cleared only when every update succeeded.
func (d *SidesDraft) Save(ctx context.Context, w SideWriter) error {
	if errs := d.Validate(); errs != nil {
		return errs
	}
	ids := make([]int64, 0, len(d.edits))
	for id := range d.edits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	p := pool.New().WithMaxGoroutines(maxConcurrentSideSaves).WithErrors().WithFirstError().WithContext(ctx)
	for _, id := range ids {
		update := d.edits[id]
		if update.Name != nil {
			trimmed := strings.TrimSpace(*update.Name)
			update.Name = &trimmed
		}
		p.Go(func(ctx context.Context) error {
			_, err := w.UpdateSide(ctx, id, update)
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	d.edits = make(map[int64]api.SideUpdate)
	return nil
}
