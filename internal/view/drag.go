package view

import (
	"errors"
	"slices"

	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/store"
)

// ErrNotReorderable is returned when a drag is started on a list whose
// order is not the stored custom order.
var ErrNotReorderable = errors.New("reordering needs the active tab in custom order")

// CheckReorderable rejects params whose displayed order does not come from
// order index: named sorts and the completed tab.
func (p Params) CheckReorderable() error {
	p = p.Normalize()
	if p.Tab != TabActive || p.Sort != SortCustom {
		return ErrNotReorderable
	}
	return nil
}

// Drag is the working list of an interactive reorder. Moves only touch the
// in-memory slice; nothing is persisted until Release.
type Drag struct {
	tasks []model.Task
}

// NewDrag starts a drag over the currently displayed list.
func NewDrag(displayed []model.Task) *Drag {
	return &Drag{tasks: slices.Clone(displayed)}
}

// Move shifts the task at from to position to. Out of range positions are
// ignored.
func (d *Drag) Move(from, to int) {
	n := len(d.tasks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	t := d.tasks[from]
	if from < to {
		copy(d.tasks[from:to], d.tasks[from+1:to+1])
	} else {
		copy(d.tasks[to+1:from+1], d.tasks[to:from])
	}
	d.tasks[to] = t
}

// Tasks returns the current presentation order.
func (d *Drag) Tasks() []model.Task {
	return slices.Clone(d.tasks)
}

// IDs returns the task ids in presentation order.
func (d *Drag) IDs() []int64 {
	ids := make([]int64, len(d.tasks))
	for i, t := range d.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Release ends the gesture and returns the rows whose order index must change
// so that sorting by order index reproduces the presentation order.
func (d *Drag) Release() []store.OrderChange {
	return Diff(d.tasks)
}

// Diff hands the order index values the tasks already hold back out in
// presentation order, so tasks outside the list keep their place. Slots are
// forced strictly increasing when stored values collide. Only rows whose
// value differs are returned.
func Diff(ordered []model.Task) []store.OrderChange {
	slots := make([]int, len(ordered))
	for i, t := range ordered {
		slots[i] = t.OrderIndex
	}
	slices.Sort(slots)
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			slots[i] = slots[i-1] + 1
		}
	}

	var changes []store.OrderChange
	for i, t := range ordered {
		if t.OrderIndex != slots[i] {
			changes = append(changes, store.OrderChange{ID: t.ID, OrderIndex: slots[i]})
		}
	}
	return changes
}
