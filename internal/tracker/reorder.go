package tracker

import (
	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/store"
	"github.com/dukerupert/toodo/internal/view"
)

// BeginDrag starts an interactive reorder over the active tasks as currently
// displayed with the given params. Filters are allowed; named sorts and the
// completed tab return view.ErrNotReorderable.
func (t *Tracker) BeginDrag(p view.Params) (*view.Drag, error) {
	if err := p.CheckReorderable(); err != nil {
		return nil, err
	}
	displayed, err := t.Tasks(p)
	if err != nil {
		return nil, err
	}
	return view.NewDrag(displayed), nil
}

// ReleaseDrag persists the order reached at the end of a gesture, writing
// only the rows whose index changed.
func (t *Tracker) ReleaseDrag(d *view.Drag) ([]store.OrderChange, error) {
	return t.CommitOrder(d.IDs())
}

// CommitOrder makes the given ids appear in this order when sorted by order
// index, reusing the order index values they already hold. Ids that no
// longer exist are skipped. The returned changes are the
// rows that were written.
func (t *Tracker) CommitOrder(ids []int64) ([]store.OrderChange, error) {
	all, err := t.tasks.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Task, len(all))
	for _, task := range all {
		byID[task.ID] = task
	}

	ordered := make([]model.Task, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		task, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, task)
	}

	changes := view.Diff(ordered)
	if err := t.tasks.UpdateOrder(changes); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		t.notify("task", "reordered", 0)
	}
	if changes == nil {
		changes = []store.OrderChange{}
	}
	return changes, nil
}
