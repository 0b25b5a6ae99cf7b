package view

import (
	"testing"

	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/store"
)

func orderedTasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{ID: int64(i + 1), OrderIndex: i}
	}
	return tasks
}

func TestDragMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int64
	}{
		{"down", 0, 2, []int64{2, 3, 1, 4}},
		{"up", 3, 1, []int64{1, 4, 2, 3}},
		{"same", 1, 1, []int64{1, 2, 3, 4}},
		{"out of range", 0, 9, []int64{1, 2, 3, 4}},
		{"negative", -1, 0, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDrag(orderedTasks(4))
			d.Move(tt.from, tt.to)
			if got := d.IDs(); !equalIDs(got, tt.want) {
				t.Errorf("Move(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDragDoesNotTouchInput(t *testing.T) {
	tasks := orderedTasks(3)
	d := NewDrag(tasks)
	d.Move(0, 2)
	if tasks[0].ID != 1 {
		t.Error("NewDrag should copy the displayed list")
	}
}

func TestDragReleaseWritesOnlyChangedRows(t *testing.T) {
	d := NewDrag(orderedTasks(5))
	d.Move(1, 2)

	got := d.Release()
	want := []store.OrderChange{{ID: 3, OrderIndex: 1}, {ID: 2, OrderIndex: 2}}
	if len(got) != len(want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("changes[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDiffNoChanges(t *testing.T) {
	if got := Diff(orderedTasks(3)); len(got) != 0 {
		t.Errorf("Diff = %v, want none", got)
	}
}

func TestDiffReusesHeldIndexes(t *testing.T) {
	tests := []struct {
		name    string
		ordered []model.Task
		want    []store.OrderChange
	}{
		{
			name:    "gaps from a filtered list",
			ordered: []model.Task{{ID: 4, OrderIndex: 7}, {ID: 1, OrderIndex: 2}, {ID: 2, OrderIndex: 5}},
			want:    []store.OrderChange{{ID: 4, OrderIndex: 2}, {ID: 1, OrderIndex: 5}, {ID: 2, OrderIndex: 7}},
		},
		{
			name:    "one based indexes in place",
			ordered: []model.Task{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 2}, {ID: 3, OrderIndex: 3}},
		},
		{
			name:    "single swap",
			ordered: []model.Task{{ID: 1, OrderIndex: 1}, {ID: 3, OrderIndex: 3}, {ID: 2, OrderIndex: 2}},
			want:    []store.OrderChange{{ID: 3, OrderIndex: 2}, {ID: 2, OrderIndex: 3}},
		},
		{
			name:    "colliding indexes spread",
			ordered: []model.Task{{ID: 1, OrderIndex: 4}, {ID: 2, OrderIndex: 4}, {ID: 3, OrderIndex: 5}},
			want:    []store.OrderChange{{ID: 2, OrderIndex: 5}, {ID: 3, OrderIndex: 6}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.ordered)
			if len(got) != len(tt.want) {
				t.Fatalf("Diff = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("changes[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCheckReorderable(t *testing.T) {
	tests := []struct {
		params Params
		ok     bool
	}{
		{Params{}, true},
		{Params{Sort: SortCustom, Category: "Home", Query: "x"}, true},
		{Params{Sort: SortPriority}, false},
		{Params{Sort: SortPoints}, false},
		{Params{Sort: SortAZ}, false},
		{Params{Sort: SortNewest}, false},
		{Params{Tab: TabCompleted}, false},
	}
	for _, tt := range tests {
		err := tt.params.CheckReorderable()
		if (err == nil) != tt.ok {
			t.Errorf("CheckReorderable(%+v) = %v, want ok=%v", tt.params, err, tt.ok)
		}
	}
}
