package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/view"
)

type source struct {
	mu    sync.Mutex
	state State
	err   error
	loads int
}

func (s *source) load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.state, s.err
}

func (s *source) setPoints(n int) {
	s.mu.Lock()
	s.state.TotalPoints = n
	s.mu.Unlock()
}

func newSource() *source {
	return &source{state: State{
		Tasks: []model.Task{
			{ID: 1, Title: "alpha", Category: "Home", OrderIndex: 0},
			{ID: 2, Title: "beta", Category: "Work", OrderIndex: 1},
			{ID: 3, Title: "gamma", Category: "Home", IsCompleted: true, OrderIndex: 2},
		},
	}}
}

func recv(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		if !ok {
			t.Fatal("updates closed")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for snapshot")
		return Snapshot{}
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	src := newSource()
	feed := NewFeed(src.load, slog.Default())

	sub, err := feed.Subscribe(view.Params{Category: "Home"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	snap := recv(t, sub)
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 1 {
		t.Errorf("tasks = %+v, want only active Home task", snap.Tasks)
	}
	if snap.Params.Tab != view.TabActive || snap.Params.Sort != view.SortCustom {
		t.Errorf("params = %+v, want normalized defaults", snap.Params)
	}
}

func TestSubscribeLoadError(t *testing.T) {
	src := newSource()
	src.err = errors.New("disk on fire")
	feed := NewFeed(src.load, slog.Default())

	if _, err := feed.Subscribe(view.Params{}); err == nil {
		t.Fatal("expected error")
	}
	if n := feed.SubscriberCount(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestPublishKeepsLatest(t *testing.T) {
	src := newSource()
	feed := NewFeed(src.load, slog.Default())
	sub, _ := feed.Subscribe(view.Params{})
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		src.setPoints(i * 10)
		if err := feed.Publish(); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	snap := recv(t, sub)
	if snap.TotalPoints != 50 {
		t.Errorf("total = %d, want latest 50", snap.TotalPoints)
	}
	select {
	case extra := <-sub.Updates():
		t.Errorf("unexpected queued snapshot %+v", extra)
	default:
	}
}

func TestSetParamsRecomputes(t *testing.T) {
	src := newSource()
	feed := NewFeed(src.load, slog.Default())
	sub, _ := feed.Subscribe(view.Params{})
	defer sub.Close()
	recv(t, sub)

	if err := sub.SetParams(view.Params{Tab: view.TabCompleted}); err != nil {
		t.Fatalf("set params: %v", err)
	}
	snap := recv(t, sub)
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 3 {
		t.Errorf("tasks = %+v, want completed task 3", snap.Tasks)
	}
}

func TestRunCoalescesChanges(t *testing.T) {
	src := newSource()
	feed := NewFeed(src.load, slog.Default())
	sub, _ := feed.Subscribe(view.Params{})
	defer sub.Close()
	recv(t, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	src.setPoints(7)
	feed.Changed("task", "completed", 1)

	snap := recv(t, sub)
	if snap.TotalPoints != 7 {
		t.Errorf("total = %d, want 7", snap.TotalPoints)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	feed := NewFeed(newSource().load, slog.Default())
	sub, _ := feed.Subscribe(view.Params{})

	sub.Close()
	sub.Close()

	if n := feed.SubscriberCount(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
	// Drain the initial snapshot, then expect a closed channel.
	<-sub.Updates()
	if _, ok := <-sub.Updates(); ok {
		t.Error("updates should be closed")
	}
	if err := feed.Publish(); err != nil {
		t.Errorf("publish after close: %v", err)
	}
}
