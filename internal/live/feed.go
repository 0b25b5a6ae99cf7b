// Package live turns store changes into per-observer snapshots. Each
// subscriber holds view params and receives a freshly projected snapshot after
// every change. Delivery keeps only the latest snapshot, so a slow observer
// skips intermediate states instead of blocking writers.
package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/view"
)

// State is the raw data every snapshot is derived from.
type State struct {
	Tasks       []model.Task
	TotalPoints int
	Ledger      []model.LedgerEntry
	Prizes      []model.Prize
}

// Loader reads the current State from storage.
type Loader func() (State, error)

// Snapshot is what one observer sees.
type Snapshot struct {
	Params      view.Params         `json:"params"`
	Tasks       []model.Task        `json:"tasks"`
	TotalPoints int                 `json:"total_points"`
	Ledger      []model.LedgerEntry `json:"ledger"`
	Prizes      []model.Prize       `json:"prizes"`
}

func project(state State, p view.Params) Snapshot {
	return Snapshot{
		Params:      p,
		Tasks:       view.Apply(state.Tasks, p),
		TotalPoints: state.TotalPoints,
		Ledger:      state.Ledger,
		Prizes:      state.Prizes,
	}
}

type Feed struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	load   Loader
	dirty  chan struct{}
	logger *slog.Logger
}

func NewFeed(load Loader, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		subs:   make(map[*Subscription]struct{}),
		load:   load,
		dirty:  make(chan struct{}, 1),
		logger: logger,
	}
}

// Changed marks the feed dirty. It never blocks; bursts of changes collapse
// into a single reload.
func (f *Feed) Changed(entity, action string, id int64) {
	select {
	case f.dirty <- struct{}{}:
	default:
	}
}

// Run publishes after every Changed call until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.dirty:
			if err := f.Publish(); err != nil {
				f.logger.Error("publish snapshot", "error", err)
			}
		}
	}
}

// Publish loads state once and delivers a projection to every subscriber.
func (f *Feed) Publish() error {
	state, err := f.load()
	if err != nil {
		return err
	}

	f.mu.Lock()
	subs := make([]*Subscription, 0, len(f.subs))
	for s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.deliver(state)
	}
	return nil
}

// Subscribe registers an observer and delivers its first snapshot.
func (f *Feed) Subscribe(p view.Params) (*Subscription, error) {
	s := &Subscription{
		feed:    f,
		params:  p.Normalize(),
		updates: make(chan Snapshot, 1),
	}

	state, err := f.load()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()

	s.deliver(state)
	return s, nil
}

// SubscriberCount returns the number of open subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type Subscription struct {
	feed *Feed

	mu      sync.Mutex
	params  view.Params
	updates chan Snapshot
	closed  bool
}

// Updates yields snapshots. It is closed by Close.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

func (s *Subscription) Params() view.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams changes the view inputs and delivers a recomputed snapshot.
func (s *Subscription) SetParams(p view.Params) error {
	s.mu.Lock()
	s.params = p.Normalize()
	s.mu.Unlock()

	state, err := s.feed.load()
	if err != nil {
		return err
	}
	s.deliver(state)
	return nil
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.feed.mu.Lock()
	delete(s.feed.subs, s)
	s.feed.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
}

func (s *Subscription) deliver(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	snap := project(state, s.params)
	select {
	case s.updates <- snap:
		return
	default:
	}
	// Replace the unread snapshot with the newer one.
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}
