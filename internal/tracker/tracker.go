// Package tracker implements the task lifecycle, point accounting and prize
// redemption on top of the SQLite stores.
package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/toodo/internal/settings"
	"github.com/dukerupert/toodo/internal/store"
)

// Notifier is told about every successful mutation so observers can refresh.
type Notifier interface {
	Changed(entity, action string, id int64)
}

// Notifiers fans a change out to several observers.
type Notifiers []Notifier

func (n Notifiers) Changed(entity, action string, id int64) {
	for _, o := range n {
		o.Changed(entity, action, id)
	}
}

type Config struct {
	// UndoWindow bounds how long a deleted task can be restored.
	UndoWindow time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

const DefaultUndoWindow = 10 * time.Second

type Tracker struct {
	tasks    *store.TaskStore
	prizes   *store.PrizeStore
	ledger   *store.LedgerStore
	settings settings.Provider
	notifier Notifier
	logger   *slog.Logger

	now        func() time.Time
	undoWindow time.Duration

	mu      sync.Mutex
	pending map[string]pendingUndo

	redeemMu sync.Mutex

	seedMu sync.Mutex
	seeded bool
}

func New(tasks *store.TaskStore, prizes *store.PrizeStore, ledger *store.LedgerStore, provider settings.Provider, notifier Notifier, logger *slog.Logger, cfg Config) *Tracker {
	if cfg.UndoWindow <= 0 {
		cfg.UndoWindow = DefaultUndoWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		tasks:      tasks,
		prizes:     prizes,
		ledger:     ledger,
		settings:   provider,
		notifier:   notifier,
		logger:     logger,
		now:        cfg.Now,
		undoWindow: cfg.UndoWindow,
		pending:    make(map[string]pendingUndo),
	}
}

func (t *Tracker) notify(entity, action string, id int64) {
	if t.notifier != nil {
		t.notifier.Changed(entity, action, id)
	}
}

// ClearAll removes every task, prize and ledger entry. Builtin prizes are
// seeded again on the next prize access.
func (t *Tracker) ClearAll() error {
	if _, err := t.tasks.DeleteAll(); err != nil {
		return err
	}
	if _, err := t.prizes.DeleteAll(); err != nil {
		return err
	}
	if _, err := t.ledger.DeleteAll(); err != nil {
		return err
	}

	t.mu.Lock()
	clear(t.pending)
	t.mu.Unlock()

	t.seedMu.Lock()
	t.seeded = false
	t.seedMu.Unlock()

	t.logger.Info("cleared all data")
	t.notify("data", "cleared", 0)
	return nil
}
