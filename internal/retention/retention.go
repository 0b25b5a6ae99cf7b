// Package retention purges old completed tasks according to the
// auto_delete_option setting.
package retention

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/toodo/internal/settings"
)

type taskDeleter interface {
	DeleteCompletedBefore(cutoff time.Time) (int64, error)
}

// Result reports what a single run did.
type Result struct {
	Option  settings.RetentionOption `json:"option"`
	Cutoff  *time.Time               `json:"cutoff,omitempty"`
	Deleted int64                    `json:"deleted"`
}

type Policy struct {
	tasks    taskDeleter
	settings settings.Provider
	now      func() time.Time
	logger   *slog.Logger
}

func NewPolicy(tasks taskDeleter, provider settings.Provider, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{tasks: tasks, settings: provider, now: time.Now, logger: logger}
}

// Run deletes completed tasks older than the configured window. Never, or an
// unrecognised option, deletes nothing and succeeds. Matching zero rows is
// also success.
func (p *Policy) Run() (Result, error) {
	cfg, err := p.settings.Settings()
	if err != nil {
		return Result{}, err
	}

	res := Result{Option: cfg.AutoDeleteOption}
	window, ok := cfg.AutoDeleteOption.Window()
	if !ok {
		return res, nil
	}

	cutoff := p.now().Add(-window)
	res.Cutoff = &cutoff

	n, err := p.tasks.DeleteCompletedBefore(cutoff)
	if err != nil {
		return res, fmt.Errorf("purge completed tasks: %w", err)
	}
	res.Deleted = n

	if n > 0 {
		p.logger.Info("purged completed tasks", "deleted", n, "option", cfg.AutoDeleteOption, "cutoff", cutoff)
	}
	return res, nil
}
