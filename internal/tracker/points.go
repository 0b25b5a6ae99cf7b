package tracker

import "github.com/dukerupert/toodo/internal/model"

// TotalPoints sums points over completed tasks. It is recomputed from the
// task table on every call.
func (t *Tracker) TotalPoints() (int, error) {
	return t.tasks.TotalPoints()
}

// Ledger returns every ledger entry, newest first.
func (t *Tracker) Ledger() ([]model.LedgerEntry, error) {
	entries, err := t.ledger.List()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return entries, nil
}
