package model

import "time"

// LedgerEntry is one point-affecting event. Entries are never edited.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
}
