package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/toodo/internal/model"
)

// LedgerStore is append-only: entries are inserted and bulk-cleared, never
// updated.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func scanLedgerEntry(scanner interface{ Scan(...any) error }) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	var ts int64

	if err := scanner.Scan(&e.ID, &e.Description, &e.Points, &ts); err != nil {
		return nil, err
	}
	e.Timestamp = fromMillis(ts)
	return &e, nil
}

const ledgerCols = `id, description, points, timestamp`

func (s *LedgerStore) Append(description string, points int, at time.Time) (*model.LedgerEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO ledger (description, points, timestamp) VALUES (?, ?, ?)`,
		description, points, toMillis(at),
	)
	if err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+ledgerCols+` FROM ledger WHERE id = ?`, id)
	return scanLedgerEntry(row)
}

// List returns entries newest first.
func (s *LedgerStore) List() ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(`SELECT ` + ledgerCols + ` FROM ledger ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Balance sums every delta in the ledger. It reconciles with, but is not
// guaranteed to equal, the points total derived from tasks.
func (s *LedgerStore) Balance() (int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COALESCE(SUM(points), 0) FROM ledger`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return total, nil
}

func (s *LedgerStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM ledger`)
	if err != nil {
		return 0, fmt.Errorf("delete ledger: %w", err)
	}
	return result.RowsAffected()
}
