package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/toodo/internal/model"
)

type PrizeStore struct {
	db *sql.DB
}

func NewPrizeStore(db *sql.DB) *PrizeStore {
	return &PrizeStore{db: db}
}

func scanPrize(scanner interface{ Scan(...any) error }) (*model.Prize, error) {
	var p model.Prize
	var builtin int

	err := scanner.Scan(&p.ID, &p.Name, &p.Cost, &builtin)
	if err != nil {
		return nil, err
	}

	p.IsBuiltin = builtin != 0
	return &p, nil
}

const prizeCols = `id, name, cost, is_builtin`

func (s *PrizeStore) Create(name string, cost int, builtin bool) (*model.Prize, error) {
	var b int
	if builtin {
		b = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO prizes (name, cost, is_builtin) VALUES (?, ?, ?)`,
		name, cost, b,
	)
	if err != nil {
		return nil, fmt.Errorf("insert prize: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PrizeStore) GetByID(id int64) (*model.Prize, error) {
	row := s.db.QueryRow(`SELECT `+prizeCols+` FROM prizes WHERE id = ?`, id)
	p, err := scanPrize(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prize: %w", err)
	}
	return p, nil
}

// List returns all prizes in creation order.
func (s *PrizeStore) List() ([]model.Prize, error) {
	rows, err := s.db.Query(`SELECT ` + prizeCols + ` FROM prizes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	defer rows.Close()

	var prizes []model.Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prize: %w", err)
		}
		prizes = append(prizes, *p)
	}
	return prizes, rows.Err()
}

func (s *PrizeStore) Update(id int64, name string, cost int) (*model.Prize, error) {
	_, err := s.db.Exec(`UPDATE prizes SET name = ?, cost = ? WHERE id = ?`, name, cost, id)
	if err != nil {
		return nil, fmt.Errorf("update prize: %w", err)
	}
	return s.GetByID(id)
}

func (s *PrizeStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM prizes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete prize: %w", err)
	}
	return affected(result)
}

func (s *PrizeStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM prizes`)
	if err != nil {
		return 0, fmt.Errorf("delete all prizes: %w", err)
	}
	return result.RowsAffected()
}

func (s *PrizeStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM prizes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prizes: %w", err)
	}
	return n, nil
}
