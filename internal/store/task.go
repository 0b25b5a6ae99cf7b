package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/toodo/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// OrderChange moves one task to a new position in the custom order.
type OrderChange struct {
	ID         int64 `json:"id"`
	OrderIndex int   `json:"order_index"`
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var difficulty string
	var completed int
	var completedAt, dueDate sql.NullInt64
	var createdAt int64

	err := scanner.Scan(
		&t.ID, &t.Title, &difficulty, &t.Points, &t.Priority, &t.Category,
		&completed, &completedAt, &dueDate, &t.OrderIndex, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	t.Difficulty = model.Difficulty(difficulty)
	t.IsCompleted = completed != 0
	t.CompletedAt = timeFromNull(completedAt)
	t.DueDate = timeFromNull(dueDate)
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

const taskCols = `id, title, difficulty, points, priority, category, is_completed, completed_at, due_date, order_index, created_at`

// Create inserts a task at the end of the custom order. The order index is
// computed inside the INSERT so concurrent creators never share a slot.
func (s *TaskStore) Create(t model.Task) (*model.Task, error) {
	var completed int
	if t.IsCompleted {
		completed = 1
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (title, difficulty, points, priority, category, is_completed, completed_at, due_date, order_index, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM tasks), ?)`,
		t.Title, string(t.Difficulty), t.Points, int(t.Priority), t.Category,
		completed, nullMillis(t.CompletedAt), nullMillis(t.DueDate), toMillis(createdAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns every task in custom order.
func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY order_index ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update rewrites the content fields of a task. Completion state and order
// index are left alone. Returns nil when the task does not exist.
func (s *TaskStore) Update(id int64, t model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, difficulty = ?, points = ?, priority = ?, category = ?, due_date = ? WHERE id = ?`,
		t.Title, string(t.Difficulty), t.Points, int(t.Priority), t.Category, nullMillis(t.DueDate), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// MarkCompleted moves an active task to completed. It reports false when the
// task is missing or already completed.
func (s *TaskStore) MarkCompleted(id int64, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET is_completed = 1, completed_at = ? WHERE id = ? AND is_completed = 0`,
		toMillis(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("complete task: %w", err)
	}
	return affected(result)
}

// MarkActive moves a completed task back to active and clears completed_at.
func (s *TaskStore) MarkActive(id int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET is_completed = 0, completed_at = NULL WHERE id = ? AND is_completed = 1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("uncheck task: %w", err)
	}
	return affected(result)
}

func (s *TaskStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return affected(result)
}

func (s *TaskStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}
	return result.RowsAffected()
}

// DeleteCompletedBefore removes completed tasks whose completion time is
// strictly before cutoff. Active tasks are never matched.
func (s *TaskStore) DeleteCompletedBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM tasks WHERE is_completed = 1 AND completed_at IS NOT NULL AND completed_at < ?`,
		toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old completed tasks: %w", err)
	}
	return result.RowsAffected()
}

// TotalPoints sums points over completed tasks.
func (s *TaskStore) TotalPoints() (int, error) {
	var total int
	err := s.db.QueryRow(`SELECT COALESCE(SUM(points), 0) FROM tasks WHERE is_completed = 1`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}

// UpdateOrder writes the given order indexes in a single transaction.
// Ids that no longer exist are skipped.
func (s *TaskStore) UpdateOrder(changes []OrderChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		if _, err := tx.Exec(`UPDATE tasks SET order_index = ? WHERE id = ?`, c.OrderIndex, c.ID); err != nil {
			return fmt.Errorf("update order index: %w", err)
		}
	}
	return tx.Commit()
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
