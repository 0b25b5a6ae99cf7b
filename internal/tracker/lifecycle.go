package tracker

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dukerupert/toodo/internal/model"
	"github.com/dukerupert/toodo/internal/view"
)

// TaskInput holds the user-editable fields of a task. Zero values fall back
// to configured defaults on create.
type TaskInput struct {
	Title      string           `json:"title"`
	Difficulty model.Difficulty `json:"difficulty"`
	Points     *int             `json:"points"`
	Priority   model.Priority   `json:"priority"`
	Category   string           `json:"category"`
	DueDate    *time.Time       `json:"due_date"`
}

func (in TaskInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title cannot be empty"), validation.Length(1, 200)),
		validation.Field(&in.Difficulty, validation.In(model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard)),
		validation.Field(&in.Priority, validation.In(model.PriorityHigh, model.PriorityMedium, model.PriorityLow)),
		validation.Field(&in.Category, validation.Length(0, 64)),
	)
	return asValidationError(err)
}

// sanitizeTitle drops line breaks and surrounding whitespace.
func sanitizeTitle(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}

// Deletion describes a removed task that can still be restored.
type Deletion struct {
	Token     string     `json:"token"`
	Task      model.Task `json:"task"`
	ExpiresAt time.Time  `json:"expires_at"`
}

type pendingUndo struct {
	task      model.Task
	expiresAt time.Time
}

// Tasks returns the projection of all tasks for the given view params.
func (t *Tracker) Tasks(p view.Params) ([]model.Task, error) {
	all, err := t.tasks.List()
	if err != nil {
		return nil, err
	}
	return view.Apply(all, p), nil
}

// CreateTask inserts an active task at the end of the custom order.
func (t *Tracker) CreateTask(in TaskInput) (*model.Task, error) {
	cfg, err := t.settings.Settings()
	if err != nil {
		return nil, err
	}

	in.Title = sanitizeTitle(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Difficulty == model.DifficultyNone {
		in.Difficulty = cfg.DefaultDifficulty
	}
	if in.Category == "" {
		in.Category = cfg.DefaultCategory
	}
	if in.Priority == 0 {
		in.Priority = model.PriorityLow
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	points := in.Difficulty.Points()
	if in.Points != nil {
		points = *in.Points
	}

	task, err := t.tasks.Create(model.Task{
		Title:      in.Title,
		Difficulty: in.Difficulty,
		Points:     points,
		Priority:   in.Priority,
		Category:   in.Category,
		DueDate:    in.DueDate,
		CreatedAt:  t.now(),
	})
	if err != nil {
		return nil, err
	}

	t.notify("task", "created", task.ID)
	return task, nil
}

// UpdateTask edits content fields only. Completion state, order and the
// ledger are untouched. A missing task is a no-op and returns nil.
// Redemption records return ErrRedemptionRecord.
func (t *Tracker) UpdateTask(id int64, in TaskInput) (*model.Task, error) {
	existing, err := t.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.IsRedemption() {
		return nil, ErrRedemptionRecord
	}

	in.Title = sanitizeTitle(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Difficulty == model.DifficultyNone {
		in.Difficulty = existing.Difficulty
	}
	if in.Category == "" {
		in.Category = existing.Category
	}
	if in.Priority == 0 {
		in.Priority = existing.Priority
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	points := existing.Points
	switch {
	case in.Points != nil:
		points = *in.Points
	case in.Difficulty != existing.Difficulty:
		points = in.Difficulty.Points()
	}

	task, err := t.tasks.Update(id, model.Task{
		Title:      in.Title,
		Difficulty: in.Difficulty,
		Points:     points,
		Priority:   in.Priority,
		Category:   in.Category,
		DueDate:    in.DueDate,
	})
	if err != nil {
		return nil, err
	}
	if task != nil {
		t.notify("task", "updated", id)
	}
	return task, nil
}

// Complete moves an active task to completed and records the earned points
// in the ledger. Completing a missing or already completed task is a no-op.
func (t *Tracker) Complete(id int64) (*model.Task, error) {
	task, err := t.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil || task.IsCompleted {
		return task, nil
	}

	now := t.now()
	ok, err := t.tasks.MarkCompleted(id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another completion or a delete.
		return t.tasks.GetByID(id)
	}

	if _, err := t.ledger.Append("Completed: "+task.Title, task.Points, now); err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}

	t.logger.Debug("task completed", "task_id", id, "points", task.Points)
	t.notify("task", "completed", id)
	return t.tasks.GetByID(id)
}

// Uncheck moves a completed task back to active and clears its completion
// time. Unless confirmations are disabled the caller must pass confirmed.
// No ledger entry is written unless ledger_reverse_on_uncheck is set.
func (t *Tracker) Uncheck(id int64, confirmed bool) (*model.Task, error) {
	task, err := t.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil || !task.IsCompleted {
		return task, nil
	}

	cfg, err := t.settings.Settings()
	if err != nil {
		return nil, err
	}
	if !cfg.DisableConfirmations && !confirmed {
		return nil, ErrConfirmationRequired
	}

	ok, err := t.tasks.MarkActive(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return t.tasks.GetByID(id)
	}

	if cfg.ReverseOnUncheck {
		if _, err := t.ledger.Append("Unchecked: "+task.Title, -task.Points, t.now()); err != nil {
			return nil, fmt.Errorf("record uncheck: %w", err)
		}
	}

	t.notify("task", "unchecked", id)
	return t.tasks.GetByID(id)
}

// SetCompleted toggles completion in either direction.
func (t *Tracker) SetCompleted(id int64, completed, confirmed bool) (*model.Task, error) {
	if completed {
		return t.Complete(id)
	}
	return t.Uncheck(id, confirmed)
}

// DeleteTask removes a task and returns a token that restores it within the
// undo window. Deleting a missing task is a no-op and returns nil.
func (t *Tracker) DeleteTask(id int64, confirmed bool) (*Deletion, error) {
	cfg, err := t.settings.Settings()
	if err != nil {
		return nil, err
	}

	task, err := t.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	if !cfg.DisableConfirmations && !confirmed {
		return nil, ErrConfirmationRequired
	}

	ok, err := t.tasks.Delete(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	now := t.now()
	d := &Deletion{
		Token:     uuid.NewString(),
		Task:      *task,
		ExpiresAt: now.Add(t.undoWindow),
	}

	t.mu.Lock()
	t.pruneLocked(now)
	t.pending[d.Token] = pendingUndo{task: *task, expiresAt: d.ExpiresAt}
	t.mu.Unlock()

	t.notify("task", "deleted", id)
	return d, nil
}

// UndoDelete reinserts a deleted task with the same content under a new id at
// the end of the custom order. Each token works once.
func (t *Tracker) UndoDelete(token string) (*model.Task, error) {
	now := t.now()

	t.mu.Lock()
	p, ok := t.pending[token]
	delete(t.pending, token)
	t.pruneLocked(now)
	t.mu.Unlock()

	if !ok || now.After(p.expiresAt) {
		return nil, ErrUndoExpired
	}

	restored := p.task
	restored.ID = 0
	restored.OrderIndex = 0
	task, err := t.tasks.Create(restored)
	if err != nil {
		return nil, err
	}

	t.notify("task", "restored", task.ID)
	return task, nil
}

func (t *Tracker) pruneLocked(now time.Time) {
	for token, p := range t.pending {
		if now.After(p.expiresAt) {
			delete(t.pending, token)
		}
	}
}
