package tracker

import (
	"fmt"

	"github.com/dukerupert/toodo/internal/model"
)

// Redemption is the outcome of spending points on a prize.
type Redemption struct {
	Prize model.Prize       `json:"prize"`
	Task  model.Task        `json:"task"`
	Entry model.LedgerEntry `json:"entry"`
}

// Redeem spends prize.Cost points. The writes happen in a fixed order:
// synthetic completed task, ledger entry, prize removal. They are not one
// transaction, so a crash part way leaves the earlier writes in place.
func (t *Tracker) Redeem(prizeID int64) (*Redemption, error) {
	t.redeemMu.Lock()
	defer t.redeemMu.Unlock()

	prize, err := t.prizes.GetByID(prizeID)
	if err != nil {
		return nil, err
	}
	if prize == nil {
		return nil, ErrNotFound
	}

	total, err := t.TotalPoints()
	if err != nil {
		return nil, err
	}
	if total < prize.Cost {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, total, prize.Cost)
	}

	cfg, err := t.settings.Settings()
	if err != nil {
		return nil, err
	}

	now := t.now()
	description := "Redeemed: " + prize.Name

	task, err := t.tasks.Create(model.Task{
		Title:       description,
		Difficulty:  model.DifficultyNone,
		Points:      -prize.Cost,
		Priority:    model.PriorityLow,
		Category:    cfg.DefaultCategory,
		IsCompleted: true,
		CompletedAt: &now,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("insert redemption task: %w", err)
	}

	entry, err := t.ledger.Append(description, -prize.Cost, now)
	if err != nil {
		return nil, fmt.Errorf("record redemption: %w", err)
	}

	if _, err := t.prizes.Delete(prize.ID); err != nil {
		return nil, fmt.Errorf("consume prize: %w", err)
	}

	t.logger.Info("prize redeemed", "prize_id", prize.ID, "name", prize.Name, "cost", prize.Cost)
	t.notify("prize", "redeemed", prize.ID)

	return &Redemption{Prize: *prize, Task: *task, Entry: *entry}, nil
}
