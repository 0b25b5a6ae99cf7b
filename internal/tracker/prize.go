package tracker

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dukerupert/toodo/internal/model"
)

// builtinPrizes are seeded into an empty prize store.
var builtinPrizes = []PrizeInput{
	{Name: "Movie Night", Cost: 25},
	{Name: "Ice Cream", Cost: 10},
	{Name: "New Book", Cost: 50},
}

type PrizeInput struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

func (in PrizeInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name cannot be empty"), validation.Length(1, 100)),
		validation.Field(&in.Cost, validation.Required.Error("cost must be positive"), validation.Min(1)),
	)
	return asValidationError(err)
}

// SeedPrizes inserts the builtin prizes when the store is empty. The count
// check is not atomic with the inserts; two processes starting on an empty
// database at once can both seed.
func (t *Tracker) SeedPrizes() error {
	t.seedMu.Lock()
	defer t.seedMu.Unlock()
	if t.seeded {
		return nil
	}

	n, err := t.prizes.Count()
	if err != nil {
		return err
	}
	if n == 0 {
		for _, p := range builtinPrizes {
			if _, err := t.prizes.Create(p.Name, p.Cost, true); err != nil {
				return err
			}
		}
		t.logger.Info("seeded builtin prizes", "count", len(builtinPrizes))
		t.notify("prize", "seeded", 0)
	}
	t.seeded = true
	return nil
}

// Prizes lists the redeemable prizes, seeding the builtins on first access.
func (t *Tracker) Prizes() ([]model.Prize, error) {
	if err := t.SeedPrizes(); err != nil {
		return nil, err
	}
	prizes, err := t.prizes.List()
	if err != nil {
		return nil, err
	}
	if prizes == nil {
		prizes = []model.Prize{}
	}
	return prizes, nil
}

func (t *Tracker) CreatePrize(in PrizeInput) (*model.Prize, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		return nil, err
	}
	prize, err := t.prizes.Create(in.Name, in.Cost, false)
	if err != nil {
		return nil, err
	}
	t.notify("prize", "created", prize.ID)
	return prize, nil
}

// UpdatePrize edits a custom prize. Missing prizes are a no-op.
func (t *Tracker) UpdatePrize(id int64, in PrizeInput) (*model.Prize, error) {
	existing, err := t.prizes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.IsBuiltin {
		return nil, ErrBuiltinPrize
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		return nil, err
	}
	prize, err := t.prizes.Update(id, in.Name, in.Cost)
	if err != nil {
		return nil, err
	}
	t.notify("prize", "updated", id)
	return prize, nil
}

// DeletePrize removes a custom prize. Missing prizes are a no-op.
func (t *Tracker) DeletePrize(id int64) error {
	existing, err := t.prizes.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.IsBuiltin {
		return ErrBuiltinPrize
	}
	if _, err := t.prizes.Delete(id); err != nil {
		return err
	}
	t.notify("prize", "deleted", id)
	return nil
}
