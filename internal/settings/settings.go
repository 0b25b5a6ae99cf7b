// Package settings exposes the user preferences the task engine reads:
// confirmation guard, retention window, creation defaults and sort order.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dukerupert/toodo/internal/model"
)

const (
	KeyDisableConfirmations = "disable_confirmations"
	KeyAutoDeleteOption     = "auto_delete_option"
	KeyDefaultCategory      = "default_category"
	KeyDefaultDifficulty    = "default_difficulty"
	KeySortOrder            = "sort_order"
	KeyReverseOnUncheck     = "ledger_reverse_on_uncheck"
)

type RetentionOption string

const (
	RetentionNever      RetentionOption = "Never"
	RetentionAfterWeek  RetentionOption = "After 1 week"
	RetentionAfterMonth RetentionOption = "After 1 month"
)

// Window returns how long a completed task is kept. ok is false for Never
// and for unrecognised options.
func (o RetentionOption) Window() (window time.Duration, ok bool) {
	switch o {
	case RetentionAfterWeek:
		return 7 * 24 * time.Hour, true
	case RetentionAfterMonth:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// Settings is a snapshot of every preference, read once per operation.
type Settings struct {
	DisableConfirmations bool             `json:"disable_confirmations"`
	AutoDeleteOption     RetentionOption  `json:"auto_delete_option"`
	DefaultCategory      string           `json:"default_category"`
	DefaultDifficulty    model.Difficulty `json:"default_difficulty"`
	SortOrder            string           `json:"sort_order"`
	ReverseOnUncheck     bool             `json:"ledger_reverse_on_uncheck"`
}

// Defaults mirrors the values seeded by the settings migration.
func Defaults() Settings {
	return Settings{
		AutoDeleteOption:  RetentionNever,
		DefaultCategory:   model.DefaultCategory,
		DefaultDifficulty: model.DifficultyMedium,
		SortOrder:         "CUSTOM",
	}
}

// Provider supplies the current settings. Components receive one at
// construction instead of reaching for global state.
type Provider interface {
	Settings() (Settings, error)
}

// Static is a Provider that always returns the same snapshot.
type Static Settings

func (s Static) Settings() (Settings, error) {
	return Settings(s), nil
}

type keyValueReader interface {
	GetAll() (map[string]string, error)
}

// StoreProvider reads settings from the key/value settings table.
type StoreProvider struct {
	store keyValueReader
}

func NewStoreProvider(store keyValueReader) *StoreProvider {
	return &StoreProvider{store: store}
}

func (p *StoreProvider) Settings() (Settings, error) {
	values, err := p.store.GetAll()
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return FromMap(values), nil
}

// FromMap parses raw key/value pairs, falling back to defaults for missing or
// malformed values.
func FromMap(values map[string]string) Settings {
	s := Defaults()
	if v, ok := values[KeyDisableConfirmations]; ok {
		s.DisableConfirmations = parseBool(v)
	}
	if v, ok := values[KeyAutoDeleteOption]; ok && v != "" {
		s.AutoDeleteOption = RetentionOption(v)
	}
	if v := strings.TrimSpace(values[KeyDefaultCategory]); v != "" {
		s.DefaultCategory = v
	}
	if v, ok := values[KeyDefaultDifficulty]; ok && isDifficulty(v) {
		s.DefaultDifficulty = model.Difficulty(v)
	}
	if v := strings.TrimSpace(values[KeySortOrder]); v != "" {
		s.SortOrder = strings.ToUpper(v)
	}
	if v, ok := values[KeyReverseOnUncheck]; ok {
		s.ReverseOnUncheck = parseBool(v)
	}
	return s
}

// ToMap is the inverse of FromMap.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		KeyDisableConfirmations: strconv.FormatBool(s.DisableConfirmations),
		KeyAutoDeleteOption:     string(s.AutoDeleteOption),
		KeyDefaultCategory:      s.DefaultCategory,
		KeyDefaultDifficulty:    string(s.DefaultDifficulty),
		KeySortOrder:            s.SortOrder,
		KeyReverseOnUncheck:     strconv.FormatBool(s.ReverseOnUncheck),
	}
}

var sortOrders = []any{"CUSTOM", "PRIORITY", "POINTS", "AZ", "NEWEST"}

// Validate checks a partial update before it is written.
func Validate(values map[string]string) error {
	errs := validation.Errors{}
	for key, value := range values {
		var err error
		switch key {
		case KeyDisableConfirmations, KeyReverseOnUncheck:
			err = validation.Validate(value, validation.By(isBoolString))
		case KeyAutoDeleteOption:
			err = validation.Validate(value, validation.Required,
				validation.In(string(RetentionNever), string(RetentionAfterWeek), string(RetentionAfterMonth)))
		case KeyDefaultCategory:
			err = validation.Validate(strings.TrimSpace(value), validation.Required, validation.Length(1, 64))
		case KeyDefaultDifficulty:
			err = validation.Validate(value, validation.Required,
				validation.In(string(model.DifficultyEasy), string(model.DifficultyMedium), string(model.DifficultyHard)))
		case KeySortOrder:
			err = validation.Validate(strings.ToUpper(value), validation.Required, validation.In(sortOrders...))
		default:
			err = validation.NewError("validation_unknown_key", "unknown setting")
		}
		if err != nil {
			errs[key] = err
		}
	}
	return errs.Filter()
}

func isBoolString(v any) error {
	if _, err := strconv.ParseBool(v.(string)); err != nil {
		return validation.NewError("validation_not_bool", "must be true or false")
	}
	return nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func isDifficulty(v string) bool {
	switch model.Difficulty(v) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return true
	}
	return false
}
