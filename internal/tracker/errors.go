package tracker

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrBuiltinPrize         = errors.New("builtin prizes cannot be edited or deleted")
	ErrUndoExpired          = errors.New("undo window expired")
	ErrRedemptionRecord     = errors.New("redemption records cannot be edited")
)

// ValidationError carries per-field messages. It matches ErrValidation with
// errors.Is.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
