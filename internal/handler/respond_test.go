package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dukerupert/toodo/internal/tracker"
)

func TestWriteTrackerError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &tracker.ValidationError{Fields: validation.Errors{"title": errors.New("cannot be blank")}}, http.StatusBadRequest},
		{"insufficient", fmt.Errorf("%w: have 1, need 5", tracker.ErrInsufficientPoints), http.StatusConflict},
		{"confirmation", tracker.ErrConfirmationRequired, http.StatusConflict},
		{"not found", tracker.ErrNotFound, http.StatusNotFound},
		{"builtin", tracker.ErrBuiltinPrize, http.StatusForbidden},
		{"redemption", tracker.ErrRedemptionRecord, http.StatusForbidden},
		{"undo expired", tracker.ErrUndoExpired, http.StatusGone},
		{"storage", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeTrackerError(rec, logger, tt.err, "failed")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q, want application/json", ct)
			}
		})
	}
}

func TestConfirmedParam(t *testing.T) {
	tests := map[string]bool{
		"/x":                 false,
		"/x?confirmed=true":  true,
		"/x?confirmed=1":     true,
		"/x?confirmed=nope":  false,
		"/x?confirmed=false": false,
	}
	for url, want := range tests {
		r := httptest.NewRequest("DELETE", url, nil)
		if got := confirmedParam(r); got != want {
			t.Errorf("confirmedParam(%s) = %v, want %v", url, got, want)
		}
	}
}
