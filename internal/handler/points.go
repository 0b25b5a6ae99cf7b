package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/toodo/internal/tracker"
)

type PointsHandler struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func NewPointsHandler(t *tracker.Tracker, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{tracker: t, logger: logger}
}

// Total reports the point balance derived from completed tasks.
func (h *PointsHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.tracker.TotalPoints()
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to get points")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_points": total})
}

// Ledger lists history entries, newest first.
func (h *PointsHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tracker.Ledger()
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to list ledger")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
