package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/toodo/internal/retention"
	"github.com/dukerupert/toodo/internal/tracker"
)

type AdminHandler struct {
	tracker *tracker.Tracker
	policy  *retention.Policy
	onPurge func(retention.Result)
	logger  *slog.Logger
}

func NewAdminHandler(t *tracker.Tracker, policy *retention.Policy, onPurge func(retention.Result), logger *slog.Logger) *AdminHandler {
	return &AdminHandler{tracker: t, policy: policy, onPurge: onPurge, logger: logger}
}

// Clear wipes tasks, prizes and the ledger.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.ClearAll(); err != nil {
		writeTrackerError(w, h.logger, err, "failed to clear data")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunRetention applies the auto-delete policy immediately.
func (h *AdminHandler) RunRetention(w http.ResponseWriter, r *http.Request) {
	res, err := h.policy.Run()
	if err != nil {
		h.logger.Error("run retention", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run retention"})
		return
	}
	if h.onPurge != nil && res.Deleted > 0 {
		h.onPurge(res)
	}
	writeJSON(w, http.StatusOK, res)
}
