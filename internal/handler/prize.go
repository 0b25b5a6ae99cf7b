package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/toodo/internal/tracker"
)

type PrizeHandler struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func NewPrizeHandler(t *tracker.Tracker, logger *slog.Logger) *PrizeHandler {
	return &PrizeHandler{tracker: t, logger: logger}
}

func (h *PrizeHandler) List(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.tracker.Prizes()
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to list prizes")
		return
	}
	writeJSON(w, http.StatusOK, prizes)
}

func (h *PrizeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tracker.PrizeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	prize, err := h.tracker.CreatePrize(req)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to create prize")
		return
	}
	writeJSON(w, http.StatusCreated, prize)
}

func (h *PrizeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req tracker.PrizeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	prize, err := h.tracker.UpdatePrize(id, req)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to update prize")
		return
	}
	if prize == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, prize)
}

func (h *PrizeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.tracker.DeletePrize(id); err != nil {
		writeTrackerError(w, h.logger, err, "failed to delete prize")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PrizeHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	redemption, err := h.tracker.Redeem(id)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to redeem prize")
		return
	}
	writeJSON(w, http.StatusOK, redemption)
}
