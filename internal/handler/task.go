package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/toodo/internal/tracker"
	"github.com/dukerupert/toodo/internal/view"
)

type TaskHandler struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func NewTaskHandler(t *tracker.Tracker, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tracker: t, logger: logger}
}

// List returns the projection selected by the tab, q, sort and category query
// parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := view.Params{
		Tab:      view.ParseTab(q.Get("tab")),
		Query:    q.Get("q"),
		Sort:     view.ParseSort(q.Get("sort")),
		Category: q.Get("category"),
	}
	tasks, err := h.tracker.Tasks(p)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tracker.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.tracker.CreateTask(req)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req tracker.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.tracker.UpdateTask(id, req)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to update task")
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task and responds with the undo token.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	d, err := h.tracker.DeleteTask(id, confirmedParam(r))
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to delete task")
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tracker.Complete(id)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to complete task")
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Uncheck(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tracker.Uncheck(id, confirmedParam(r))
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to uncheck task")
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type undoRequest struct {
	Token string `json:"token"`
}

func (h *TaskHandler) Undo(w http.ResponseWriter, r *http.Request) {
	var req undoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.tracker.UndoDelete(req.Token)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to restore task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type orderRequest struct {
	IDs []int64 `json:"ids"`
}

// UpdateOrder persists a custom order given as the full list of ids in
// presentation order.
func (h *TaskHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	changes, err := h.tracker.CommitOrder(req.IDs)
	if err != nil {
		writeTrackerError(w, h.logger, err, "failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}
