package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dukerupert/toodo/internal/settings"
	"github.com/dukerupert/toodo/internal/store"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	provider      settings.Provider
	onChange      func()
	logger        *slog.Logger
}

// NewSettingsHandler creates a handler. onChange runs after a successful
// update and may be nil.
func NewSettingsHandler(ss *store.SettingsStore, provider settings.Provider, onChange func(), logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, provider: provider, onChange: onChange, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.provider.Settings()
	if err != nil {
		h.logger.Error("load settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update applies a partial set of key/value pairs.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := settings.Validate(req); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": fields})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if v, ok := req[settings.KeySortOrder]; ok {
		req[settings.KeySortOrder] = strings.ToUpper(v)
	}
	if v, ok := req[settings.KeyDefaultCategory]; ok {
		req[settings.KeyDefaultCategory] = strings.TrimSpace(v)
	}

	if err := h.settingsStore.SetMany(req); err != nil {
		h.logger.Error("save settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}
	if h.onChange != nil {
		h.onChange()
	}

	h.Get(w, r)
}
