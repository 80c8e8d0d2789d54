package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"calkids/internal/store"
	"calkids/internal/websocket"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, hub: hub, logger: logger}
}

func (h *SettingsHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetBoardSettings()
	if err != nil {
		h.logger.Error("get board settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateBoardSettings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	for key, value := range req {
		if err := h.settings.Set(key, value); err != nil {
			h.logger.Error("save board setting", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
	}

	h.hub.Broadcast(websocket.NewMessage("settings", "updated", "", nil))

	settings, err := h.settings.GetBoardSettings()
	if err != nil {
		h.logger.Error("get board settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validateBoardSettings(settings map[string]string) error {
	for key, value := range settings {
		switch key {
		case "default_view":
			if value != "week" && value != "day" && value != "now" {
				return fmt.Errorf("default_view must be week, day, or now")
			}
		case "time_format":
			if value != "12h" && value != "24h" {
				return fmt.Errorf("time_format must be \"12h\" or \"24h\"")
			}
		case "show_completed", "sounds_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("%s must be \"true\" or \"false\"", key)
			}
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}
	}
	return nil
}
