package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"calkids/internal/auth"
	"calkids/internal/model"
	"calkids/internal/recurrence"
	"calkids/internal/store"
	"calkids/internal/websocket"
)

type TaskHandler struct {
	tasks     *store.TaskStore
	instances *store.InstanceStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, is *store.InstanceStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, instances: is, hub: hub, logger: logger}
}

type taskRequest struct {
	ChildID   string `json:"childId"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Repeat    string `json:"repeat"`
	Reminders []int  `json:"reminders"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	tasks, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	tmpl, errMsg := h.templateFromRequest(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	tmpl.HouseholdID = auth.HouseholdID(r.Context())

	created, err := h.tasks.Create(tmpl)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	tmpl, errMsg := h.templateFromRequest(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	tmpl.ID = existing.ID
	tmpl.HouseholdID = existing.HouseholdID

	updated, err := h.tasks.Update(tmpl)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(tmpl.ID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}
	// Completion records for past occurrences go with the template.
	if err := h.instances.DeleteByTemplate(tmpl.ID); err != nil {
		h.logger.Error("delete instance states", "error", err)
	}

	h.hub.Broadcast(websocket.NewMessage("task", "deleted", tmpl.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TaskHandler) templateFromRequest(req taskRequest) (model.TaskTemplate, string) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return model.TaskTemplate{}, "title is required"
	}

	start, err := parseTaskTime(req.Start)
	if err != nil {
		return model.TaskTemplate{}, "start must be a valid timestamp"
	}
	end, err := parseTaskTime(req.End)
	if err != nil {
		return model.TaskTemplate{}, "end must be a valid timestamp"
	}
	if end.Before(start) {
		// Kept rather than rejected: some clients send overnight spans
		// this way and the board renders them by start time anyway.
		h.logger.Warn("task end precedes start", "title", req.Title, "start", start, "end", end)
	}

	if _, err := recurrence.ParseRepeat(req.Repeat); err != nil {
		return model.TaskTemplate{}, "repeat must be one of: none, daily, weekly"
	}
	if req.Color != "" && !hexColorRegexp.MatchString(req.Color) {
		return model.TaskTemplate{}, "color must be a hex color (e.g. #FF0000)"
	}

	return model.TaskTemplate{
		ChildID:   req.ChildID,
		Title:     req.Title,
		Color:     req.Color,
		Icon:      req.Icon,
		Start:     start,
		End:       end,
		Repeat:    req.Repeat,
		Reminders: req.Reminders,
	}, ""
}

// parseTaskTime accepts RFC3339 or a local timestamp without offset.
func parseTaskTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}

func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (*model.TaskTemplate, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	tmpl, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return nil, false
	}
	if tmpl == nil || tmpl.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return nil, false
	}
	return tmpl, true
}
