package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"calkids/internal/auth"
	"calkids/internal/calendar"
	"calkids/internal/dates"
	"calkids/internal/model"
	"calkids/internal/recurrence"
	"calkids/internal/rewards"
	"calkids/internal/source"
	"calkids/internal/store"
	"calkids/internal/websocket"
)

type CalendarHandler struct {
	tasks     *store.TaskStore
	instances *store.InstanceStore
	profiles  *store.ProfileStore
	tracker   *rewards.Tracker
	upstream  *source.Client
	hub       *websocket.Hub
	logger    *slog.Logger
}

// NewCalendarHandler wires the calendar endpoints. upstream may be nil, in
// which case instances come from locally stored templates only.
func NewCalendarHandler(
	ts *store.TaskStore,
	is *store.InstanceStore,
	ps *store.ProfileStore,
	tracker *rewards.Tracker,
	upstream *source.Client,
	hub *websocket.Hub,
	logger *slog.Logger,
) *CalendarHandler {
	return &CalendarHandler{
		tasks:     ts,
		instances: is,
		profiles:  ps,
		tracker:   tracker,
		upstream:  upstream,
		hub:       hub,
		logger:    logger,
	}
}

// Week returns the Monday-to-Sunday schedule containing the requested date
// (today when absent), one entry per day even when a day has no tasks.
func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	anchor, ok := queryDate(w, r, time.Now())
	if !ok {
		return
	}

	days := dates.WeekDays(anchor)
	from, err := dates.ParseDayKey(days[0])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load week"})
		return
	}
	to, _ := dates.ParseDayKey(days[6])

	buckets, fallback, ok := h.loadBuckets(w, r, from, to)
	if !ok {
		return
	}
	buckets = calendar.SelectVisibleDays(buckets, calendar.ViewWeek, "", r.URL.Query().Get("child"))

	type dayEntry struct {
		Date  string               `json:"date"`
		Tasks []model.TaskInstance `json:"tasks"`
	}
	out := struct {
		WeekStart string     `json:"weekStart"`
		WeekEnd   string     `json:"weekEnd"`
		Days      []dayEntry `json:"days"`
		Fallback  bool       `json:"fallback,omitempty"`
	}{WeekStart: days[0], WeekEnd: days[6], Fallback: fallback}

	for _, day := range days {
		tasks := buckets[day]
		if tasks == nil {
			tasks = []model.TaskInstance{}
		}
		out.Days = append(out.Days, dayEntry{Date: day, Tasks: tasks})
	}
	writeJSON(w, http.StatusOK, out)
}

// Day returns a single day's schedule.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	anchor, ok := queryDate(w, r, time.Now())
	if !ok {
		return
	}
	day := dates.DayKey(anchor)

	buckets, fallback, ok := h.loadBuckets(w, r, anchor, anchor)
	if !ok {
		return
	}
	buckets = calendar.SelectVisibleDays(buckets, calendar.ViewDay, day, r.URL.Query().Get("child"))

	tasks := buckets[day]
	if tasks == nil {
		tasks = []model.TaskInstance{}
	}
	resp := map[string]any{
		"date":  day,
		"tasks": tasks,
	}
	if fallback {
		resp["fallback"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// Now returns today's schedule classified around the current time, with a
// two-hour focus window on either side. A datetime query param overrides
// "now", which the board uses to preview other times of day.
func (h *CalendarHandler) Now(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if raw := r.URL.Query().Get("datetime"); raw != "" {
		t, err := parseTaskTime(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "datetime must be a timestamp"})
			return
		}
		now = t
	}

	buckets, fallback, ok := h.loadBuckets(w, r, now, now)
	if !ok {
		return
	}

	view := calendar.NowView(buckets, now, r.URL.Query().Get("child"))
	writeJSON(w, http.StatusOK, struct {
		calendar.NowWindow
		Fallback bool `json:"fallback,omitempty"`
	}{view, fallback})
}

// Range returns a flat instance array between from and to inclusive. This
// is the shape the board's week grid consumes directly.
func (h *CalendarHandler) Range(w http.ResponseWriter, r *http.Request) {
	from, err := dates.ParseDayKey(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := dates.ParseDayKey(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must not precede from"})
		return
	}

	buckets, fallback, ok := h.loadBuckets(w, r, from, to)
	if !ok {
		return
	}
	buckets = calendar.SelectVisibleDays(buckets, calendar.ViewWeek, "", r.URL.Query().Get("child"))

	// The flat array shape has no envelope for a fallback field, so the
	// degraded-data signal rides a header here.
	if fallback {
		w.Header().Set("X-Calendar-Fallback", "true")
	}
	out := []model.TaskInstance{}
	for cur := from; !cur.After(to); cur = dates.AddDays(cur, 1) {
		out = append(out, buckets[dates.DayKey(cur)]...)
	}
	writeJSON(w, http.StatusOK, out)
}

// SetDone toggles completion for one occurrence and reports the child's
// updated points.
func (h *CalendarHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	instanceID := r.PathValue("instanceId")
	if instanceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid instance id"})
		return
	}

	var req struct {
		Done    bool   `json:"done"`
		ChildID string `json:"childId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	householdID := auth.HouseholdID(r.Context())
	childID, childName := h.resolveChild(householdID, instanceID, req.ChildID)

	result, err := h.tracker.SetDone(householdID, instanceID, childID, childName, req.Done)
	if err != nil {
		h.logger.Error("set done", "instance", instanceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	if result.Changed {
		action := "completed"
		if !req.Done {
			action = "uncompleted"
		}
		h.hub.Broadcast(websocket.NewMessage("task", action, instanceID, map[string]any{"childId": childID}))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"changed":          result.Changed,
		"done":             result.Done,
		"points":           result.Points,
		"stars":            rewards.StarsForPoints(result.Points.TotalPoints),
		"pointsToNextStar": rewards.PointsToNextStar(result.Points.TotalPoints),
	})
}

// resolveChild picks the child to credit: the explicit request value wins,
// then the owning template's assignee, then the active profile.
func (h *CalendarHandler) resolveChild(householdID, instanceID, requested string) (string, string) {
	childID := requested
	if childID == "" {
		if at := strings.Index(instanceID, "@"); at > 0 {
			if tmpl, err := h.tasks.GetByID(instanceID[:at]); err == nil && tmpl != nil {
				childID = tmpl.ChildID
			}
		}
	}
	if childID == "" {
		if active, err := h.profiles.GetActive(householdID); err == nil && active != nil {
			childID = active.ID
		}
	}
	if childID == "" {
		return "", ""
	}

	profile, err := h.profiles.GetByID(childID)
	if err != nil || profile == nil {
		return childID, ""
	}
	return childID, profile.Name
}

// loadBuckets assembles day buckets for the range, from the upstream when
// configured and from local templates otherwise. When the upstream is
// unreachable the board still has to render, so a deterministic mock
// schedule for the household's profiles takes its place.
// The second return reports whether the mock fallback served the range,
// so views can flag degraded data to the client.
func (h *CalendarHandler) loadBuckets(w http.ResponseWriter, r *http.Request, from, to time.Time) (model.DayBuckets, bool, bool) {
	householdID := auth.HouseholdID(r.Context())

	// Widen to whole days so an occurrence late on the last day is not
	// cut off by a midnight range bound.
	from, _ = dates.ParseDayKey(dates.DayKey(from))
	to, _ = dates.ParseDayKey(dates.DayKey(to))
	to = dates.AddDays(to, 1).Add(-time.Nanosecond)

	var instances []model.TaskInstance
	var err error
	var fallback bool
	if h.upstream != nil {
		instances, err = h.upstream.FetchRange(r.Context(), householdID, from, to)
		if errors.Is(err, source.ErrUnavailable) {
			h.logger.Warn("upstream unavailable, serving mock schedule", "error", err)
			instances, err = h.mockRange(householdID, from, to)
			fallback = true
		}
	} else {
		instances, err = h.expandLocal(householdID, from, to)
	}
	if err != nil {
		h.logger.Error("load calendar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load calendar"})
		return nil, false, false
	}

	if err := h.applyInstanceState(instances); err != nil {
		h.logger.Error("apply instance state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load calendar"})
		return nil, false, false
	}

	return calendar.BuildDayBuckets(instances), fallback, true
}

func (h *CalendarHandler) expandLocal(householdID string, from, to time.Time) ([]model.TaskInstance, error) {
	templates, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		return nil, err
	}

	var out []model.TaskInstance
	for _, tmpl := range templates {
		out = append(out, recurrence.Expand(tmpl, from, to)...)
	}
	return out, nil
}

func (h *CalendarHandler) mockRange(householdID string, from, to time.Time) ([]model.TaskInstance, error) {
	profiles, err := h.profiles.ListByHousehold(householdID)
	if err != nil {
		return nil, err
	}
	return source.GenerateMockRange(profiles, from, to)
}

// applyInstanceState overlays recorded completion onto freshly generated
// instances.
func (h *CalendarHandler) applyInstanceState(instances []model.TaskInstance) error {
	ids := make([]string, len(instances))
	for i, inst := range instances {
		ids[i] = inst.ID
	}

	states, err := h.instances.GetMany(ids)
	if err != nil {
		return err
	}

	for i := range instances {
		if st, ok := states[instances[i].ID]; ok {
			instances[i].Done = st.Done
			instances[i].DoneAt = st.DoneAt
			if instances[i].ChildID == "" {
				instances[i].ChildID = st.ChildID
			}
		}
	}
	return nil
}

func queryDate(w http.ResponseWriter, r *http.Request, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return fallback, true
	}
	t, err := dates.ParseDayKey(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
