package handler

import (
	"log/slog"
	"net/http"

	"calkids/internal/auth"
	"calkids/internal/model"
	"calkids/internal/rewards"
	"calkids/internal/store"
	"calkids/internal/websocket"
)

type RewardsHandler struct {
	points   *store.RewardStore
	profiles *store.ProfileStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewRewardsHandler(rs *store.RewardStore, ps *store.ProfileStore, hub *websocket.Hub, logger *slog.Logger) *RewardsHandler {
	return &RewardsHandler{points: rs, profiles: ps, hub: hub, logger: logger}
}

type pointsView struct {
	model.RewardPoints
	Stars            int `json:"stars"`
	PointsToNextStar int `json:"pointsToNextStar"`
}

func withStars(p model.RewardPoints) pointsView {
	return pointsView{
		RewardPoints:     p,
		Stars:            rewards.StarsForPoints(p.TotalPoints),
		PointsToNextStar: rewards.PointsToNextStar(p.TotalPoints),
	}
}

// Points returns one child's point totals and star progress. Children with
// no completions yet get a zero row rather than a 404.
func (h *RewardsHandler) Points(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("childId")
	if childID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid child id"})
		return
	}

	householdID := auth.HouseholdID(r.Context())
	profile, err := h.profiles.GetByID(childID)
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load points"})
		return
	}
	if profile == nil || profile.HouseholdID != householdID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}

	p, err := h.points.Get(childID)
	if err != nil {
		h.logger.Error("get points", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load points"})
		return
	}
	if p == nil {
		p = &model.RewardPoints{ChildID: childID, HouseholdID: householdID, ChildName: profile.Name}
	}
	writeJSON(w, http.StatusOK, withStars(*p))
}

// Leaderboard returns every child's totals ordered by points descending.
func (h *RewardsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	list, err := h.points.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list points", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
		return
	}

	out := make([]pointsView, 0, len(list))
	for _, p := range list {
		out = append(out, withStars(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ResetDaily zeroes every child's daily counters, typically at the start of
// a new day. Total points survive.
func (h *RewardsHandler) ResetDaily(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	if err := h.points.ResetDaily(householdID); err != nil {
		h.logger.Error("reset daily points", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reset daily points"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("rewards", "daily_reset", "", nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "daily points reset"})
}
