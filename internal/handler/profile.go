package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"calkids/internal/auth"
	"calkids/internal/model"
	"calkids/internal/store"
	"calkids/internal/theme"
	"calkids/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var pinRegexp = regexp.MustCompile(`^[0-9]{4,6}$`)

type ProfileHandler struct {
	profiles *store.ProfileStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProfileHandler(ps *store.ProfileStore, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: ps, hub: hub, logger: logger}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	profiles, err := h.profiles.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list profiles"})
		return
	}
	if profiles == nil {
		profiles = []model.ChildProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		AvatarID string `json:"avatarId"`
		Color    string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Color == "" {
		req.Color = theme.ForAvatar(req.AvatarID).Primary
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color must be a hex color (e.g. #FF0000)"})
		return
	}

	householdID := auth.HouseholdID(r.Context())
	profile, err := h.profiles.Create(householdID, req.Name, req.AvatarID, req.Color)
	if err != nil {
		h.logger.Error("create profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create profile"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "created", profile.ID, nil))
	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		AvatarID string `json:"avatarId"`
		Color    string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.AvatarID == "" {
		req.AvatarID = existing.AvatarID
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "color must be a hex color (e.g. #FF0000)"})
		return
	}

	profile, err := h.profiles.Update(existing.ID, req.Name, req.AvatarID, req.Color)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "updated", profile.ID, nil))
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Delete(profile.ID); err != nil {
		h.logger.Error("delete profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete profile"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "deleted", profile.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Activate makes a profile the household's active one and answers with the
// profile plus its display theme. The theme is part of the response, not a
// server-side side effect: each connected screen applies it on its own.
func (h *ProfileHandler) Activate(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if err := h.profiles.Activate(householdID, profile.ID); err != nil {
		h.logger.Error("activate profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to activate profile"})
		return
	}

	profile.Active = true
	h.hub.Broadcast(websocket.NewMessage("profile", "activated", profile.ID, nil))
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"theme":   theme.ForAvatar(profile.AvatarID),
	})
}

// Deactivate switches the household back to parent mode.
func (h *ProfileHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if err := h.profiles.Activate(householdID, ""); err != nil {
		h.logger.Error("deactivate profiles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to deactivate"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "deactivated", "", nil))
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": nil,
		"theme":   theme.Default,
	})
}

func (h *ProfileHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !pinRegexp.MatchString(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin must be 4-6 digits"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set pin"})
		return
	}
	if err := h.profiles.SetPIN(profile.ID, string(hash)); err != nil {
		h.logger.Error("set pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set pin"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *ProfileHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	if err := h.profiles.ClearPIN(profile.ID); err != nil {
		h.logger.Error("clear pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear pin"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func (h *ProfileHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.ownedProfile(w, r)
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	hash, err := h.profiles.GetPINHash(profile.ID)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to verify pin"})
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
		return
	}

	valid := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) == nil
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// ownedProfile loads the profile from the path id and checks it belongs to
// the authenticated household.
func (h *ProfileHandler) ownedProfile(w http.ResponseWriter, r *http.Request) (*model.ChildProfile, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	profile, err := h.profiles.GetByID(id)
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return nil, false
	}
	if profile == nil || profile.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return nil, false
	}
	return profile, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
