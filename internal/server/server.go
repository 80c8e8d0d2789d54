package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"calkids/internal/handler"
	"calkids/internal/middleware"
	"calkids/internal/rewards"
	"calkids/internal/source"
	"calkids/internal/store"
	ws "calkids/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	profileH     *handler.ProfileHandler
	taskH        *handler.TaskHandler
	calendarH    *handler.CalendarHandler
	rewardsH     *handler.RewardsHandler
	settingsH    *handler.SettingsHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

// New wires stores, handlers, and the broadcast hub. upstream may be nil
// when no remote calendar source is configured.
func New(db *sql.DB, upstream *source.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	profileStore := store.NewProfileStore(db)
	taskStore := store.NewTaskStore(db)
	instanceStore := store.NewInstanceStore(db)
	rewardStore := store.NewRewardStore(db)
	settingsStore := store.NewSettingsStore(db)

	tracker := rewards.NewTracker(instanceStore, rewardStore)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(householdStore, sessionStore, logger.With("component", "auth")),
		profileH:     handler.NewProfileHandler(profileStore, hub, logger.With("component", "profile")),
		taskH:        handler.NewTaskHandler(taskStore, instanceStore, hub, logger.With("component", "task")),
		calendarH:    handler.NewCalendarHandler(taskStore, instanceStore, profileStore, tracker, upstream, hub, logger.With("component", "calendar")),
		rewardsH:     handler.NewRewardsHandler(rewardStore, profileStore, hub, logger.With("component", "rewards")),
		settingsH:    handler.NewSettingsHandler(settingsStore, hub, logger.With("component", "settings")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Profile routes
	mux.HandleFunc("GET /api/profiles", s.profileH.List)
	mux.HandleFunc("POST /api/profiles", s.profileH.Create)
	mux.HandleFunc("GET /api/profiles/{id}", s.profileH.Get)
	mux.HandleFunc("PUT /api/profiles/{id}", s.profileH.Update)
	mux.HandleFunc("DELETE /api/profiles/{id}", s.profileH.Delete)
	mux.HandleFunc("POST /api/profiles/{id}/activate", s.profileH.Activate)
	mux.HandleFunc("POST /api/profiles/deactivate", s.profileH.Deactivate)

	// PIN routes
	mux.HandleFunc("POST /api/profiles/{id}/pin", s.profileH.SetPIN)
	mux.HandleFunc("DELETE /api/profiles/{id}/pin", s.profileH.ClearPIN)
	mux.HandleFunc("POST /api/profiles/{id}/pin/verify", s.profileH.VerifyPIN)

	// Task template routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Calendar routes
	mux.HandleFunc("GET /api/calendar", s.calendarH.Range)
	mux.HandleFunc("GET /api/calendar/week", s.calendarH.Week)
	mux.HandleFunc("GET /api/calendar/day", s.calendarH.Day)
	mux.HandleFunc("GET /api/calendar/now", s.calendarH.Now)
	mux.HandleFunc("PATCH /api/calendar/{instanceId}/done", s.calendarH.SetDone)

	// Rewards routes
	mux.HandleFunc("GET /api/rewards/{childId}/points", s.rewardsH.Points)
	mux.HandleFunc("GET /api/rewards/leaderboard", s.rewardsH.Leaderboard)
	mux.HandleFunc("POST /api/rewards/reset-daily", s.rewardsH.ResetDaily)

	// Board display settings
	mux.HandleFunc("GET /api/settings/board", s.settingsH.GetBoard)
	mux.HandleFunc("PUT /api/settings/board", s.settingsH.UpdateBoard)

	// Real-time sync
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
