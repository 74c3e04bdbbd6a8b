package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lutefd/navi-api/internal/auth"
	"github.com/lutefd/navi-api/internal/dashboard"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/events"
	"github.com/lutefd/navi-api/internal/metrics"
	"github.com/lutefd/navi-api/internal/seed"
)

type Store interface {
	Ping(ctx context.Context) error
	ListMatches(ctx context.Context) ([]matches.Summary, error)
	GetMatchDetail(ctx context.Context, id int64) (matches.Detail, error)
	CreateMatch(ctx context.Context, in matches.Input) (matches.Summary, error)
	UpdateMatch(ctx context.Context, id int64, in matches.Input) (matches.Summary, error)
	DeleteMatch(ctx context.Context, id int64) error
	ListGoalAssistLogs(ctx context.Context) ([]matches.GoalAssistLog, error)
	ListAttendanceLogs(ctx context.Context) ([]matches.AttendanceLog, error)
	CreatePlayer(ctx context.Context, in matches.PlayerInput) (matches.Player, error)
	UpdatePlayerPhone(ctx context.Context, id int64, phone *string) (matches.Player, error)
	ListNextMatches(ctx context.Context) ([]matches.NextMatch, error)
	CreateNextMatch(ctx context.Context, in matches.NextMatchInput) (matches.NextMatch, error)
	UpdateNextMatch(ctx context.Context, id int64, in matches.NextMatchInput) (matches.NextMatch, error)
	DeleteNextMatch(ctx context.Context, id int64) error
}

type Seeder interface {
	SeedIfEmpty(ctx context.Context) (seed.Result, error)
}

type Dependencies struct {
	Store      Store
	Dashboard  *dashboard.Service
	Bus        *events.Bus
	Seeder     Seeder
	Metrics    *metrics.Recorder
	AdminToken string
	CORSOrigin string
	Logger     *slog.Logger
}

type Server struct {
	store      Store
	dashboard  *dashboard.Service
	bus        *events.Bus
	seeder     Seeder
	metrics    *metrics.Recorder
	auth       auth.Middleware
	corsOrigin string
	logger     *slog.Logger
}

func NewServer(deps Dependencies) *Server {
	s := &Server{
		store:      deps.Store,
		dashboard:  deps.Dashboard,
		bus:        deps.Bus,
		seeder:     deps.Seeder,
		metrics:    deps.Metrics,
		auth:       auth.NewMiddleware(deps.AdminToken),
		corsOrigin: deps.CORSOrigin,
		logger:     deps.Logger,
	}
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware, mux.CORSMethodMiddleware(r), s.corsMiddleware)

	public := func(path string, h http.HandlerFunc, method string) {
		r.Handle(path, h).Methods(method, http.MethodOptions)
	}
	admin := func(path string, h http.HandlerFunc, method string) {
		r.Handle(path, s.auth.Guard(h)).Methods(method, http.MethodOptions)
	}

	public("/healthz", s.handleHealth, http.MethodGet)

	api := "/api"
	public(api+"/home", s.handleHome, http.MethodGet)
	public(api+"/dashboard", s.handleDashboard, http.MethodGet)
	public(api+"/matches", s.handleListMatches, http.MethodGet)
	public(api+"/matches/{id:[0-9]+}", s.handleGetMatch, http.MethodGet)
	public(api+"/goals", s.handleGoalAssistLogs, http.MethodGet)
	public(api+"/assists", s.handleGoalAssistLogs, http.MethodGet)
	public(api+"/attendance", s.handleAttendance, http.MethodGet)
	public(api+"/player/{name}", s.handlePlayerDetail, http.MethodGet)
	public(api+"/players", s.handleListPlayers, http.MethodGet)
	public(api+"/next-matches", s.handleListNextMatches, http.MethodGet)

	admin(api+"/matches", s.handleCreateMatch, http.MethodPost)
	admin(api+"/matches/{id:[0-9]+}", s.handleUpdateMatch, http.MethodPut)
	admin(api+"/matches/{id:[0-9]+}", s.handleDeleteMatch, http.MethodDelete)
	admin(api+"/players", s.handleCreatePlayer, http.MethodPost)
	admin(api+"/player/id/{id:[0-9]+}", s.handleUpdatePlayerPhone, http.MethodPatch)
	admin(api+"/next-matches", s.handleCreateNextMatch, http.MethodPost)
	admin(api+"/next-matches/{id:[0-9]+}", s.handleUpdateNextMatch, http.MethodPut)
	admin(api+"/next-matches/{id:[0-9]+}", s.handleDeleteNextMatch, http.MethodDelete)
	admin(api+"/admin/seed-csv", s.handleSeed, http.MethodPost)
	admin(api+"/admin/metrics", s.handleMetrics, http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.dashboard.Home(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListMatches(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "year must be a number", http.StatusBadRequest)
			return
		}
		filtered := make([]matches.Summary, 0, len(items))
		for _, m := range items {
			if m.MatchDate.Year() == year {
				filtered = append(filtered, m)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := s.store.GetMatchDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var payload matches.Input
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := payload.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.CreateMatch(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(r, events.MatchCreated, events.MatchChanged{MatchID: created.ID, Summary: created})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload matches.Input
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := payload.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdateMatch(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(r, events.MatchUpdated, events.MatchChanged{MatchID: id, Summary: updated})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteMatch(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(r, events.MatchDeleted, events.MatchChanged{MatchID: id})
	w.WriteHeader(http.StatusNoContent)
}

// publish runs the projection handlers. The write is already committed, so
// a failing handler is logged and left to the nightly rebuild.
func (s *Server) publish(r *http.Request, name string, payload events.MatchChanged) {
	if err := s.bus.Publish(r.Context(), events.Event{Name: name, Payload: payload}); err != nil {
		s.logger.ErrorContext(r.Context(), "event handler failed",
			"event", name, "match_id", payload.MatchID, "request_id", requestID(r.Context()), "error", err)
	}
}

func (s *Server) handleGoalAssistLogs(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListGoalAssistLogs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListAttendanceLogs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePlayerDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.dashboard.PlayerDetail(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	items, err := s.dashboard.Players(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var payload matches.PlayerInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := payload.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.CreatePlayer(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePlayerPhone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload struct {
		PhoneNumber *string `json:"phoneNumber"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdatePlayerPhone(r.Context(), id, matches.NormalizePhone(payload.PhoneNumber))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListNextMatches(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListNextMatches(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateNextMatch(w http.ResponseWriter, r *http.Request) {
	var payload matches.NextMatchInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := payload.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.CreateNextMatch(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateNextMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var payload matches.NextMatchInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := payload.Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdateNextMatch(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNextMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteNextMatch(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if s.seeder == nil {
		writeJSON(w, http.StatusOK, seed.Result{Message: "no seed directory configured"})
		return
	}
	res, err := s.seeder.SeedIfEmpty(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	callID, _ := auth.AdminCallID(r.Context())
	s.logger.InfoContext(r.Context(), "seed requested", "admin_call", callID, "done", res.Done)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"routes": s.metrics.Snapshot()})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if s.corsOrigin != "*" {
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return strings.TrimRight(r.URL.Path, "/")
}
