// Package gamehandlers exposes the game engine over HTTP.
package gamehandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	"github.com/Black-And-White-Club/leet-bot/app/shared/httpauth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/olebedev/when"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultLeaderboardLimit = 10
	maxInstances            = 30
)

// Config holds the HTTP surface settings.
type Config struct {
	// AdminSecret guards role assignment. Empty disables the endpoint.
	AdminSecret string
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	RateBurst int
	// DefaultWindowDays applies to stats and leaderboard queries without
	// a window_days parameter.
	DefaultWindowDays int
	// Location resolves relative dates; nil means UTC.
	Location *time.Location
	Clock    clockwork.Clock
}

// GameHandlers serves the game REST API.
type GameHandlers struct {
	service gameservice.Service
	cfg     Config
	limiter *IPRateLimiter
	logger  *slog.Logger
	tracer  trace.Tracer

	clock    clockwork.Clock
	location *time.Location
	dates    *when.Parser
}

func NewGameHandlers(service gameservice.Service, cfg Config, logger *slog.Logger, tracer trace.Tracer) *GameHandlers {
	h := &GameHandlers{
		service: service,
		cfg:     cfg,
		logger:  logger,
		tracer:  tracer,

		clock:    cfg.Clock,
		location: cfg.Location,
		dates:    newDateParser(),
	}
	if h.clock == nil {
		h.clock = clockwork.NewRealClock()
	}
	if h.location == nil {
		h.location = time.UTC
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		h.limiter = NewIPRateLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return h
}

// Routes builds the router: /health plus everything under /game.
func (h *GameHandlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(CorrelationMiddleware)

	r.Get("/health", h.HandleHealth)

	r.Route("/game", func(r chi.Router) {
		if h.limiter != nil {
			r.Use(RateLimitMiddleware(h.limiter))
		}
		r.Use(h.traced)

		r.Get("/phase", h.HandlePhase)
		r.Get("/instances", h.HandleNextInstances)

		r.Route("/bets", func(r chi.Router) {
			r.Get("/", h.HandleBetsFor)
			r.Get("/daily", h.HandleDailyBets)
			r.Post("/validate", h.HandleValidatePlacement)
			r.Post("/regular", h.HandlePlaceRegular)
			r.Post("/early-bird", h.HandlePlaceEarlyBird)
			r.Get("/participants/{participantID}", h.HandleBetOf)
		})

		r.Get("/winners/{date}", h.HandleWinnerFor)
		r.Get("/stats/{scopeID}/{participantID}", h.HandleStats)
		r.Get("/leaderboard/{scopeID}", h.HandleLeaderboard)
		r.Get("/leaderboard/{scopeID}/chart.png", h.HandleLeaderboardChart)

		r.Get("/roles/{scopeID}", h.HandleRoleHolders)
		r.With(httpauth.RequireBearer(h.cfg.AdminSecret)).Put("/roles/{scopeID}/{tier}", h.HandleSetRoleHolder)
	})

	return r
}

func (h *GameHandlers) traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.tracer == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *GameHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *GameHandlers) HandlePhase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPhaseJSON(h.service.CurrentPhase(r.Context())))
}

func (h *GameHandlers) HandleNextInstances(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", 1)
	if err != nil || n < 1 || n > maxInstances {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "n must be between 1 and " + strconv.Itoa(maxInstances)})
		return
	}
	instances := h.service.NextInstances(r.Context(), n)
	out := make([]string, len(instances))
	for i, at := range instances {
		out[i] = at.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"instances": out})
}

// intParam reads an integer query parameter, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
