package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"competition-voting/internal/domain/admin"
	"competition-voting/internal/domain/catalog"
	"competition-voting/internal/domain/stats"
	"competition-voting/internal/domain/vote"
	"competition-voting/internal/platform/apperr"
	jwtpkg "competition-voting/internal/platform/jwt"
	"competition-voting/internal/worker"
)

// Deps is everything the router needs. DB is nil for in-memory storage.
type Deps struct {
	Catalog  *catalog.Service
	Votes    *vote.Service
	Stats    *stats.Projector
	Admins   *admin.Service
	JWT      *jwtpkg.Manager
	TokenTTL time.Duration
	VoteCh   chan<- worker.VoteEvent
	DB       *sql.DB
	Log      *zap.Logger

	VoteRatePerMin int
	VoteRateBurst  int
}

type Handler struct {
	catalog  *catalog.Service
	votes    *vote.Service
	stats    *stats.Projector
	admins   *admin.Service
	jwtMgr   *jwtpkg.Manager
	tokenTTL time.Duration
	voteCh   chan<- worker.VoteEvent
	db       *sql.DB
	log      *zap.Logger
	now      func() time.Time
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	ttl := d.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	perMin, burst := d.VoteRatePerMin, d.VoteRateBurst
	if perMin <= 0 {
		perMin = 10
	}
	if burst <= 0 {
		burst = 3
	}

	h := &Handler{
		catalog:  d.Catalog,
		votes:    d.Votes,
		stats:    d.Stats,
		admins:   d.Admins,
		jwtMgr:   d.JWT,
		tokenTTL: ttl,
		voteCh:   d.VoteCh,
		db:       d.DB,
		log:      log,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger(log))
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)

		r.Get("/competitions", h.handleListCompetitions)
		r.Get("/competitions/{id}", h.handleGetCompetition)
		r.Get("/competitions/{id}/contestants", h.handleListCompetitionContestants)
		r.Get("/competitions/{id}/eligibility", h.handleEligibility)
		r.With(RateLimitVotes(rate.Every(time.Minute/time.Duration(perMin)), burst)).
			Post("/competitions/{id}/votes", h.handleVote)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.JWT))
			r.Use(RequireRole(admin.RoleAdmin))

			r.Post("/competitions", h.handleCreateCompetition)
			r.Put("/competitions/{id}", h.handleUpdateCompetition)
			r.Delete("/competitions/{id}", h.handleDeleteCompetition)

			r.Get("/contestants", h.handleListContestants)
			r.Post("/contestants", h.handleCreateContestant)
			r.Get("/contestants/{id}", h.handleGetContestant)
			r.Put("/contestants/{id}", h.handleUpdateContestant)
			r.Delete("/contestants/{id}", h.handleDeleteContestant)

			r.Get("/admin/competitions/{id}/stats", h.handleCompetitionStats)
			r.Get("/admin/dashboard", h.handleDashboard)
			r.Get("/admin/analytics", h.handleAnalytics)
			r.Get("/admin/transactions", h.handleTransactionLog)
			r.Get("/admin/transactions/summary", h.handleTransactionSummary)
			r.Get("/admin/transactions/export", h.handleExportTransactions)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("invalid_input", "request body is empty", err)
		}
		return apperr.BadRequest("invalid_input", "invalid body", err)
	}
	return nil
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "storage": "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "storage": "postgres"})
}
