package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/richat-partners/staffing-api/internal/auth"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/database"
	"github.com/richat-partners/staffing-api/internal/http/handler"
	"github.com/richat-partners/staffing-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Tender         *handler.TenderHandler
	Consultant     *handler.ConsultantHandler
	Match          *handler.MatchHandler
	StandardizedCV *handler.StandardizedCVHandler
	Notification   *handler.NotificationHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Generated CVs are public files when stored on local disk
	if rt.cfg.Storage.Mode == "local" && strings.HasPrefix(rt.cfg.Media.URL, "/") {
		prefix := strings.TrimRight(rt.cfg.Media.URL, "/")
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.Limit)
			r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(rt.cfg.Media.Root))))
		})
	}

	h := rt.handlers

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		r.Route("/tenders", func(r chi.Router) {
			r.Get("/", h.Tender.List)
			r.Post("/", h.Tender.Ingest)
			r.Get("/{id}", h.Tender.GetByID)
			r.Patch("/{id}", h.Tender.Enrich)

			r.Get("/{id}/criteria", h.Tender.ListCriteria)
			r.Post("/{id}/criteria", h.Tender.AddCriterion)
			r.Delete("/{id}/criteria/{criterionId}", h.Tender.RemoveCriterion)

			r.Get("/{id}/matches", h.Match.ListForTender)
			r.Post("/{id}/matches", h.Match.Generate)
			r.Get("/{id}/score/{consultantId}", h.Match.ScorePair)
		})

		r.Route("/consultants", func(r chi.Router) {
			r.Get("/", h.Consultant.List)
			r.Post("/", h.Consultant.Create)
			r.Get("/{id}", h.Consultant.GetByID)
			r.Delete("/{id}", h.Consultant.Delete)
			r.Put("/{id}/availability", h.Consultant.UpdateAvailability)
			r.Post("/{id}/approve", h.Consultant.Approve)
			r.Put("/{id}/status", h.Consultant.SetStatus)
			r.Post("/{id}/cv", h.Consultant.UploadCV)
			r.Post("/{id}/expertise", h.Consultant.RecomputeExpertise)

			r.Get("/{id}/competences", h.Consultant.ListCompetences)
			r.Post("/{id}/competences", h.Consultant.AddCompetence)
			r.Delete("/{id}/competences/{competenceId}", h.Consultant.RemoveCompetence)

			r.Get("/{id}/matches", h.Match.ListForConsultant)

			r.Get("/{id}/standardized-cvs", h.StandardizedCV.List)
			r.Post("/{id}/standardized-cvs", h.StandardizedCV.Generate)
			r.Get("/{id}/standardized-cvs/current", h.StandardizedCV.Current)

			r.Get("/{id}/notifications", h.Notification.List)
			r.Get("/{id}/notifications/count", h.Notification.GetUnreadCount)
			r.Put("/{id}/notifications/read-all", h.Notification.MarkAllAsRead)
			r.Put("/{id}/notifications/{notificationId}/read", h.Notification.MarkAsRead)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/{id}/validate", h.Match.Validate)
			r.Post("/{id}/invalidate", h.Match.Invalidate)
		})

		r.Get("/standardized-cvs/{id}/download", h.StandardizedCV.Download)
	})

	return r
}
