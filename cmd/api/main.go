package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/richat-partners/staffing-api/internal/auth"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/richat-partners/staffing-api/internal/cvrender"
	"github.com/richat-partners/staffing-api/internal/database"
	"github.com/richat-partners/staffing-api/internal/events"
	"github.com/richat-partners/staffing-api/internal/http/handler"
	"github.com/richat-partners/staffing-api/internal/http/middleware"
	"github.com/richat-partners/staffing-api/internal/http/router"
	"github.com/richat-partners/staffing-api/internal/jobs"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/richat-partners/staffing-api/internal/matching"
	"github.com/richat-partners/staffing-api/internal/repository"
	"github.com/richat-partners/staffing-api/internal/service"
	"github.com/richat-partners/staffing-api/internal/storage"
	"go.uber.org/zap"
)

// @title Richat Partners Staffing API
// @version 1.0
// @description Back office for consultants, tenders, matching and standardized CVs

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for back-office operations
// @Security ApiKeyAuth
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// In development secrets come from the environment,
	// in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(ctx, &cfg.Storage, &cfg.Media, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	scoreCache, closeCache, err := newScoreCache(ctx, &cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeCache()

	// Event publishing is optional; notifications are still stored without it
	publisher, err := events.NewPublisher(&cfg.Events, log)
	if err != nil {
		log.Warn("Event publisher unavailable, continuing without it", zap.Error(err))
		publisher = events.NopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Error closing event publisher", zap.Error(err))
		}
	}()

	extractor := newExtractor(ctx, &cfg.Extraction, log)

	// Repositories
	consultantRepo := repository.NewConsultantRepository(db)
	competenceRepo := repository.NewCompetenceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	standardizedCVRepo := repository.NewStandardizedCVRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, consultantRepo, publisher, log)
	consultantService := service.NewConsultantService(consultantRepo, competenceRepo, documentRepo, extractor, fileStorage, db, log)
	consultantService.SetScoreCache(scoreCache)
	tenderService := service.NewTenderService(tenderRepo, criterionRepo, scoreCache, db, log)
	matchingService := service.NewMatchingService(consultantRepo, tenderRepo, matchRepo, scoreCache, log)
	lifecycleService := service.NewMatchLifecycleService(db, notificationService, log)
	standardizedCVService := service.NewStandardizedCVService(
		consultantRepo,
		standardizedCVRepo,
		cvrender.NewPDFRenderer(),
		fileStorage,
		notificationService,
		cfg.Media.URL,
		cfg.Media.WriteSidecar,
		log,
	)

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.ApiKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Tender:         handler.NewTenderHandler(tenderService, log),
		Consultant:     handler.NewConsultantHandler(consultantService, cfg.Storage.MaxUploadSizeMB, log),
		Match:          handler.NewMatchHandler(matchingService, lifecycleService, log),
		StandardizedCV: handler.NewStandardizedCVHandler(standardizedCVService, log),
		Notification:   handler.NewNotificationHandler(notificationService, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.MatchRefreshEnabled {
		scheduler = jobs.NewScheduler(log)
		refresh := jobs.NewMatchRefreshJob(tenderService, matchingService, log, cfg.Jobs.MatchRefreshTimeoutDuration())
		if err := jobs.RegisterMatchRefreshJob(scheduler, refresh, cfg.Jobs.MatchRefreshCron); err != nil {
			log.Error("Failed to register match refresh job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with match refresh job",
				zap.String("cron_expr", cfg.Jobs.MatchRefreshCron),
				zap.Duration("timeout", cfg.Jobs.MatchRefreshTimeoutDuration()),
			)
		}
	} else {
		log.Info("Match refresh job disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// newScoreCache returns the configured score cache and a function releasing it
func newScoreCache(ctx context.Context, cfg *config.CacheConfig, log *zap.Logger) (matching.ScoreCache, func(), error) {
	if cfg.Mode != "redis" {
		log.Info("Using in-process score cache")
		return matching.NewMemoryScoreCache(), func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	cache, err := matching.NewRedisScoreCache(client, cfg.TTLDuration())
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info("Using redis score cache", zap.Duration("ttl", cfg.TTLDuration()))
	return cache, func() { _ = client.Close() }, nil
}

// newExtractor builds the CV extractor. Native PDF text always comes from eino;
// OCR and legacy DOC conversion need a Tika server.
func newExtractor(ctx context.Context, cfg *config.ExtractionConfig, log *zap.Logger) *cvparser.Extractor {
	options := []cvparser.Option{
		cvparser.WithLogger(log.Named("cvparser")),
		cvparser.WithMinPageChars(cfg.MinPageChars),
	}

	pages, err := cvparser.NewEinoPageExtractor(ctx)
	if err != nil {
		log.Warn("Native PDF text extraction unavailable", zap.Error(err))
	} else {
		options = append(options, cvparser.WithPageExtractor(pages))
	}

	if cfg.TikaURL == "" {
		log.Info("No extraction server configured, OCR and DOC conversion disabled")
		return cvparser.NewExtractor(options...)
	}

	tikaOptions := []cvparser.TikaOption{}
	if cfg.OCRLanguages != "" {
		tikaOptions = append(tikaOptions, cvparser.WithOCRLanguages(cfg.OCRLanguages))
	}
	if cfg.OCRDPI > 0 {
		tikaOptions = append(tikaOptions, cvparser.WithOCRDPI(cfg.OCRDPI))
	}
	if cfg.Timeout > 0 {
		tikaOptions = append(tikaOptions, cvparser.WithTimeout(cfg.TimeoutDuration()))
	}
	tika := cvparser.NewTikaClient(cfg.TikaURL, tikaOptions...)

	options = append(options, cvparser.WithDocConverter(tika))
	if cfg.OCREnabled {
		options = append(options, cvparser.WithOCREngine(tika))
	}
	log.Info("Extraction server configured",
		zap.String("url", cfg.TikaURL),
		zap.Bool("ocr", cfg.OCREnabled))

	return cvparser.NewExtractor(options...)
}
