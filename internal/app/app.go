// Package app assembles the collection pipeline: database, rate
// limiters, provider clients, services, and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/collector/internal/collector/footballdata"
	"github.com/matchpulse/collector/internal/config"
	"github.com/matchpulse/collector/internal/infrastructure/repository/postgres"
	"github.com/matchpulse/collector/internal/interfaces/httpapi"
	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/platform/ratelimit"
	"github.com/matchpulse/collector/internal/platform/resilience"
	"github.com/matchpulse/collector/internal/usecase"
)

// App owns the wired dependencies. cmd/api serves App.Server while
// cmd/collector drives App.CollectionService directly.
type App struct {
	Config            config.Config
	Logger            *logging.Logger
	DB                *sqlx.DB
	Limiter           *ratelimit.SourceLimiter
	CollectionService *usecase.CollectionService
	QualityService    *usecase.QualityService
	Server            *http.Server

	sourceNames []string
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	teamRepo := postgres.NewTeamRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	logRepo := postgres.NewCollectionLogRepository(db)

	limiter := ratelimit.NewSourceLimiter()
	collectionSvc := usecase.NewCollectionService(logger, teamRepo, matchRepo, logRepo)
	collectionSvc.SetMinReliability(cfg.MinSourceReliability)

	sourceNames := make([]string, 0, 1)
	if cfg.FootballData.Enabled {
		if err := limiter.Register(cfg.FootballData.Name, cfg.FootballData.RateLimitPerMinute); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register rate limit for %s: %w", cfg.FootballData.Name, err)
		}

		client := footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:    cfg.FootballData.BaseURL,
			Token:      cfg.FootballData.AuthToken,
			SourceName: cfg.FootballData.Name,
			Timeout:    cfg.FootballData.Timeout,
			Retry:      resilience.NewRetryPolicy(cfg.FootballData.RetryAttempts, cfg.FootballData.RetryDelay, nil),
			Logger:     logger,
			Limiter:    limiter,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootballData.CircuitEnabled,
				FailureThreshold: cfg.FootballData.CircuitFailureCount,
				OpenTimeout:      cfg.FootballData.CircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FootballData.CircuitHalfOpenReq,
			},
		})
		if err := collectionSvc.RegisterSource(cfg.FootballData, client); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register source %s: %w", cfg.FootballData.Name, err)
		}
		sourceNames = append(sourceNames, cfg.FootballData.Name)
	}

	qualitySvc := usecase.NewQualityService(logger, matchRepo, logRepo, limiter)

	handler := httpapi.NewHandler(collectionSvc, qualitySvc, sourceNames, cfg.ServiceName, cfg.ServiceVersion, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Config:            cfg,
		Logger:            logger,
		DB:                db,
		Limiter:           limiter,
		CollectionService: collectionSvc,
		QualityService:    qualitySvc,
		Server:            server,
		sourceNames:       sourceNames,
	}, nil
}

// SourceNames lists the providers registered at build time.
func (a *App) SourceNames() []string {
	out := make([]string, len(a.sourceNames))
	copy(out, a.sourceNames)
	return out
}

// Close releases provider connections before closing the database.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.CollectionService != nil {
		a.CollectionService.Close()
	}
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
