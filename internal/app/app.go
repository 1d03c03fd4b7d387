// Package app wires configuration into the running dependencies shared by
// the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/paulexconde/npsdash/internal/archive"
	"github.com/paulexconde/npsdash/internal/cache"
	"github.com/paulexconde/npsdash/internal/config"
	"github.com/paulexconde/npsdash/internal/pkg/workerpool"
	"github.com/paulexconde/npsdash/internal/repository"
	"github.com/paulexconde/npsdash/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	Cache    *cache.CampaignCache
	Pool     *workerpool.WorkerPool
	Surveys  services.SurveyService
	Repo     *repository.SurveyRepository
	Archiver *archive.Archiver
	Location *time.Location

	logger *zap.Logger
	cancel context.CancelFunc
}

// New opens the connection pools lazily, nothing is dialed yet. Redis and
// the S3 archive are only set up when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxOpenConns)
	db.SetConnMaxIdleTime(cfg.Database.IdleTimeout())

	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		Config:   cfg,
		DB:       db,
		Location: loc,
		Pool:     workerpool.NewWorkerPool(ctx, cfg.Workers.Count, cfg.Workers.QueueSize, logger),
		logger:   logger,
		cancel:   cancel,
	}

	var campaignCache services.CampaignCache
	if cfg.Redis.Enabled() {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.Cache = cache.NewCampaignCache(a.Redis, cfg.Redis.TTL())
		campaignCache = a.Cache
	}

	if cfg.Export.Enabled() {
		sink, err := archive.NewS3Sink(ctx, cfg.Export.S3Bucket, cfg.Export.S3Region, cfg.Export.Prefix)
		if err != nil {
			a.Close(context.Background())
			return nil, err
		}
		a.Archiver = archive.NewArchiver(sink, a.Pool, cfg.Workers.Retries, cfg.Workers.RetryDelay(), logger)
	}

	a.Repo = repository.NewSurveyRepository(db, logger)
	catalog := services.NewCatalog(cfg.Projects, repository.NewCampaignRepository(db, logger), campaignCache, loc, logger)
	a.Surveys = services.NewSurveyService(catalog, a.Repo, logger)

	logger.Info("Application initialized",
		zap.Int("projects", len(cfg.Projects)),
		zap.Bool("redis", a.Redis != nil),
		zap.Bool("archive", a.Archiver != nil),
		zap.String("timezone", loc.String()))

	return a, nil
}

// Ping checks the database within the configured connect timeout.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Database.ConnectTimeout())
	defer cancel()
	return a.Repo.Ping(ctx)
}

// Close drains background jobs, then closes Redis and the database pool.
func (a *App) Close(ctx context.Context) {
	a.Pool.Shutdown(ctx)
	a.cancel()

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("Redis close failed", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.logger.Warn("Database close failed", zap.Error(err))
	}
	a.logger.Info("Connections closed")
}
