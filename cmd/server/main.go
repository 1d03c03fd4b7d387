package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulexconde/npsdash/internal/api"
	"github.com/paulexconde/npsdash/internal/app"
	"github.com/paulexconde/npsdash/internal/config"
	"github.com/paulexconde/npsdash/internal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, *verbose)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize", zap.Error(err))
	}

	if err := a.Ping(ctx); err != nil {
		zl.Warn("Database is not reachable yet", zap.Error(err))
	} else {
		zl.Info("Database connection established",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name))
	}

	if a.Surveys.Catalog().Warm(ctx, a.Pool) {
		zl.Info("Campaign cache warm-up queued")
	}

	deps := map[string]api.Pinger{"database": a.Repo}
	if a.Cache != nil {
		deps["redis"] = a.Cache
	}

	handlers := api.NewHandlers(a.Surveys, a.Repo, a.Archiver, cfg.Report.PageSize, cfg.Report.TopComments, zl)
	router := api.SetupRoutes(handlers, api.NewHealthChecker(deps, zl), cfg.Server.AllowedOrigins, zl)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		WriteTimeout:      cfg.Server.WriteTimeout(),
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("Starting server", zap.String("addr", server.Addr), zap.Int("projects", len(cfg.Projects)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server error", zap.Error(err))
		}
	}()

	<-done
	zl.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("Server shutdown error", zap.Error(err))
	}
	a.Close(shutdownCtx)

	zl.Info("Server stopped")
}
