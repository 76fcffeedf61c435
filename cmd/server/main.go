package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-risk-registry/internal/config"
	"ai-risk-registry/internal/database"
	"ai-risk-registry/internal/handlers"
	"ai-risk-registry/internal/logger"
	"ai-risk-registry/internal/metrics"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/server"
	"ai-risk-registry/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBDSN, zlog)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword, zlog); err != nil {
		return err
	}

	catalog, err := risk.NewCatalog()
	if err != nil {
		return err
	}
	classifier, err := risk.NewClassifier(cfg.LimitedThreshold)
	if err != nil {
		return err
	}
	reports, err := risk.NewReportAggregator(catalog, cfg.TopRisksLimit)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repos := repository.New(db)
	svc := service.New(repos, classifier, catalog, reports, m, zlog)
	h := handlers.New(svc, repos.Users, zlog)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           server.NewRouter(cfg, h, repos.Users, m, zlog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("addr", srv.Addr), zap.Int("limited_threshold", cfg.LimitedThreshold))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
