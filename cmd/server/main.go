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

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/adapters/geoip"
	"github.com/hkunkun/hkun-links/pkg/adapters/handler"
	"github.com/hkunkun/hkun-links/pkg/adapters/repository/sqlite"
	"github.com/hkunkun/hkun-links/pkg/config"
	"github.com/hkunkun/hkun-links/pkg/core/metadata"
	"github.com/hkunkun/hkun-links/pkg/core/services"
	"github.com/hkunkun/hkun-links/pkg/logging"
)

// app holds the wired dependencies and what must be released on shutdown.
type app struct {
	handler  http.Handler
	recorder *services.ClickRecorder
	repo     *sqlite.SQLiteRepository
	geo      *geoip.Locator
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath, logger)
	if err != nil {
		// Country enrichment is optional
		logger.Warn("GeoIP disabled", zap.Error(err))
		geo, _ = geoip.Open("", logger)
	}

	// Initialize Services
	clicks := services.NewClickService(repo, repo, cfg.IPHashKey, geo)
	recorder := services.NewClickRecorder(clicks, logger)
	extractor := metadata.New(
		metadata.WithUserAgent(cfg.MetadataUserAgent),
		metadata.WithTimeout(cfg.MetadataTimeout),
		metadata.WithLogger(logger),
	)

	// Initialize Router
	h := handler.NewRouter(cfg, handler.Services{
		Categories: services.NewCategoryService(repo, repo),
		Links:      services.NewLinkService(repo, repo),
		Clicks:     clicks,
		SiteConfig: services.NewSiteConfigService(repo),
		Transfer:   services.NewTransferService(repo),
		Metadata:   extractor,
		Recorder:   recorder,
	}, logger)

	return &app{handler: h, recorder: recorder, repo: repo, geo: geo}, nil
}

// close waits for pending clicks before releasing storage.
func (a *app) close() {
	a.recorder.Wait()
	_ = a.geo.Close()
	_ = a.repo.Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.MetadataTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
