package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/adapters/handler"
	"github.com/hkunkun/hkun-links/pkg/adapters/repository/sqlite"
	"github.com/hkunkun/hkun-links/pkg/config"
	"github.com/hkunkun/hkun-links/pkg/core/metadata"
	"github.com/hkunkun/hkun-links/pkg/core/services"
	"github.com/hkunkun/hkun-links/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// No GeoIP database ships with the function bundle
	clicks := services.NewClickService(repo, repo, cfg.IPHashKey, nil)

	mux = handler.NewRouter(cfg, handler.Services{
		Categories: services.NewCategoryService(repo, repo),
		Links:      services.NewLinkService(repo, repo),
		Clicks:     clicks,
		SiteConfig: services.NewSiteConfigService(repo),
		Transfer:   services.NewTransferService(repo),
		Metadata: metadata.New(
			metadata.WithUserAgent(cfg.MetadataUserAgent),
			metadata.WithTimeout(cfg.MetadataTimeout),
			metadata.WithLogger(logger),
		),
		Recorder: services.NewClickRecorder(clicks, logger),
	}, logger)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
