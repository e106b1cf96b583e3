package handler

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hkunkun/hkun-links/pkg/config"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

// Services bundles everything the router dispatches to
type Services struct {
	Categories ports.CategoryService
	Links      ports.LinkService
	Clicks     ports.ClickService
	SiteConfig ports.SiteConfigService
	Transfer   ports.TransferService
	Metadata   ports.MetadataFetcher
	Recorder   ports.ClickRecorder
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize Middleware
	mw := NewMiddleware(cfg, logger)
	limiter := NewIPRateLimiter(rate.Limit(cfg.MetadataRateLimit), cfg.MetadataRateBurst)

	// Initialize Handlers
	authHandler := NewAuthHandler(cfg, logger)
	ch := NewCategoryHandler(svc.Categories, logger)
	lh := NewLinkHandler(svc.Links, logger)
	kh := NewClickHandler(svc.Clicks, svc.Links, svc.Recorder, logger)
	mh := NewMetadataHandler(svc.Metadata, logger)
	sh := NewSiteHandler(svc.SiteConfig, svc.Transfer, logger)
	ph := NewPublicHandler(svc.Categories, svc.Links, svc.SiteConfig, mw, logger)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /api/public/home", ph.Home)
	mux.HandleFunc("GET /api/public/categories/{slug}", ph.Category)
	mux.HandleFunc("GET /api/public/search", ph.Search)
	mux.HandleFunc("GET /api/public/site-config", sh.GetConfig)
	mux.HandleFunc("POST /api/track", kh.Track)
	mux.HandleFunc("GET /go/{id}", kh.Redirect)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/me", authHandler.Me)
	protectedMux.HandleFunc("GET /api/v1/dashboard", kh.Dashboard)

	// Category Routes
	protectedMux.HandleFunc("POST /api/v1/categories", ch.Create)
	protectedMux.HandleFunc("GET /api/v1/categories", ch.List)
	protectedMux.HandleFunc("PUT /api/v1/categories/order", ch.Reorder)
	protectedMux.HandleFunc("GET /api/v1/categories/{id}", ch.Get)
	protectedMux.HandleFunc("PUT /api/v1/categories/{id}", ch.Update)
	protectedMux.HandleFunc("DELETE /api/v1/categories/{id}", ch.Delete)
	protectedMux.HandleFunc("PUT /api/v1/categories/{id}/links/order", lh.Reorder)

	// Link Routes
	protectedMux.HandleFunc("POST /api/v1/links", lh.Create)
	protectedMux.HandleFunc("GET /api/v1/links", lh.List)
	protectedMux.HandleFunc("POST /api/v1/links/bulk-delete", lh.BulkDelete)
	protectedMux.HandleFunc("GET /api/v1/links/{id}", lh.Get)
	protectedMux.HandleFunc("PUT /api/v1/links/{id}", lh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", lh.Delete)
	protectedMux.HandleFunc("POST /api/v1/links/{id}/move", lh.Move)
	protectedMux.HandleFunc("POST /api/v1/links/{id}/favorite", lh.ToggleFavorite)
	protectedMux.HandleFunc("GET /api/v1/links/{id}/stats", kh.Stats)

	// Tools
	protectedMux.HandleFunc("POST /api/v1/metadata", limiter.Limit(mh.Fetch))
	protectedMux.HandleFunc("PUT /api/v1/site-config", sh.UpdateConfig)
	protectedMux.HandleFunc("GET /api/v1/export", sh.Export)
	protectedMux.HandleFunc("POST /api/v1/import", sh.Import)

	// Since protectedMux contains the full paths, this works for dispatching.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.RequestLogger(mux)
}
