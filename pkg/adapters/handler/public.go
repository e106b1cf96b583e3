package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

// PublicHandler serves the read-only pages visitors see.
type PublicHandler struct {
	categories ports.CategoryService
	links      ports.LinkService
	config     ports.SiteConfigService
	mw         *Middleware
	logger     *zap.Logger
}

func NewPublicHandler(categories ports.CategoryService, links ports.LinkService, config ports.SiteConfigService, mw *Middleware, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{categories: categories, links: links, config: config, mw: mw, logger: logger}
}

// HomeResponse is everything the home page renders
type HomeResponse struct {
	SiteConfig domain.SiteConfig `json:"site_config"`
	Categories []domain.Category `json:"categories"`
	LoggedIn   bool              `json:"logged_in"`
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.GetSiteConfig(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	categories, err := h.categories.ListCategories(r.Context(), true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	_, loggedIn := h.mw.CurrentUser(r)

	writeJSON(w, http.StatusOK, HomeResponse{
		SiteConfig: cfg,
		Categories: categories,
		LoggedIn:   loggedIn,
	})
}

func (h *PublicHandler) Category(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetCategoryBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": links})
}
