package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

type SiteHandler struct {
	config   ports.SiteConfigService
	transfer ports.TransferService
	logger   *zap.Logger
}

func NewSiteHandler(config ports.SiteConfigService, transfer ports.TransferService, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{config: config, transfer: transfer, logger: logger}
}

func (h *SiteHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.GetSiteConfig(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SiteHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req domain.SiteConfig
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg, err := h.config.UpdateSiteConfig(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Export downloads every category and link as JSON.
func (h *SiteHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.transfer.Export(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="links-export.json"`)
	writeJSON(w, http.StatusOK, data)
}

func (h *SiteHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req domain.Export
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.transfer.Import(r.Context(), &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"categories": len(req.Categories),
		"links":      len(req.Links),
	})
}
