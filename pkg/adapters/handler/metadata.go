package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/ports"
)

type MetadataHandler struct {
	fetcher ports.MetadataFetcher
	logger  *zap.Logger
}

func NewMetadataHandler(fetcher ports.MetadataFetcher, logger *zap.Logger) *MetadataHandler {
	return &MetadataHandler{fetcher: fetcher, logger: logger}
}

// MetadataRequest payload
type MetadataRequest struct {
	URL string `json:"url"`
}

// Fetch scrapes the page for the link form. Upstream failures come back as
// a single 502 so the form keeps what the user typed.
func (h *MetadataHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req MetadataRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	md, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}
