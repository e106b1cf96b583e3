package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/ports"
)

type ClickHandler struct {
	clicks   ports.ClickService
	links    ports.LinkService
	recorder ports.ClickRecorder
	logger   *zap.Logger
}

func NewClickHandler(clicks ports.ClickService, links ports.LinkService, recorder ports.ClickRecorder, logger *zap.Logger) *ClickHandler {
	return &ClickHandler{clicks: clicks, links: links, recorder: recorder, logger: logger}
}

// TrackRequest payload
type TrackRequest struct {
	LinkID string `json:"linkId"`
}

// Track accepts a click beacon. Recording happens in the background and
// never fails the caller once a link id is given.
func (h *ClickHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LinkID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "linkId is required"})
		return
	}

	h.recorder.Record(req.LinkID, r.Referer(), r.UserAgent(), ClientIP(r))
	writeJSON(w, http.StatusAccepted, map[string]bool{"success": true})
}

// Redirect sends the browser to the link URL
func (h *ClickHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Track visit only if query param "no_stat" is not set
	if r.URL.Query().Get("no_stat") == "" {
		h.recorder.Record(link.ID, r.Referer(), r.UserAgent(), ClientIP(r))
	}

	http.Redirect(w, r, link.URL, http.StatusFound)
}

func (h *ClickHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.clicks.GetLinkStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ClickHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.clicks.GetDashboard(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
