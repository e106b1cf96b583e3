package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

type LinkHandler struct {
	service ports.LinkService
	logger  *zap.Logger
}

func NewLinkHandler(service ports.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{service: service, logger: logger}
}

// MoveRequest payload
type MoveRequest struct {
	CategoryID string `json:"category_id"`
}

// BulkDeleteRequest payload
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.LinkInput
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.CreateLink(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.GetLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}

	filter := domain.LinkFilter{
		CategoryID:  q.Get("category_id"),
		Search:      q.Get("search"),
		Tag:         q.Get("tag"),
		SortByOrder: q.Get("category_id") != "",
	}
	if fav := q.Get("favorite"); fav != "" {
		v := fav == "true"
		filter.Favorite = &v
	}

	links, total, err := h.service.ListLinks(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  links,
		"total": total,
		"page":  page,
	})
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.LinkInput
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.UpdateLink(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLink(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.service.DeleteLinks(r.Context(), req.IDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *LinkHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.service.MoveLink(r.Context(), r.PathValue("id"), req.CategoryID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Reorder persists the link order of the category in the path.
func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReorderLinks(r.Context(), r.PathValue("id"), req.OrderedIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
