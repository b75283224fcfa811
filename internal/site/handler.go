package site

import (
	"context"
	"net/http"

	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateSiteDTO) (*Site, error)
	Get(ctx context.Context, id string) (*Site, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Site, error)
	UpdateRequirements(ctx context.Context, id string, dto UpdateRequirementsDTO) (*Site, error)
	SetActive(ctx context.Context, id string, active bool) (*Site, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateSiteDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	s, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	activeOnly := r.URL.Query().Get("active") == "true"

	sites, err := h.Service.List(r.Context(), activeOnly, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sites":  sites,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) UpdateRequirements(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRequirementsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	s, err := h.Service.UpdateRequirements(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var dto SetActiveDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	s, err := h.Service.SetActive(r.Context(), chi.URLParam(r, "id"), dto.Active)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, s)
}
