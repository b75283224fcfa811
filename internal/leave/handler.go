package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateRequest(ctx context.Context, dto CreateRequestDTO) (*Request, error)
	Approve(ctx context.Context, id string, dto DecisionDTO) (*Request, error)
	Reject(ctx context.Context, id string, dto DecisionDTO) (*Request, error)
	Cancel(ctx context.Context, id string) (*Request, error)
	Get(ctx context.Context, id string) (*Request, error)
	ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Request, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, error)
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
	var dto CreateRequestDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.CreateRequest(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var dto DecisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var dto DecisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ListByGuard(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	reqs, err := h.Service.ListByGuard(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leave_requests": reqs,
		"limit":          limit,
		"offset":         offset,
	})
}

func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "PENDING"
	}

	reqs, err := h.Service.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leave_requests": reqs,
		"limit":          limit,
		"offset":         offset,
	})
}
