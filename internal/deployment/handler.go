package deployment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Deploy(ctx context.Context, dto DeployDTO) (*Deployment, error)
	EndDeployment(ctx context.Context, guardID string, dto EndDeploymentDTO) error
	CurrentDeployment(ctx context.Context, guardID string) (*Deployment, error)
	HistoryByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Deployment, error)
	HistoryBySite(ctx context.Context, siteID string, limit, offset int) ([]*Deployment, error)
	AuditTrail(ctx context.Context, guardID string, limit, offset int) ([]*AuditEntry, error)
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

func (h *Handler) Deploy(w http.ResponseWriter, r *http.Request) {
	var dto DeployDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	d, err := h.Service.Deploy(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) EndDeployment(w http.ResponseWriter, r *http.Request) {
	var dto EndDeploymentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.EndDeployment(r.Context(), chi.URLParam(r, "id"), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.CurrentDeployment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deployment": d,
	})
}

func (h *Handler) HistoryByGuard(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	rows, err := h.Service.HistoryByGuard(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deployments": rows,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) HistoryBySite(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	rows, err := h.Service.HistoryBySite(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deployments": rows,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	rows, err := h.Service.AuditTrail(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audit":  rows,
		"limit":  limit,
		"offset": offset,
	})
}
