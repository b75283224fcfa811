package rotation

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	AssignCoverage(ctx context.Context, dto AssignCoverageDTO) (*Assignment, error)
	Cancel(ctx context.Context, id string) (*Assignment, error)
	CompleteExpired(ctx context.Context, today time.Time) (int, error)
	ActivateStarted(ctx context.Context, today time.Time) (int, error)
	Get(ctx context.Context, id string) (*Assignment, error)
	ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Assignment, error)
	ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*Assignment, error)
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

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var dto AssignCoverageDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	a, err := h.Service.AssignCoverage(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

// CompleteExpired runs the maintenance pass for ?today=, defaulting to the current date.
func (h *Handler) CompleteExpired(w http.ResponseWriter, r *http.Request) {
	today, err := h.DateParam(r, "today")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	completed, err := h.Service.CompleteExpired(r.Context(), today)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	activated, err := h.Service.ActivateStarted(r.Context(), today)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"today":     dateutil.Format(today),
		"completed": completed,
		"activated": activated,
	})
}

func (h *Handler) ListByGuard(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	rows, err := h.Service.ListByGuard(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": rows,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) ListBySite(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)

	rows, err := h.Service.ListBySite(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": rows,
		"limit":       limit,
		"offset":      offset,
	})
}
