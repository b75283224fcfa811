package guard

import (
	"context"
	"net/http"

	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	"github.com/frahmantamala/guard-deployment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterGuardDTO) (*Guard, error)
	Get(ctx context.Context, id string) (*Guard, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Guard, error)
	ChangeStatus(ctx context.Context, id string, dto ChangeStatusDTO) (*Guard, error)
	ChangeRole(ctx context.Context, id string, dto ChangeRoleDTO) (*Guard, error)
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterGuardDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		Role:   guardDatamodel.Role(r.URL.Query().Get("role")),
		Status: guardDatamodel.Status(r.URL.Query().Get("status")),
	}

	guards, err := h.Service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"guards": guards,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var dto ChangeStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var dto ChangeRoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.ChangeRole(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}
