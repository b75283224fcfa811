package coverage

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	"github.com/frahmantamala/guard-deployment/internal/transport"
)

type ServiceAPI interface {
	SitesRequiringCoverage(ctx context.Context, day time.Time) ([]Gap, error)
	SitesRequiringCoverageRange(ctx context.Context, from, to time.Time) ([]Gap, error)
	FreeRotatingGuards(ctx context.Context, day time.Time) ([]*guard.Guard, error)
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

// Gaps answers ?date= for one day or ?from=&to= for a range.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") != "" || q.Get("to") != "" {
		h.gapRange(w, r)
		return
	}

	day, err := h.DateParam(r, "date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	gaps, err := h.Service.SitesRequiringCoverage(r.Context(), day)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date": dateutil.Format(day),
		"gaps": gaps,
	})
}

func (h *Handler) gapRange(w http.ResponseWriter, r *http.Request) {
	from, err := h.DateParam(r, "from")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := h.DateParam(r, "to")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	gaps, err := h.Service.SitesRequiringCoverageRange(r.Context(), from, to)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"from": dateutil.Format(from),
		"to":   dateutil.Format(to),
		"gaps": gaps,
	})
}

func (h *Handler) FreeRotating(w http.ResponseWriter, r *http.Request) {
	day, err := h.DateParam(r, "date")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	guards, err := h.Service.FreeRotatingGuards(r.Context(), day)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":   dateutil.Format(day),
		"guards": guards,
	})
}
