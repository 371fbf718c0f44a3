package payrollhandler

import (
	"net/http"

	"payrun/internal/domain/audit"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		api.Success(w, []audit.Event{}, middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	query := r.URL.Query()
	events := h.Audit.List(audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		ActorUser:  query.Get("actor"),
	}, page.Limit, page.Offset)
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
