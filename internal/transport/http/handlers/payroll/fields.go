package payrollhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/audit"
	"payrun/internal/domain/payroll"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

type fieldPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	DefaultValue *string `json:"defaultValue"`
}

type fieldPatchPayload struct {
	Name         *string `json:"name"`
	Kind         *string `json:"kind"`
	DefaultValue *string `json:"defaultValue"`
}

func (h *Handler) handleListFields(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Registry().List(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateField(w http.ResponseWriter, r *http.Request) {
	var payload fieldPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.failPayload(w, r, err)
		return
	}
	field, err := h.Service.Registry().Add(payroll.CustomField{
		ID:           payload.ID,
		Name:         payload.Name,
		Kind:         payroll.FieldKind(payload.Kind),
		DefaultValue: payload.DefaultValue,
	})
	if err != nil {
		h.failDomain(w, r, err, "field_create_failed", "failed to create custom field")
		return
	}
	h.recordAudit(r, audit.ActionFieldCreate, "custom_field", field.ID, field)
	api.Created(w, field, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var payload fieldPatchPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.failPayload(w, r, err)
		return
	}
	patch := payroll.FieldPatch{Name: payload.Name, DefaultValue: payload.DefaultValue}
	if payload.Kind != nil {
		kind := payroll.FieldKind(*payload.Kind)
		patch.Kind = &kind
	}
	field, err := h.Service.Registry().Update(chi.URLParam(r, "fieldID"), patch)
	if err != nil {
		h.failDomain(w, r, err, "field_update_failed", "failed to update custom field")
		return
	}
	h.recordAudit(r, audit.ActionFieldUpdate, "custom_field", field.ID, field)
	api.Success(w, field, middleware.GetRequestID(r.Context()))
}

// handleDeleteField is idempotent: removing an unknown id still succeeds.
func (h *Handler) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")
	h.Service.Registry().Remove(fieldID)
	h.recordAudit(r, audit.ActionFieldDelete, "custom_field", fieldID, nil)
	w.WriteHeader(http.StatusNoContent)
}
