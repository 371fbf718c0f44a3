package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/audit"
	"payrun/internal/domain/auth"
	"payrun/internal/domain/payroll"
	"payrun/internal/importer"
	"payrun/internal/platform/jobs"
	"payrun/internal/platform/metrics"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

type Handler struct {
	Service     *payroll.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Collector
	Idempotency *middleware.IdempotencyStore
	Audit       *audit.Service
	Perms       middleware.PermissionStore
}

func NewHandler(service *payroll.Service, jobService *jobs.Service, collector *metrics.Collector, idem *middleware.IdempotencyStore, auditService *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{
		Service:     service,
		Jobs:        jobService,
		Metrics:     collector,
		Idempotency: idem,
		Audit:       auditService,
		Perms:       perms,
	}
}

// RegisterRoutes mounts the payroll API. Reads are open; everything that
// changes state or spends compute sits behind a permission.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/fields", h.handleListFields)
		r.With(middleware.RequirePermission(auth.PermPayrollFields, h.Perms)).Post("/fields", h.handleCreateField)
		r.With(middleware.RequirePermission(auth.PermPayrollFields, h.Perms)).Patch("/fields/{fieldID}", h.handleUpdateField)
		r.With(middleware.RequirePermission(auth.PermPayrollFields, h.Perms)).Delete("/fields/{fieldID}", h.handleDeleteField)

		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/batches", h.handleBatch)
		r.Get("/jobs/{jobID}", h.handleGetJob)

		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/imports", h.handleImport)
		r.Get("/imports/template", h.handleTemplate)

		r.Get("/periods", h.handleListPeriods)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Post("/periods", h.handleSavePeriod)
		r.Get("/periods/{periodID}", h.handleGetPeriod)
		r.Get("/periods/{periodID}/export", h.handleExportPeriod)

		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/audit", h.handleListAudit)
	})
}

// itemPayload accepts amounts as JSON numbers or strings.
type itemPayload struct {
	Name   string         `json:"name"`
	Values map[string]any `json:"values"`
}

func (p itemPayload) toItem() (payroll.BatchItem, error) {
	values := make(map[string]string, len(p.Values))
	for key, raw := range p.Values {
		switch v := raw.(type) {
		case nil:
			values[key] = ""
		case string:
			values[key] = v
		case float64:
			values[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			values[key] = strconv.FormatBool(v)
		default:
			return payroll.BatchItem{}, payroll.NewValidationError(key, "must be a number or string")
		}
	}
	return payroll.BatchItem{Name: p.Name, Values: values}, nil
}

func toItems(payloads []itemPayload) ([]payroll.BatchItem, error) {
	items := make([]payroll.BatchItem, 0, len(payloads))
	for i, p := range payloads {
		item, err := p.toItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (h *Handler) failPayload(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", reqID)
		return
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
}

// failDomain maps domain errors onto the response envelope.
func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	var validation *payroll.ValidationError
	var importErr *importer.ImportFormatError
	switch {
	case errors.As(err, &validation):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "validation_error", "payload validation failed", map[string]any{"fields": validation.Issues}, reqID)
	case errors.As(err, &importErr):
		api.Fail(w, http.StatusBadRequest, "invalid_import", importErr.Error(), reqID)
	case errors.Is(err, payroll.ErrDuplicateField):
		api.Fail(w, http.StatusConflict, "field_exists", err.Error(), reqID)
	case errors.Is(err, payroll.ErrFieldNotFound):
		api.Fail(w, http.StatusNotFound, "field_not_found", "custom field not found", reqID)
	case errors.Is(err, payroll.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "payroll period not found", reqID)
	default:
		slog.Error(message, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func (h *Handler) recordBatch(result payroll.BatchResult) {
	if h.Metrics != nil {
		h.Metrics.RecordBatch(result.SuccessCount, result.FailureCount)
	}
}

func actorID(r *http.Request) string {
	if user, ok := middleware.GetUser(r.Context()); ok {
		return user.UserID
	}
	return "anonymous"
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID(r), action, entityType, entityID, middleware.GetRequestID(r.Context()), after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
