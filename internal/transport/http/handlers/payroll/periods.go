package payrollhandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/audit"
	"payrun/internal/domain/payroll"
	"payrun/internal/export"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

const idempotencyEndpoint = "payroll.periods.save"

type savePeriodPayload struct {
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	PaymentDate string        `json:"paymentDate"`
	Status      string        `json:"status"`
	Items       []itemPayload `json:"items"`
}

type savedPeriod struct {
	ID           string              `json:"id"`
	Label        string              `json:"label"`
	SuccessCount int                 `json:"successCount"`
	FailureCount int                 `json:"failureCount"`
	Errors       []payroll.ItemError `json:"errors"`
}

type periodView struct {
	payroll.PeriodWithEntries
	Label string `json:"label"`
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Service.ListPeriods(r.Context())
	if err != nil {
		h.failDomain(w, r, err, "payroll_periods_failed", "failed to list payroll periods")
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	start := min(page.Offset, len(periods))
	end := min(start+page.Limit, len(periods))
	api.Success(w, periods[start:end], middleware.GetRequestID(r.Context()))
}

// handleSavePeriod computes the submitted items and stores the successful
// results as one period. Failed items are reported, not stored. An
// Idempotency-Key header makes retries replay the first response.
func (h *Handler) handleSavePeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.failPayload(w, r, err)
		return
	}

	userID := actorID(r)
	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" {
		stored, found, err := h.Idempotency.Check(userID, idempotencyEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", reqID)
			return
		}
		if found {
			api.Created(w, stored, reqID)
			return
		}
	}

	var payload savePeriodPayload
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&payload); err != nil {
		h.failPayload(w, r, err)
		return
	}
	v := shared.NewValidator()
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	paid, _ := v.Date("paymentDate", payload.PaymentDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Enum("status", payload.Status, payroll.PeriodStatuses, "must be a known payroll status")
	if v.Reject(w, reqID) {
		return
	}

	items, err := toItems(payload.Items)
	if err != nil {
		h.failDomain(w, r, err, "payroll_save_failed", "failed to save payroll period")
		return
	}
	batch, err := h.Service.ProcessBatch(r.Context(), items)
	if err != nil {
		h.failDomain(w, r, err, "payroll_save_failed", "failed to save payroll period")
		return
	}
	h.recordBatch(batch)

	id, err := h.Service.SaveRun(r.Context(), payroll.PeriodRequest{
		StartDate:   start,
		EndDate:     end,
		PaymentDate: paid,
		Status:      payroll.PeriodStatus(payload.Status),
	}, batch)
	if err != nil {
		h.failDomain(w, r, err, "payroll_save_failed", "failed to save payroll period")
		return
	}

	h.recordAudit(r, audit.ActionPeriodSave, "payroll_period", id, map[string]any{
		"status":  payroll.PeriodStatus(payload.Status),
		"entries": batch.SuccessCount,
	})

	response := savedPeriod{
		ID:           id,
		Label:        payroll.PeriodLabel(start, end),
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Errors:       batch.Errors,
	}
	if idempotencyKey != "" {
		encoded, err := json.Marshal(response)
		if err == nil {
			err = h.Idempotency.Save(userID, idempotencyEndpoint, idempotencyKey, requestHash, encoded)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", reqID)
		}
	}
	api.Created(w, response, reqID)
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Service.Fetch(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		h.failDomain(w, r, err, "payroll_period_failed", "failed to load payroll period")
		return
	}
	api.Success(w, periodView{
		PeriodWithEntries: period,
		Label:             payroll.PeriodLabel(period.StartDate, period.EndDate),
	}, middleware.GetRequestID(r.Context()))
}

// handleExportPeriod renders into a buffer first so a failed render still
// gets a JSON error instead of a truncated file.
func (h *Handler) handleExportPeriod(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_format", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	period, err := h.Service.Fetch(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		h.failDomain(w, r, err, "export_failed", "failed to load payroll period")
		return
	}

	report := export.ReportFromPeriod(period)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, report); err != nil {
		h.failDomain(w, r, err, "export_failed", "failed to export payroll period")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(report, format))
	_, _ = w.Write(buf.Bytes())
}
