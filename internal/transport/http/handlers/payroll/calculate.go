package payrollhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payroll"
	"payrun/internal/platform/jobs"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

type batchPayload struct {
	Items []itemPayload `json:"items"`
}

func strict(r *http.Request) bool {
	return r.URL.Query().Get("strict") == "true"
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.failPayload(w, r, err)
		return
	}
	item, err := payload.toItem()
	if err != nil {
		h.failDomain(w, r, err, "calculation_failed", "failed to calculate payroll")
		return
	}
	if strict(r) {
		if err := payroll.ValidateItem(item); err != nil {
			h.failDomain(w, r, err, "calculation_failed", "failed to calculate payroll")
			return
		}
	}

	result, err := h.Service.CalculateRaw(item.Values)
	if err != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "calculation_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCalculation()
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

// handleBatch computes a batch inline, or queues it when async=true and a
// job service is configured. With strict=true items failing validation are
// reported per item while the rest are still computed.
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.failPayload(w, r, err)
		return
	}
	items, err := toItems(payload.Items)
	if err != nil {
		h.failDomain(w, r, err, "batch_failed", "failed to process batch")
		return
	}
	if len(items) == 0 {
		h.failDomain(w, r, payroll.NewValidationError("items", "must contain at least one item"), "batch_failed", "failed to process batch")
		return
	}
	process := h.Service.ProcessBatch
	if strict(r) {
		process = h.Service.ProcessBatchStrict
	}

	if r.URL.Query().Get("async") == "true" && h.Jobs != nil {
		run, err := h.Jobs.Enqueue(jobs.JobPayrollBatch, func(ctx context.Context) (any, error) {
			result, err := process(ctx, items)
			if err != nil {
				return nil, err
			}
			h.recordBatch(result)
			return result, nil
		})
		if err != nil {
			if errors.Is(err, jobs.ErrQueueFull) {
				api.Fail(w, http.StatusServiceUnavailable, "queue_full", "batch queue is full, retry later", middleware.GetRequestID(r.Context()))
				return
			}
			h.failDomain(w, r, err, "batch_enqueue_failed", "failed to queue batch")
			return
		}
		w.Header().Set("Location", "/api/v1/payroll/jobs/"+run.ID)
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: run, RequestID: middleware.GetRequestID(r.Context())})
		return
	}

	result, err := process(r.Context(), items)
	if err != nil {
		h.failDomain(w, r, err, "batch_failed", "failed to process batch")
		return
	}
	h.recordBatch(result)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		api.Fail(w, http.StatusNotFound, "job_not_found", "job not found", middleware.GetRequestID(r.Context()))
		return
	}
	run, ok := h.Jobs.Get(chi.URLParam(r, "jobID"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "job_not_found", "job not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}
