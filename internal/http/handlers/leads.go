package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// LeadSubmitter delivers a validated form. *delivery.Pipeline satisfies it.
type LeadSubmitter interface {
	Submit(ctx context.Context, serviceID string, state forms.State) delivery.Result
}

// LeadsHandler accepts completed quote requests.
type LeadsHandler struct {
	registry  *forms.Registry
	submitter LeadSubmitter
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

// NewLeadsHandler creates a lead submission handler.
func NewLeadsHandler(registry *forms.Registry, submitter LeadSubmitter, m *metrics.LeadMetrics, logger *logging.Logger) *LeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadsHandler{registry: registry, submitter: submitter, metrics: m, logger: logger}
}

// SubmitResponse mirrors delivery.Result and adds field errors when the
// server-side validation rejects the form.
type SubmitResponse struct {
	delivery.Result
	Errors forms.Errors `json:"errors,omitempty"`
}

// Submit re-validates both steps and hands the form to the delivery chain.
// POST /api/leads/{serviceID}
func (h *LeadsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	cfg, ok := h.registry.Lookup(serviceID)
	if !ok {
		writeJSON(w, http.StatusNotFound, SubmitResponse{Result: delivery.Result{Error: "unknown service: " + serviceID}})
		return
	}

	var req ValuesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Values == nil {
		req.Values = forms.State{}
	}

	errs := forms.Errors{}
	for _, idx := range []forms.StepIndex{forms.StepServiceDetails, forms.StepContact} {
		stepErrs, err := forms.ValidateStep(cfg, idx, req.Values)
		if err != nil {
			h.logger.Error("lead validation failed", "service", serviceID, "error", err)
			jsonError(w, "validation failed", http.StatusInternalServerError)
			return
		}
		if len(stepErrs) > 0 {
			h.metrics.ObserveValidationFailure(serviceID, idx.Label())
		}
		for name, msg := range stepErrs {
			errs[name] = msg
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, SubmitResponse{
			Result: delivery.Result{Error: "Please correct the highlighted fields"},
			Errors: errs,
		})
		return
	}

	result := h.submitter.Submit(r.Context(), serviceID, req.Values)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, SubmitResponse{Result: result})
}
