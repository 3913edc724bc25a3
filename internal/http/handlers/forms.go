package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// FormsHandler serves service form definitions and per-step validation.
type FormsHandler struct {
	registry *forms.Registry
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
}

// NewFormsHandler creates a forms handler.
func NewFormsHandler(registry *forms.Registry, m *metrics.LeadMetrics, logger *logging.Logger) *FormsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FormsHandler{registry: registry, metrics: m, logger: logger}
}

// FormSummary is one entry of the service picker.
type FormSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FormResponse is a service config with its fields split into wizard steps.
type FormResponse struct {
	*forms.ServiceConfig
	Steps [2]forms.Step `json:"steps"`
}

// ValuesRequest carries a form state. Values may be strings or string arrays.
type ValuesRequest struct {
	Values forms.State `json:"values"`
}

// StepValidationResponse reports the outcome of validating one step.
type StepValidationResponse struct {
	Valid         bool         `json:"valid"`
	Errors        forms.Errors `json:"errors"`
	VisibleFields []string     `json:"visibleFields"`
}

// List returns every configured service.
// GET /api/forms
func (h *FormsHandler) List(w http.ResponseWriter, r *http.Request) {
	configs := h.registry.List()
	out := make([]FormSummary, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, FormSummary{ID: cfg.ID, Title: cfg.Title, Description: cfg.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": out})
}

// Get returns one service config with its steps.
// GET /api/forms/{serviceID}
func (h *FormsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.registry.Lookup(chi.URLParam(r, "serviceID"))
	if !ok {
		jsonError(w, "unknown service", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, FormResponse{ServiceConfig: cfg, Steps: forms.Steps(cfg)})
}

// ValidateStep validates the visible fields of one step against the posted values.
// POST /api/forms/{serviceID}/steps/{step}/validate
func (h *FormsHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	cfg, ok := h.registry.Lookup(serviceID)
	if !ok {
		jsonError(w, "unknown service", http.StatusNotFound)
		return
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		jsonError(w, "step must be 0 or 1", http.StatusBadRequest)
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

	idx := forms.StepIndex(step)
	errs, err := forms.ValidateStep(cfg, idx, req.Values)
	if errors.Is(err, forms.ErrInvalidStep) {
		jsonError(w, "step must be 0 or 1", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("validate step failed", "service", serviceID, "step", step, "error", err)
		jsonError(w, "validation failed", http.StatusInternalServerError)
		return
	}

	fields, _ := forms.StepFields(cfg, idx)
	visible := forms.VisibleFields(fields, req.Values)
	names := make([]string, 0, len(visible))
	for _, f := range visible {
		names = append(names, f.Name)
	}

	resp := StepValidationResponse{Valid: len(errs) == 0, Errors: errs, VisibleFields: names}
	if !resp.Valid {
		h.metrics.ObserveValidationFailure(serviceID, idx.Label())
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
