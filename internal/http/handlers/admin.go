package handlers

import (
	"net/http"

	"github.com/wolfman30/contractor-leads/internal/delivery"
	httpmiddleware "github.com/wolfman30/contractor-leads/internal/http/middleware"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// AdminHandler exposes delivery diagnostics to the dashboard.
type AdminHandler struct {
	history delivery.History
	queue   delivery.Queue
	logger  *logging.Logger
}

// NewAdminHandler creates an admin handler. Either collaborator may be nil.
func NewAdminHandler(history delivery.History, queue delivery.Queue, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{history: history, queue: queue, logger: logger}
}

// Session confirms the bearer token is valid.
// GET /admin/session
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpmiddleware.AdminClaimsFromContext(r.Context())
	if !ok {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	resp := map[string]any{
		"authenticated": true,
		"subject":       claims.Subject,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

// Submissions returns the most recent submission attempts.
// GET /admin/submissions?limit=10
func (h *AdminHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	records := []delivery.Record{}
	if h.history != nil {
		recent, err := h.history.Recent(r.Context(), queryInt(r, "limit", delivery.DefaultHistoryLimit))
		if err != nil {
			h.logger.Error("failed to read submission history", "error", err)
			jsonError(w, "failed to read history", http.StatusInternalServerError)
			return
		}
		if recent != nil {
			records = recent
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": records})
}

// Queue lists leads parked in the fallback queue, most recent first.
// GET /admin/queue?limit=50
func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	entries := []delivery.QueuedLead{}
	var depth int64
	if h.queue != nil {
		listed, err := h.queue.List(r.Context(), queryInt(r, "limit", delivery.DefaultQueueListLimit))
		if err != nil {
			h.logger.Error("failed to list queued leads", "error", err)
			jsonError(w, "failed to list queue", http.StatusInternalServerError)
			return
		}
		if listed != nil {
			entries = listed
		}
		if depth, err = h.queue.Len(r.Context()); err != nil {
			h.logger.Warn("failed to read queue depth", "error", err)
			depth = int64(len(entries))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"depth": depth, "leads": entries})
}
