package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// ContentHandler serves one content type: admin CRUD plus the published
// listing the marketing site renders.
type ContentHandler[T content.Record[T]] struct {
	repo   content.Repository[T]
	logger *logging.Logger
}

// NewContentHandler creates a content handler over repo.
func NewContentHandler[T content.Record[T]](repo content.Repository[T], logger *logging.Logger) *ContentHandler[T] {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContentHandler[T]{repo: repo, logger: logger}
}

// AdminRoutes mounts list, get, create, patch and delete.
func (h *ContentHandler[T]) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Delete)
	return r
}

// List returns all records, drafts included.
func (h *ContentHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListPublished returns published records only.
func (h *ContentHandler[T]) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ContentHandler[T]) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	entries, err := h.repo.List(r.Context(), content.ListOptions{
		PublishedOnly: publishedOnly,
		Limit:         queryInt(r, "limit", 0),
		Offset:        queryInt(r, "offset", 0),
	})
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if entries == nil {
		entries = []content.Entry[T]{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

// Get returns one record by id.
func (h *ContentHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	entry, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GetPublishedBySlug returns a published record by slug; drafts are 404.
func (h *ContentHandler[T]) GetPublishedBySlug(w http.ResponseWriter, r *http.Request) {
	entry, err := h.repo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, "get by slug", err)
		return
	}
	if !entry.Data.IsPublished() {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Create stores a new record.
func (h *ContentHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := decodeJSON(w, r, &rec); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := h.repo.Create(r.Context(), rec)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Patch applies a merge patch (or a JSON Patch when the content type says
// so) to the stored record.
func (h *ContentHandler[T]) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	current, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	patched, err := content.ApplyPatch(current.Data, mediaType, body)
	if err != nil {
		h.fail(w, "patch", err)
		return
	}
	entry, err := h.repo.Update(r.Context(), id, patched)
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete removes a record.
func (h *ContentHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler[T]) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, content.ErrSlugTaken):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, content.ErrInvalid):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		var zero T
		h.logger.Error("content operation failed", "kind", zero.Kind(), "op", op, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
