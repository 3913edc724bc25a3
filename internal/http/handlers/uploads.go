package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, contentType string, size int64, body io.Reader) (string, error)
}

// UploadHandler accepts image uploads from the content editor.
type UploadHandler struct {
	uploader Uploader
	logger   *logging.Logger
}

// NewUploadHandler creates an upload handler. A nil uploader answers 503.
func NewUploadHandler(uploader Uploader, logger *logging.Logger) *UploadHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &UploadHandler{uploader: uploader, logger: logger}
}

// Upload stores the multipart "file" field.
// POST /admin/uploads
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		jsonError(w, "uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, content.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(content.MaxUploadBytes); err != nil {
		jsonError(w, "file too large or malformed form", http.StatusRequestEntityTooLarge)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := io.ReadFull(file, sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			jsonError(w, "failed to read file", http.StatusBadRequest)
			return
		}
	}

	url, err := h.uploader.Upload(r.Context(), contentType, header.Size, file)
	switch {
	case errors.Is(err, content.ErrUnsupportedMedia):
		jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	case errors.Is(err, content.ErrInvalid):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case err != nil:
		h.logger.Error("upload failed", "error", err, "filename", header.Filename)
		jsonError(w, "upload failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
