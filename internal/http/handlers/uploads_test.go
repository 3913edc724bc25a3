package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

type fakeUploader struct {
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, contentType string, _ int64, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.contentType = contentType
	f.body, _ = io.ReadAll(body)
	return "https://cdn.example.com/uploads/2026/03/photo.png", nil
}

func multipartRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="photo.png"`, field))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUpload_Success(t *testing.T) {
	up := &fakeUploader{}
	h := NewUploadHandler(up, logging.Default())

	rec := serve(http.HandlerFunc(h.Upload), multipartRequest(t, "file", "image/png", pngHeader))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "https://cdn.example.com/uploads/2026/03/photo.png", resp["url"])
	assert.Equal(t, "image/png", up.contentType)
	assert.Equal(t, pngHeader, up.body)
}

func TestUpload_SniffsMissingContentType(t *testing.T) {
	up := &fakeUploader{}
	h := NewUploadHandler(up, logging.Default())

	rec := serve(http.HandlerFunc(h.Upload), multipartRequest(t, "file", "application/octet-stream", pngHeader))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "image/png", up.contentType)
	assert.Equal(t, pngHeader, up.body)
}

func TestUpload_Errors(t *testing.T) {
	rec := serve(http.HandlerFunc(NewUploadHandler(nil, nil).Upload), multipartRequest(t, "file", "image/png", pngHeader))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := NewUploadHandler(&fakeUploader{}, nil)
	rec = serve(http.HandlerFunc(h.Upload), multipartRequest(t, "image", "image/png", pngHeader))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewUploadHandler(&fakeUploader{err: fmt.Errorf("%w: text/plain", content.ErrUnsupportedMedia)}, nil)
	rec = serve(http.HandlerFunc(h.Upload), multipartRequest(t, "file", "text/plain", []byte("hi")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	h = NewUploadHandler(&fakeUploader{err: errors.New("s3 down")}, nil)
	rec = serve(http.HandlerFunc(h.Upload), multipartRequest(t, "file", "image/png", pngHeader))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
