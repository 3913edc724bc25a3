package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

func postsRouter(repo content.Repository[content.Post]) http.Handler {
	h := NewContentHandler[content.Post](repo, logging.Default())
	r := chi.NewRouter()
	r.Mount("/admin/posts", h.AdminRoutes())
	r.Get("/api/posts", h.ListPublished)
	r.Get("/api/posts/{slug}", h.GetPublishedBySlug)
	return r
}

func TestContentCreateAndGet(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	router := postsRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/admin/posts", jsonBody(t, map[string]any{
		"title": "Spring Roof Checklist",
		"body":  "Look for missing shingles.",
	}))
	rec := serve(router, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created content.Entry[content.Post]
	decodeBody(t, rec, &created)
	assert.Equal(t, "spring-roof-checklist", created.Data.Slug)
	assert.Equal(t, content.FormatMarkdown, created.Data.Format)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin/posts/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched content.Entry[content.Post]
	decodeBody(t, rec, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestContentCreateInvalid(t *testing.T) {
	router := postsRouter(content.NewMemoryRepository[content.Post]())
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/admin/posts", jsonBody(t, map[string]any{"body": "no title"})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentCreateSlugConflict(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	_, err := repo.Create(context.Background(), content.Post{Title: "Gutter Guide"})
	require.NoError(t, err)

	router := postsRouter(repo)
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/admin/posts", jsonBody(t, map[string]any{"title": "Gutter Guide"})))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestContentMergePatch(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	entry, err := repo.Create(context.Background(), content.Post{Title: "Draft", Body: "text", Tags: []string{"roofing"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/admin/posts/"+entry.ID.String(),
		bytes.NewBufferString(`{"published":true,"tags":null}`))
	req.Header.Set("Content-Type", content.MergePatchContentType)
	rec := serve(postsRouter(repo), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated content.Entry[content.Post]
	decodeBody(t, rec, &updated)
	assert.True(t, updated.Data.Published)
	assert.Empty(t, updated.Data.Tags)
	assert.Equal(t, "Draft", updated.Data.Title)
}

func TestContentJSONPatch(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	entry, err := repo.Create(context.Background(), content.Post{Title: "Draft"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/admin/posts/"+entry.ID.String(),
		bytes.NewBufferString(`[{"op":"replace","path":"/title","value":"Final"}]`))
	req.Header.Set("Content-Type", content.JSONPatchContentType+"; charset=utf-8")
	rec := serve(postsRouter(repo), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated content.Entry[content.Post]
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Final", updated.Data.Title)
}

func TestContentPatchRejectsInvalidResult(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	entry, err := repo.Create(context.Background(), content.Post{Title: "Draft"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/admin/posts/"+entry.ID.String(), bytes.NewBufferString(`{"published":true}`))
	req.Header.Set("Content-Type", content.MergePatchContentType)
	rec := serve(postsRouter(repo), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentDelete(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	entry, err := repo.Create(context.Background(), content.Post{Title: "Old"})
	require.NoError(t, err)
	router := postsRouter(repo)

	rec := serve(router, httptest.NewRequest(http.MethodDelete, "/admin/posts/"+entry.ID.String(), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/admin/posts/"+entry.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin/posts/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentPublicRoutesHideDrafts(t *testing.T) {
	repo := content.NewMemoryRepository[content.Post]()
	ctx := context.Background()
	_, err := repo.Create(ctx, content.Post{Title: "Live Post", Body: "hello", Published: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, content.Post{Title: "Hidden Draft"})
	require.NoError(t, err)
	router := postsRouter(repo)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []content.Entry[content.Post] `json:"items"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "live-post", resp.Items[0].Data.Slug)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/posts/live-post", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/posts/hidden-draft", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Items, 2)
}
