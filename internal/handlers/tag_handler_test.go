package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonblog/backend/internal/models"
)

func listTags(t *testing.T, h *TagHandler, p *models.Principal) []models.TagView {
	t.Helper()
	rec := httptest.NewRecorder()
	h.List(rec, requestAs(http.MethodGet, "/tag/list", nil, p))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, 0, env.Code)
	var data struct {
		Tags []models.TagView `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Tags
}

func TestTagCreateAndVisibility(t *testing.T) {
	t.Parallel()
	store := newFakeTagStore()
	h := NewTagHandler(store)

	rec := httptest.NewRecorder()
	h.Create(rec, requestAs(http.MethodPost, "/tag", tagRequest{Name: "  golang  "}, writerPrincipal()))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, 0, env.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	stored := store.tags[created.ID]
	require.NotNil(t, stored)
	require.Equal(t, "golang", stored.Name)
	require.Equal(t, models.StatusPending, stored.Status)
	require.Equal(t, "writer", stored.Author)

	// Pending tags are listed only for the owner and admins.
	require.Len(t, listTags(t, h, writerPrincipal()), 1)
	require.Empty(t, listTags(t, h, readerPrincipal()))
	require.Empty(t, listTags(t, h, nil))
	require.Len(t, listTags(t, h, adminPrincipal()), 1)

	// An admin creation goes live immediately.
	rec = httptest.NewRecorder()
	h.Create(rec, requestAs(http.MethodPost, "/tag", tagRequest{Name: "news"}, adminPrincipal()))
	require.Equal(t, 0, decodeEnvelope(t, rec).Code)
	views := listTags(t, h, nil)
	require.Len(t, views, 1)
	require.Equal(t, "news", views[0].Name)
}

func TestTagCreateDuplicate(t *testing.T) {
	t.Parallel()
	store := newFakeTagStore()
	store.tags["tag-go"] = &models.Tag{ID: "tag-go", Name: "go", Author: "someone", Status: models.StatusApproved}
	h := NewTagHandler(store)

	rec := httptest.NewRecorder()
	h.Create(rec, requestAs(http.MethodPost, "/tag", tagRequest{Name: "go"}, writerPrincipal()))
	require.Equal(t, models.WarnGeneral, decodeEnvelope(t, rec).Code)
	require.Len(t, store.tags, 1)
}

func TestTagUpdate(t *testing.T) {
	t.Parallel()
	store := newFakeTagStore()
	store.tags["tag-1"] = &models.Tag{ID: "tag-1", Name: "go", Author: "writer", Status: models.StatusPending}
	store.tags["tag-2"] = &models.Tag{ID: "tag-2", Name: "rust", Author: "other", Status: models.StatusApproved}
	h := NewTagHandler(store)

	// Owner renames; a rename collision with another live tag is refused.
	rec := httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/tag", tagRequest{ID: "tag-1", Name: "rust"}, writerPrincipal()))
	require.Equal(t, models.WarnGeneral, decodeEnvelope(t, rec).Code)

	rec = httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/tag", tagRequest{ID: "tag-1", Name: "golang"}, writerPrincipal()))
	require.Equal(t, 0, decodeEnvelope(t, rec).Code)
	require.Equal(t, "golang", store.tags["tag-1"].Name)
	// A non-admin rename cannot change the moderation status.
	require.Equal(t, models.StatusPending, store.tags["tag-1"].Status)

	// A stranger cannot rename someone else's tag.
	rec = httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/tag", tagRequest{ID: "tag-1", Name: "stolen"}, readerPrincipal()))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// An admin rename may approve in the same call.
	approved := models.StatusApproved
	rec = httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/tag", tagRequest{ID: "tag-1", Name: "go2", Status: &approved}, adminPrincipal()))
	require.Equal(t, 0, decodeEnvelope(t, rec).Code)
	require.Equal(t, "go2", store.tags["tag-1"].Name)
	require.Equal(t, models.StatusApproved, store.tags["tag-1"].Status)
}

func TestTagDelete(t *testing.T) {
	t.Parallel()
	store := newFakeTagStore()
	store.tags["tag-1"] = &models.Tag{ID: "tag-1", Name: "go", Author: "writer", Status: models.StatusApproved}
	h := NewTagHandler(store)

	rec := httptest.NewRecorder()
	h.Delete(rec, requestAs(http.MethodDelete, "/tag?id=tag-1", nil, readerPrincipal()))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, store.tags["tag-1"].IsDelete)

	rec = httptest.NewRecorder()
	h.Delete(rec, requestAs(http.MethodDelete, "/tag?id=tag-1", nil, writerPrincipal()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, decodeEnvelope(t, rec).Code)
	require.True(t, store.tags["tag-1"].IsDelete)
}

func TestTagAudit(t *testing.T) {
	t.Parallel()
	store := newFakeTagStore()
	store.tags["tag-1"] = &models.Tag{ID: "tag-1", Name: "go", Author: "writer", Status: models.StatusPending}
	h := NewTagHandler(store)

	rec := httptest.NewRecorder()
	h.Audit(rec, requestAs(http.MethodPost, "/tag/audit", auditTagRequest{ID: "tag-1", Status: models.StatusApproved}, writerPrincipal()))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.Audit(rec, requestAs(http.MethodPost, "/tag/audit", auditTagRequest{ID: "tag-1", Status: models.StatusApproved}, adminPrincipal()))
	require.Equal(t, 0, decodeEnvelope(t, rec).Code)
	require.Equal(t, models.StatusApproved, store.tags["tag-1"].Status)

	rec = httptest.NewRecorder()
	h.Audit(rec, requestAs(http.MethodPost, "/tag/audit", auditTagRequest{ID: "missing", Status: models.StatusBanned}, adminPrincipal()))
	require.Equal(t, models.WarnGeneral, decodeEnvelope(t, rec).Code)
}
