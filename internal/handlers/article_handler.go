package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jsonblog/backend/internal/middleware"
	"github.com/jsonblog/backend/internal/models"
	"github.com/jsonblog/backend/internal/services"
)

type ArticleHandler struct {
	articles    ArticleStore
	users       UserStore
	tags        TagStore
	directories DirectoryStore
}

func NewArticleHandler(articles ArticleStore, users UserStore, tags TagStore, directories DirectoryStore) *ArticleHandler {
	return &ArticleHandler{articles: articles, users: users, tags: tags, directories: directories}
}

// Create publishes a new article. Admin-equivalent authors go live
// immediately; everyone else starts in review.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.Role.CanAuthor() {
		sendForbidden(w)
		return
	}

	var in models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	if reason := in.Check(); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	article := &models.Article{
		Author:      p.ID,
		Title:       in.Title,
		Content:     in.Content,
		Description: in.Description,
		Picture:     in.Picture,
		Tags:        in.Tags,
		DirectoryID: in.DirectoryID,
		IsPublic:    true,
		Status:      models.InitialStatus(p),
	}
	if in.IsPublic != nil {
		article.IsPublic = *in.IsPublic
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	id, err := h.articles.Create(ctx, article)
	if err != nil {
		log.Printf("[article] create failed author=%s err=%v", p.ID, err)
		sendError(w, "article creation failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"id": id})
}

// Update edits an article. Only the owner or an admin may edit; edits do
// not reset the moderation status.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var in models.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	if reason := in.Check(); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	article, err := h.articles.FindByID(ctx, in.ID)
	if err != nil {
		sendWarning(w, "article not found", models.WarnGeneral)
		return
	}
	if !p.IsAdmin && article.Author != p.ID {
		sendForbidden(w)
		return
	}

	if err := h.articles.Update(ctx, in.ID, &in); err != nil {
		log.Printf("[article] update failed id=%s err=%v", in.ID, err)
		sendError(w, "article update failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// Delete soft-deletes an article (owner or admin).
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id := r.URL.Query().Get("id")

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	article, err := h.articles.FindByID(ctx, id)
	if err != nil {
		sendWarning(w, "article not found", models.WarnGeneral)
		return
	}
	if !p.IsAdmin && article.Author != p.ID {
		sendForbidden(w)
		return
	}

	if err := h.articles.SoftDelete(ctx, id); err != nil {
		sendError(w, "article deletion failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// List returns a page of articles the caller may see. The visibility rule
// is pushed down into the store filter, never applied in memory.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size < 1 {
		size = 10
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	articles, err := h.articles.Find(ctx, services.VisibilityFilter(p), int64((page-1)*size), int64(size))
	if err != nil {
		log.Printf("[article] list failed err=%v", err)
		sendError(w, "article listing failed", http.StatusInternalServerError)
		return
	}

	authorIDs := make([]string, 0, len(articles))
	var tagIDs, dirIDs []string
	for _, a := range articles {
		authorIDs = append(authorIDs, a.Author)
		tagIDs = append(tagIDs, a.Tags...)
		if a.DirectoryID != "" {
			dirIDs = append(dirIDs, a.DirectoryID)
		}
	}
	authors, err := h.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		sendError(w, "article listing failed", http.StatusInternalServerError)
		return
	}
	tags, err := h.tags.FindByIDs(ctx, tagIDs)
	if err != nil {
		sendError(w, "article listing failed", http.StatusInternalServerError)
		return
	}
	dirs, err := h.directories.FindByIDs(ctx, dirIDs)
	if err != nil {
		sendError(w, "article listing failed", http.StatusInternalServerError)
		return
	}

	views := make([]models.ArticleView, 0, len(articles))
	for i := range articles {
		views = append(views, models.ArticleViewFor(&articles[i], p, authors, tags, dirs))
	}
	sendSuccess(w, map[string]interface{}{"articles": views})
}

type reviewArticleRequest struct {
	ID     string                  `json:"id"`
	Status models.ModerationStatus `json:"status"`
}

// Review moves an article to a new moderation status (admin only). Every
// status is reachable from every other so moderation can be rolled back.
func (h *ArticleHandler) Review(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req reviewArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	if !req.Status.Valid() {
		sendWarning(w, "unknown status", models.WarnGeneral)
		return
	}
	if !models.CanTransition(p, req.Status) {
		sendForbidden(w)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.articles.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "article not found", models.WarnGeneral)
			return
		}
		sendError(w, "article review failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}
