package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jsonblog/backend/internal/middleware"
	"github.com/jsonblog/backend/internal/models"
	"github.com/jsonblog/backend/internal/services"
)

type TagHandler struct {
	tags TagStore
}

func NewTagHandler(tags TagStore) *TagHandler {
	return &TagHandler{tags: tags}
}

type tagRequest struct {
	ID     string                   `json:"id,omitempty"`
	Name   string                   `json:"name"`
	Status *models.ModerationStatus `json:"status,omitempty"`
}

// Create adds a tag. Non-admin creations await review and stay invisible to
// third parties until approved.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.Role.CanAuthor() {
		sendForbidden(w)
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	name := strings.TrimSpace(req.Name)
	if reason := models.CheckTagName(name); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if _, err := h.tags.FindByName(ctx, name); err == nil {
		sendWarning(w, "tag already exists", models.WarnGeneral)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		sendError(w, "tag creation failed", http.StatusInternalServerError)
		return
	}

	id, err := h.tags.Create(ctx, &models.Tag{
		Name:   name,
		Author: p.ID,
		Status: models.InitialStatus(p),
	})
	if err != nil {
		log.Printf("[tag] create failed author=%s err=%v", p.ID, err)
		sendError(w, "tag creation failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"id": id})
}

// Update renames a tag (owner or admin). Only admins may change the
// moderation status alongside the rename.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	name := strings.TrimSpace(req.Name)
	if reason := models.CheckTagName(name); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if !p.IsAdmin {
		tag, err := h.tags.FindByID(ctx, req.ID)
		if err != nil {
			sendWarning(w, "tag not found", models.WarnGeneral)
			return
		}
		if tag.Author != p.ID {
			sendForbidden(w)
			return
		}
	}

	if existing, err := h.tags.FindByName(ctx, name); err == nil && existing.ID != req.ID {
		sendWarning(w, "tag already exists", models.WarnGeneral)
		return
	} else if err != nil && !errors.Is(err, services.ErrNotFound) {
		sendError(w, "tag update failed", http.StatusInternalServerError)
		return
	}

	var status *models.ModerationStatus
	if p.IsAdmin && req.Status != nil && req.Status.Valid() {
		status = req.Status
	}
	if err := h.tags.UpdateName(ctx, req.ID, name, status); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "tag not found", models.WarnGeneral)
			return
		}
		sendError(w, "tag update failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// Delete soft-deletes a tag (owner or admin).
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id := r.URL.Query().Get("id")

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if !p.IsAdmin {
		tag, err := h.tags.FindByID(ctx, id)
		if err != nil || tag.Author != p.ID {
			sendError(w, "deletion failed, permission denied", http.StatusForbidden)
			return
		}
	}

	if err := h.tags.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "tag not found", models.WarnGeneral)
			return
		}
		sendError(w, "tag deletion failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// List returns the tags visible to the caller. Anonymous viewers see only
// approved tags; the filter runs in the store.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	tags, err := h.tags.Find(ctx, services.VisibilityFilter(p))
	if err != nil {
		log.Printf("[tag] list failed err=%v", err)
		sendError(w, "tag listing failed", http.StatusInternalServerError)
		return
	}

	views := make([]models.TagView, 0, len(tags))
	for i := range tags {
		views = append(views, models.TagViewFor(&tags[i], p))
	}
	sendSuccess(w, map[string]interface{}{"tags": views})
}

type auditTagRequest struct {
	ID     string                  `json:"id"`
	Status models.ModerationStatus `json:"status"`
}

// Audit moves a tag to a new moderation status (admin only).
func (h *TagHandler) Audit(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req auditTagRequest
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

	if err := h.tags.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendWarning(w, "tag not found", models.WarnGeneral)
			return
		}
		sendError(w, "tag audit failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}
