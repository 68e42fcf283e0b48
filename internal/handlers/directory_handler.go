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

type DirectoryHandler struct {
	directories DirectoryStore
}

func NewDirectoryHandler(directories DirectoryStore) *DirectoryHandler {
	return &DirectoryHandler{directories: directories}
}

type directoryRequest struct {
	ID       string `json:"id,omitempty"`
	ParentID string `json:"pid,omitempty"`
	Name     string `json:"name"`
}

// Create adds a directory (admin only).
func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.IsAdmin {
		sendForbidden(w)
		return
	}

	var req directoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	name := strings.TrimSpace(req.Name)
	parentID := strings.TrimSpace(req.ParentID)
	if reason := models.CheckDirectoryName(name); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if _, err := h.directories.FindLive(ctx, parentID, name); err == nil {
		sendWarning(w, "directory already exists", models.WarnGeneral)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		sendError(w, "directory creation failed", http.StatusInternalServerError)
		return
	}

	if parentID != "" {
		if _, err := h.directories.FindLiveByID(ctx, parentID); err != nil {
			sendWarning(w, "parent directory does not exist", models.WarnGeneral)
			return
		}
	}

	id, err := h.directories.Create(ctx, &models.Directory{Name: name, ParentID: parentID})
	if err != nil {
		log.Printf("[directory] create failed err=%v", err)
		sendError(w, "directory creation failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"id": id})
}

// Update renames a directory (admin only). The fallback root directory is
// protected.
func (h *DirectoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.IsAdmin {
		sendForbidden(w)
		return
	}

	var req directoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendWarning(w, "invalid request body", models.WarnGeneral)
		return
	}
	name := strings.TrimSpace(req.Name)
	if reason := models.CheckDirectoryName(name); reason != "" {
		sendWarning(w, reason, models.WarnGeneral)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	dir, err := h.directories.FindByID(ctx, req.ID)
	if err != nil {
		sendWarning(w, "update failed, directory does not exist", models.WarnGeneral)
		return
	}
	if dir.IsFallback() {
		sendWarning(w, "this directory cannot be modified", models.WarnGeneral)
		return
	}

	if existing, err := h.directories.FindLiveByName(ctx, name); err == nil && existing.ID != req.ID {
		sendWarning(w, "directory already exists", models.WarnGeneral)
		return
	} else if err != nil && !errors.Is(err, services.ErrNotFound) {
		sendError(w, "directory update failed", http.StatusInternalServerError)
		return
	}

	if err := h.directories.UpdateName(ctx, req.ID, name); err != nil {
		sendError(w, "directory update failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// Delete soft-deletes a directory (admin only) and reparents its live
// children to the fallback root directory so they stay reachable.
func (h *DirectoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if !p.IsAdmin {
		sendForbidden(w)
		return
	}
	id := r.URL.Query().Get("id")

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	dir, err := h.directories.FindByID(ctx, id)
	if err != nil {
		sendWarning(w, "deletion failed, directory does not exist", models.WarnGeneral)
		return
	}
	if dir.IsFallback() {
		sendWarning(w, "this directory cannot be deleted", models.WarnGeneral)
		return
	}

	fallback, err := h.directories.FindLive(ctx, "", models.FallbackDirectoryName)
	if err == nil && fallback.ID != id {
		children, err := h.directories.ListChildren(ctx, id)
		if err != nil {
			sendError(w, "directory deletion failed", http.StatusInternalServerError)
			return
		}
		for _, child := range children {
			if err := h.directories.Reparent(ctx, child.ID, fallback.ID); err != nil {
				sendError(w, "directory deletion failed", http.StatusInternalServerError)
				return
			}
		}
	} else if err != nil && !errors.Is(err, services.ErrNotFound) {
		sendError(w, "directory deletion failed", http.StatusInternalServerError)
		return
	}

	if err := h.directories.SoftDelete(ctx, id); err != nil {
		sendError(w, "directory deletion failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, nil)
}

// List returns every live directory as a tree. Public route.
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	dirs, err := h.directories.ListLive(ctx)
	if err != nil {
		log.Printf("[directory] list failed err=%v", err)
		sendError(w, "directory listing failed", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]interface{}{"directories": models.BuildDirectoryTree(dirs)})
}
