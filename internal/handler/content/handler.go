// Package content exposes the save path for staged resume items and the
// cached profile snapshot.
package content

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/pkg/utils"
)

// Saver persists a staged item to the CMS.
type Saver interface {
	Save(ctx context.Context, item content.Pending) (string, error)
}

// SnapshotProvider serves the cached profile snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*profile.Snapshot, error)
}

// Handler serves content persistence and profile reads.
type Handler struct {
	saver     Saver
	snapshots SnapshotProvider
}

// New creates the content handler.
func New(saver Saver, snapshots SnapshotProvider) *Handler {
	return &Handler{saver: saver, snapshots: snapshots}
}

// RegisterRoutes mounts the content routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/content/save", h.handleSave)
	r.Get("/profile", h.handleProfile)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if h.saver == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "cms is not configured")
		return
	}

	var item content.Pending
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !item.Type.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "unknown content type")
		return
	}

	cmsID, err := h.saver.Save(r.Context(), item)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "failed to save content: "+err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"cmsId": cmsID})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "cms is not configured")
		return
	}

	snapshot, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "failed to load profile")
		return
	}
	utils.RespondJSON(w, http.StatusOK, snapshot)
}
