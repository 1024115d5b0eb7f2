// Package practice exposes the non-streaming interview question generator
// that backs the practice feature's question picker.
package practice

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/pkg/utils"
)

// QuestionGenerator produces tailored interview questions.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, snapshot *profile.Snapshot, targetRole, jobDescription string, count int) ([]string, error)
}

// SnapshotProvider serves the cached profile snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*profile.Snapshot, error)
}

// Handler serves question generation.
type Handler struct {
	generator QuestionGenerator
	snapshots SnapshotProvider
}

// New creates the practice handler. generator may be nil when the AI service
// is not configured.
func New(generator QuestionGenerator, snapshots SnapshotProvider) *Handler {
	return &Handler{generator: generator, snapshots: snapshots}
}

// RegisterRoutes mounts the practice routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/practice/questions", h.handleQuestions)
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai assistant is not configured")
		return
	}

	var req struct {
		TargetRole     string `json:"targetRole"`
		JobDescription string `json:"jobDescription"`
		Count          int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var snapshot *profile.Snapshot
	if h.snapshots != nil {
		snap, err := h.snapshots.Snapshot(r.Context())
		if err != nil {
			log.Printf("[practice] profile snapshot unavailable: %v", err)
		} else {
			snapshot = snap
		}
	}

	questions, err := h.generator.GenerateQuestions(r.Context(), snapshot, req.TargetRole, req.JobDescription, req.Count)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "failed to generate questions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string][]string{"questions": questions})
}
