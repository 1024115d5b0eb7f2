// Package chat exposes the three flavored chat endpoints. Each POST opens a
// streaming completion upstream, runs the transcoder over it, and relays the
// event protocol to the browser as Server-Sent Events.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/dmaguire/folio/backend/pkg/model/chat"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/internal/service/ai"
	"github.com/dmaguire/folio/backend/internal/stream"
	"github.com/dmaguire/folio/backend/pkg/utils"
)

// Streamer opens an upstream streaming completion for one request.
type Streamer interface {
	Stream(ctx context.Context, flavor stream.Flavor, snapshot *profile.Snapshot, turns []chat.Turn, opts ai.PromptOptions) (*schema.StreamReader[*schema.Message], error)
}

// SnapshotProvider serves the cached profile snapshot for prompt building.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*profile.Snapshot, error)
}

// Handler serves the flavored chat streams.
type Handler struct {
	ai        Streamer
	snapshots SnapshotProvider
}

// New creates the chat handler. ai may be nil when the upstream credential
// is missing; requests then fail before any stream is opened.
func New(ai Streamer, snapshots SnapshotProvider) *Handler {
	return &Handler{ai: ai, snapshots: snapshots}
}

// RegisterRoutes mounts one POST endpoint per flavor.
func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, flavor := range []stream.Flavor{stream.ContentBuilder, stream.Practice, stream.ResumeGen} {
		r.Post("/chat/"+flavor.Name, h.handleChat(flavor))
	}
}

// Request is the shared chat request body. The flavor-specific fields are
// simply ignored by flavors that do not use them.
type Request struct {
	Messages       []chat.Turn `json:"messages"`
	QuestionID     string      `json:"questionId,omitempty"`
	TargetRole     string      `json:"targetRole,omitempty"`
	TargetCompany  string      `json:"targetCompany,omitempty"`
	JobDescription string      `json:"jobDescription,omitempty"`
}

func (h *Handler) handleChat(flavor stream.Flavor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.ai == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "ai assistant is not configured")
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Messages) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "messages array is required")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		ctx := r.Context()
		snapshot := h.snapshot(ctx, flavor)

		opts := ai.PromptOptions{
			QuestionID:     req.QuestionID,
			TargetRole:     req.TargetRole,
			TargetCompany:  req.TargetCompany,
			JobDescription: req.JobDescription,
		}
		reader, err := h.ai.Stream(ctx, flavor, snapshot, req.Messages, opts)
		if err != nil {
			log.Printf("[chat] %s: upstream connect failed: %v", flavor.Name, err)
			utils.RespondError(w, http.StatusBadGateway, "upstream completion failed")
			return
		}
		defer reader.Close()

		utils.SetupSSEHeaders(w)
		h.relay(ctx, w, flusher, flavor, reader)
	}
}

// relay pumps upstream increments through the transcoder and writes the
// resulting events as SSE frames. It guarantees exactly one terminal event:
// done after a clean upstream EOF, error otherwise.
func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, flavor stream.Flavor, reader *schema.StreamReader[*schema.Message]) {
	transcoder := stream.New(flavor)

	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				// Client went away; nobody is reading the frames.
				log.Printf("[chat] %s: client disconnected", flavor.Name)
				return
			}
			log.Printf("[chat] %s: upstream stream failed: %v", flavor.Name, err)
			utils.SendSSEChunk(w, flusher, stream.Error("upstream stream failed"))
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		for _, ev := range transcoder.Feed(chunk.Content) {
			utils.SendSSEChunk(w, flusher, ev)
		}
	}

	for _, ev := range transcoder.Finish() {
		utils.SendSSEChunk(w, flusher, ev)
	}
	log.Printf("[chat] %s: stream complete", flavor.Name)
}

func (h *Handler) snapshot(ctx context.Context, flavor stream.Flavor) *profile.Snapshot {
	if h.snapshots == nil {
		return nil
	}
	snapshot, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		// Prompts degrade without profile context; chat still works.
		log.Printf("[chat] %s: profile snapshot unavailable: %v", flavor.Name, err)
		return nil
	}
	return snapshot
}
