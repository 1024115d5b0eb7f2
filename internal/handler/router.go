package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/dmaguire/folio/backend/internal/handler/chat"
	contenthandler "github.com/dmaguire/folio/backend/internal/handler/content"
	practicehandler "github.com/dmaguire/folio/backend/internal/handler/practice"
	middlewarePkg "github.com/dmaguire/folio/backend/internal/middleware"
	"github.com/dmaguire/folio/backend/internal/service/ai"
	"github.com/dmaguire/folio/backend/internal/service/cms"
	contentservice "github.com/dmaguire/folio/backend/internal/service/content"
	"github.com/dmaguire/folio/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. Any service pointer may be
// nil; the affected endpoints then answer 503 instead of panicking.
func NewRouter(aiSvc *ai.Service, saveSvc *contentservice.Service, snapshots *cms.SnapshotCache) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var streamer chathandler.Streamer
	var generator practicehandler.QuestionGenerator
	if aiSvc != nil {
		streamer = aiSvc
		generator = aiSvc
	}

	var chatSnapshots chathandler.SnapshotProvider
	var contentSnapshots contenthandler.SnapshotProvider
	var practiceSnapshots practicehandler.SnapshotProvider
	if snapshots != nil {
		chatSnapshots = snapshots
		contentSnapshots = snapshots
		practiceSnapshots = snapshots
	}

	var saver contenthandler.Saver
	if saveSvc != nil {
		saver = saveSvc
	}

	chatHandler := chathandler.New(streamer, chatSnapshots)
	contentHandler := contenthandler.New(saver, contentSnapshots)
	practiceHandler := practicehandler.New(generator, practiceSnapshots)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		contentHandler.RegisterRoutes(api)
		practiceHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
