package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmaguire/folio/backend/internal/config"
	"github.com/dmaguire/folio/backend/internal/handler"
	"github.com/dmaguire/folio/backend/internal/service/ai"
	"github.com/dmaguire/folio/backend/internal/service/cms"
	contentservice "github.com/dmaguire/folio/backend/internal/service/content"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// CMS client and snapshot cache. Without Directus credentials the chat
	// endpoints still work, just without profile context in the prompts.
	var snapshots *cms.SnapshotCache
	var saveService *contentservice.Service
	if cfg.CMS.Enabled() {
		cmsClient := cms.NewClient(cfg.CMS)
		snapshots = cms.NewSnapshotCache(cmsClient, cfg.CMS.CacheTTL)
		saveService = contentservice.NewService(cmsClient, snapshots.Invalidate)
		log.Println("CMS client initialized successfully")
	} else {
		log.Println("Directus credentials not configured, skipping CMS integration")
	}

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check the Ark environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(aiService, saveService, snapshots)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Folio backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
