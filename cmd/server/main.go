package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/banksplit/internal/api"
	"github.com/dgallion1/banksplit/internal/config"
	"github.com/dgallion1/banksplit/internal/loader"
	"github.com/dgallion1/banksplit/internal/pipeline"
	"github.com/dgallion1/banksplit/internal/splitter"
	"github.com/dgallion1/banksplit/internal/vecstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	sp, err := splitter.New(splitter.Config{
		MaxChunkSize:         cfg.MaxChunkSize,
		ChunkOverlap:         cfg.ChunkOverlap,
		PreserveTableContext: cfg.PreserveTableContext,
	})
	if err != nil {
		log.Error("invalid splitter configuration", "error", err)
		os.Exit(1)
	}

	mapping := loader.DefaultMapping()
	if cfg.DocTypeMappingPath != "" {
		mapping, err = loader.LoadMapping(cfg.DocTypeMappingPath)
		if err != nil {
			log.Error("failed to load doc type mapping", "path", cfg.DocTypeMappingPath, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := vecstore.NewClient(cfg.VecstoreURL, cfg.VecstoreAPIKey)

	orch := pipeline.NewOrchestrator(cfg, sp, mapping, store, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		store.Close()
	}()

	log.Info("starting banksplit", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
