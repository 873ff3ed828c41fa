package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/secpolicy/internal/api"
	"github.com/dgallion1/secpolicy/internal/config"
	"github.com/dgallion1/secpolicy/internal/extract"
	"github.com/dgallion1/secpolicy/internal/pipeline"
	"github.com/dgallion1/secpolicy/internal/schema"
	"github.com/dgallion1/secpolicy/internal/store"
)

func main() {
	cfg := config.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		log.Warn("SECPOLICY_API_KEY not set, api is unauthenticated")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sch, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		log.Error("load schema", "path", cfg.SchemaPath, "error", err)
		os.Exit(1)
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error("open store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	ex := extract.New(sch, extract.Options{
		MaxEdits:         cfg.MaxEdits,
		MaxHeadingLength: cfg.MaxHeadingLength,
	}, log)
	orch := pipeline.NewOrchestrator(cfg, ex, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		st.Close()
	}()

	log.Info("starting secpolicy", "port", cfg.Port, "workers", cfg.WorkerCount, "max_edits", cfg.MaxEdits)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
