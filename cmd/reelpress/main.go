package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avasseur/reelpress/config"
	"github.com/avasseur/reelpress/internal/adapter/fetch"
	HTTPAdapter "github.com/avasseur/reelpress/internal/adapter/http"
	"github.com/avasseur/reelpress/internal/adapter/http/middleware"
	sqlitestore "github.com/avasseur/reelpress/internal/adapter/storage/sqlite"
	"github.com/avasseur/reelpress/internal/adapter/transcoder/ffmpeg"
	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/infrastructure/logger"
	"github.com/avasseur/reelpress/internal/port"
	"github.com/avasseur/reelpress/internal/service"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting reelpress %s on port %d, domain=%s", version, cfg.Port, cfg.Domain)

	for _, dir := range []string{cfg.DataDir, cfg.TempDir(), cfg.OutputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error.Printf("failed to create directory %s: %v", dir, err)
			os.Exit(1)
		}
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	engine := fetch.NewEngine(fetch.NewHTTPClient(cfg.FetchTimeout), cfg.YtdlpPath)
	transcoder := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	eventBus := service.NewEventBus()
	authSvc := service.NewAuthService(cfg.APIKey, cfg.APIKeyHash)

	reaper := service.NewReaper(store, nil)
	recoverFromRestart(store, reaper)

	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	defer reaperCancel()
	go reaper.Run(reaperCtx)

	pipeline := service.NewPipeline(engine, transcoder, store, reaper, eventBus, cfg.TempDir(), cfg.OutputDir())

	handlers := HTTPAdapter.NewHandlers(pipeline, store, cfg.Domain, cfg.TempDir(), cfg.MaxUploadSizeMB, cfg.OutputTTL, cfg.UploadOutputTTL)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	server := HTTPAdapter.NewServer(handlers, authSvc, eventBus, rateLimiter, version, cfg.DataDir)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
		// Conversions run synchronously inside the request, so the write
		// timeout must cover acquisition plus transcode.
		ReadTimeout:  cfg.FetchTimeout,
		WriteTimeout: 2 * cfg.FetchTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		reaperCancel()
		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

// recoverFromRestart reconciles persisted state with disk after a
// restart: jobs caught mid-flight are failed and their leftovers removed,
// ready outputs get their expiry timers re-armed at the original
// deadline.
func recoverFromRestart(store port.JobStore, reaper *service.Reaper) {
	unfinished, err := store.ListUnfinished()
	if err != nil {
		logger.Error.Printf("startup recovery: listing unfinished jobs: %v", err)
	}
	for _, job := range unfinished {
		for _, path := range []string{job.TempPath, job.OutputPath} {
			if path != "" {
				service.ReleaseTemp(path)
			}
		}
		job.MarkFailed(fmt.Errorf("%w: interrupted by restart", domain.ErrEngineFailed))
		if err := store.Update(job); err != nil {
			logger.Error.Printf("startup recovery: failing job %s: %v", job.ID, err)
		}
	}
	if len(unfinished) > 0 {
		logger.Warn.Printf("startup recovery: failed %d interrupted jobs", len(unfinished))
	}

	ready, err := store.ListReady()
	if err != nil {
		logger.Error.Printf("startup recovery: listing ready jobs: %v", err)
	}
	rearmed := 0
	for _, job := range ready {
		if _, statErr := os.Stat(job.OutputPath); statErr != nil {
			if err := store.MarkGone(job.ID, time.Now()); err != nil {
				logger.Error.Printf("startup recovery: marking job %s gone: %v", job.ID, err)
			}
			continue
		}
		reaper.ScheduleAt(job.ID, job.OutputPath, job.ExpiresAt)
		rearmed++
	}
	if rearmed > 0 {
		logger.Info.Printf("startup recovery: re-armed expiry for %d outputs", rearmed)
	}
}
