package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/vocabflash/internal/api"
	"github.com/vytor/vocabflash/internal/clock"
	"github.com/vytor/vocabflash/internal/config"
	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("VocabFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("session_limit=%d, session_max_new=%d", cfg.SessionLimit, cfg.SessionMaxNew)
	log.Debug("quality=[%d,%d], pass_threshold=%d", cfg.MinQuality, cfg.MaxQuality, cfg.PassThreshold)
	log.Debug("ease_factor default=%.2f min=%.2f, relearn_interval_days=%d", cfg.DefaultEaseFactor, cfg.MinEaseFactor, cfg.RelearnIntervalDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	scheduler, err := flashcard.NewScheduler(cfg.SchedulerParams(), flashcard.WithLogger(log.WithPrefix("scheduler")))
	if err != nil {
		log.Error("invalid scheduler settings: %v", err)
		os.Exit(1)
	}

	clk := clock.Real{}
	importPool := worker.NewPool("import", cfg.ImportWorkerCount, cfg.ImportQueueSize)

	// Initialize repositories and services
	cardRepo := sqlite.NewCardRepository(database.DB)
	profileRepo := sqlite.NewProfileRepository(database.DB)

	cardService := services.NewCardService(cardRepo, scheduler, clk)
	studyService := services.NewStudyService(cardRepo, clk, flashcard.SessionOptions{
		Limit:         cfg.SessionLimit,
		IncludeReview: true,
		IncludeNew:    true,
		MaxNew:        cfg.SessionMaxNew,
	})
	profileService := services.NewProfileService(profileRepo)

	srv := &api.Server{
		CardService:    cardService,
		StudyService:   studyService,
		ProfileService: profileService,
		JobQueue:       jobs.NewWorkerQueue(importPool, cardService, clk),
		DB:             database,
	}

	importPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop accepting requests before draining the import queue.
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping import pool")
	importPool.Stop(shutdownCtx)

	log.Info("===========================================")
	log.Info("VocabFlash Server Stopped")
	log.Info("===========================================")
}
