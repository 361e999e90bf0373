package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/handlers"
	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/bootstrap"
	"github.com/dvloznov/payment-tracker/internal/config"
	"github.com/dvloznov/payment-tracker/internal/jobs"
	"github.com/dvloznov/payment-tracker/internal/jobs/inmemory"
	"github.com/dvloznov/payment-tracker/internal/logger"
	"github.com/dvloznov/payment-tracker/internal/payments"
)

func main() {
	log := logger.New()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	port := flag.Int("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()
	cfg.Port = *port

	configured, err := logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}
	log = configured

	ctx := logger.WithContext(context.Background(), log)

	st, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.Close()

	if err := bootstrap.SeedIfEnabled(ctx, cfg, st, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed sample data")
	}

	files, err := bootstrap.OpenAttachments(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open attachment storage")
	}
	defer files.Close()

	engine, err := bootstrap.NewEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build report engine")
	}

	// Cleanup jobs are always recorded so /api/jobs answers either way;
	// the queue only runs when async cleanup is enabled.
	jobStore := inmemory.NewStore()
	var cleaner payments.Cleaner
	var jobQueue *inmemory.Queue

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if cfg.CleanupAsync {
		jobQueue = inmemory.NewQueue(100, jobStore)
		if err := jobQueue.Start(workerCtx, jobs.DeleteAttachmentHandler(files)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start cleanup worker")
		}
		log.Info().Int("max_retries", cfg.CleanupRetries).Msg("Started attachment cleanup worker")
		cleaner = jobs.NewQueueCleaner(jobQueue, cfg.CleanupRetries, log)
	}

	svc := payments.NewService(st, files, cleaner, engine, log)

	router := handlers.NewRouter(handlers.Handlers{
		Accounts:    handlers.NewAccountsHandler(st, log),
		CostCenters: handlers.NewCostCentersHandler(st, svc, log),
		Payments:    handlers.NewPaymentsHandler(svc, cfg.MaxUploadBytes, log),
		Reports:     handlers.NewReportsHandler(svc, log),
		Uploads:     handlers.NewUploadsHandler(files, log),
		Jobs:        handlers.NewJobsHandler(jobStore, log),
	}, middleware.NewMetrics("payment_tracker"))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handlers.Wrap(router, log, cfg.CORSOrigin),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("store", cfg.StoreBackend).
			Str("attachments", cfg.AttachmentBackend).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if jobQueue != nil {
		stopQueue(shutdownCtx, jobQueue, log)
	}

	log.Info().Msg("Server exited")
}

// stopQueue lets in-flight cleanup jobs finish before closing the queue.
func stopQueue(ctx context.Context, q *inmemory.Queue, log zerolog.Logger) {
	if err := q.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := q.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}
}
