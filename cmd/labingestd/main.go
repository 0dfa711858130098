package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/blob"
	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/core"
	"github.com/healthfolio/labingest/internal/core/async"
	"github.com/healthfolio/labingest/internal/export"
	"github.com/healthfolio/labingest/internal/extract"
	"github.com/healthfolio/labingest/internal/ingest"
	"github.com/healthfolio/labingest/internal/llm/openai"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/match"
	"github.com/healthfolio/labingest/internal/metrics"
	"github.com/healthfolio/labingest/internal/repository"
	"github.com/healthfolio/labingest/internal/server"
	"github.com/healthfolio/labingest/internal/structuring"
	"github.com/healthfolio/labingest/internal/structuring/docai"
	"github.com/healthfolio/labingest/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repository.HealthCheck(ctx, repo, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	blobs, err := blob.New(ctx, cfg.Blob, logger)
	if err != nil {
		logger.Error("failed to open blob store", "error", err, "backend", cfg.Blob.Backend)
		os.Exit(1)
	}

	// Document structuring backend. Without it only plain text files process.
	var structurer structuring.Service
	if cfg.Structuring.BaseURL != "" {
		client, err := docai.NewClient(docai.Config{
			BaseURL: cfg.Structuring.BaseURL,
			APIKey:  cfg.Structuring.APIKey,
			Timeout: cfg.Structuring.HTTPTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to build structuring client", "error", err)
			os.Exit(1)
		}
		structurer = client
	} else {
		logger.Warn("DOCAI_BASE_URL not set, PDF and image documents will fail processing")
	}

	completion := openai.NewClient(openai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	collector := metrics.NewCollector("labingest")

	// Extraction and mapping pipeline
	orchestrator := extract.NewOrchestrator(completion, logger,
		extract.WithChunkSize(cfg.Extract.ChunkSize),
		extract.WithMetrics(collector),
	)
	cat := catalog.New()
	matcher := match.NewMatcher(cat)
	builder := mapping.NewBuilder(cat, validate.New())
	mapper := mapping.NewService(logger, matcher, orchestrator, builder, cfg.LLM.Model,
		mapping.WithMetrics(collector),
	)

	processor := core.NewProcessor(logger, repo, blobs, structurer, mapper,
		cfg.Structuring.PollInterval, cfg.Structuring.Budget)

	queue := async.NewDocumentQueue(processor, repo, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithMaxRetries(cfg.Queue.MaxRetries),
		async.WithBackoffBase(cfg.Queue.BackoffBase),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		async.WithMetrics(collector),
	)
	queue.Start(ctx)
	if err := queue.Recover(ctx); err != nil {
		logger.Warn("queue recovery failed", "error", err)
	}

	ingestSvc := ingest.NewService(logger, repo, blobs, queue)

	// Optional drop-directory watcher
	if cfg.Ingest.WatchDir != "" {
		go func() {
			err := ingestSvc.Watch(ctx, ingest.WatchConfig{
				Roots:       []string{cfg.Ingest.WatchDir},
				InitialScan: cfg.Ingest.InitialScan,
				Debounce:    cfg.Ingest.Debounce,
				Priority:    constants.PriorityNormal,
				Enqueue:     true,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	review := mapping.NewReviewService(repo, logger)
	exporter := export.NewService(repo, logger)

	srv := server.New(logger, cfg.Server, ingestSvc, repo, review, exporter, queue, collector)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("labingestd listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	queue.Shutdown(shutdownCtx)
}
