package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/blob"
	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/core"
	"github.com/healthfolio/labingest/internal/export"
	"github.com/healthfolio/labingest/internal/extract"
	"github.com/healthfolio/labingest/internal/ingest"
	"github.com/healthfolio/labingest/internal/llm/openai"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/match"
	"github.com/healthfolio/labingest/internal/repository"
	"github.com/healthfolio/labingest/internal/structuring"
	"github.com/healthfolio/labingest/internal/structuring/docai"
	"github.com/healthfolio/labingest/internal/validate"
)

// labingest-batch registers every lab report under a directory, processes
// them synchronously and writes one XLSX per document.
func main() {
	var (
		dir         = flag.String("dir", "", "directory to ingest lab reports from (required)")
		out         = flag.String("out", "", "output directory for XLSX files (default <dir>/exports)")
		priorityStr = flag.String("priority", "normal", "queue priority label recorded on the documents")
	)
	flag.Parse()
	started := time.Now()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *dir == "" {
		logger.Error("--dir is required")
		os.Exit(2)
	}
	priority, ok := constants.ParsePriority(*priorityStr)
	if !ok {
		logger.Error("unknown priority", "value", *priorityStr)
		os.Exit(2)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "exports")
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	ctx := context.Background()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer repo.Close()

	blobs, err := blob.New(ctx, cfg.Blob, logger)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

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
		logger.Warn("DOCAI_BASE_URL not set, only plain text files will process")
	}

	completion := openai.NewClient(openai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	orchestrator := extract.NewOrchestrator(completion, logger, extract.WithChunkSize(cfg.Extract.ChunkSize))
	cat := catalog.New()
	builder := mapping.NewBuilder(cat, validate.New())
	mapper := mapping.NewService(logger, match.NewMatcher(cat), orchestrator, builder, cfg.LLM.Model)
	processor := core.NewProcessor(logger, repo, blobs, structurer, mapper,
		cfg.Structuring.PollInterval, cfg.Structuring.Budget)
	exporter := export.NewService(repo, logger)

	// No queue here; the batch run registers then processes inline.
	ingestSvc := ingest.NewService(logger, repo, blobs, nil)

	logger.Info("starting ingestion", "dir", *dir, "priority", string(priority))
	results, stats, err := ingestSvc.IngestDirectory(ctx, *dir, nil, priority, false)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output directory", "path", *out, "error", err)
		os.Exit(1)
	}

	processed := 0
	failures := 0
	exported := 0
	for _, res := range results {
		if res.Err != "" || res.Deduplicated {
			continue
		}
		docID, err := uuid.Parse(res.DocumentID)
		if err != nil {
			logger.Error("failed to parse document id", "document_id", res.DocumentID, "error", err)
			continue
		}
		doc, err := repo.GetDocument(ctx, docID)
		if err != nil {
			logger.Error("failed to load document", "document_id", docID, "error", err)
			failures++
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, cfg.Queue.ProcessTimeout)
		err = processor.Process(runCtx, doc)
		cancel()
		if err != nil {
			logger.Error("processing failed", "document_id", docID, "source", res.SourcePath, "error", err)
			failures++
			continue
		}
		processed++

		data, err := exporter.ExportDocumentXLSX(ctx, docID)
		if err != nil {
			logger.Error("export failed", "document_id", docID, "error", err)
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(res.SourcePath), filepath.Ext(res.SourcePath))
		outPath := filepath.Join(*out, fmt.Sprintf("%s_%s.xlsx", stem, docID.String()[:8]))
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			logger.Error("failed to write XLSX", "path", outPath, "error", err)
			continue
		}
		exported++
	}

	logger.Info("batch complete",
		"registered", stats.Succeeded,
		"processed", processed,
		"failures", failures,
		"exported", exported,
		"output_dir", *out,
		"elapsed", time.Since(started).String(),
	)
	fmt.Printf("Batch complete: %d processed, %d failed, %d spreadsheets in %s\n", processed, failures, exported, *out)
}
