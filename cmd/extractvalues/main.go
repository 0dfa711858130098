package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/extract"
	"github.com/healthfolio/labingest/internal/llm/openai"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/match"
	"github.com/healthfolio/labingest/internal/validate"
)

// extractvalues runs the extraction and mapping stages against one text
// file and prints the draft result. Useful for prompt tuning without a
// database or queue.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage: extractvalues <text-file>")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	text, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("failed to read input", "path", os.Args[1], "error", err)
		os.Exit(1)
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := mapper.MapDocument(ctx, uuid.New(), string(text))
	if err != nil {
		logger.Error("mapping failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}
