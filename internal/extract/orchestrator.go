package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/llm"
	"github.com/healthfolio/labingest/internal/metrics"
)

// Orchestrator runs the chunk/prompt/parse cycle against a completion
// service and merges the per-chunk results into one deduplicated list.
type Orchestrator struct {
	completion llm.CompletionService
	chunkSize  int
	log        *slog.Logger
	collector  *metrics.Collector
}

type Option func(*Orchestrator)

// WithChunkSize overrides the per-prompt text budget.
func WithChunkSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) {
		o.collector = c
	}
}

func NewOrchestrator(completion llm.CompletionService, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		completion: completion,
		chunkSize:  defaultChunkSize,
		log:        logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract pulls lab values out of report text. Individual chunk failures are
// tolerated and contribute no values; only a cancelled context aborts the
// whole run. A response the model garbles completely yields an empty list,
// not an error.
func (o *Orchestrator) Extract(ctx context.Context, text string) ([]entity.RawExtractedValue, error) {
	if o.completion == nil {
		return nil, common.NewAppError(common.CodeConfig, "no completion service configured", nil)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	start := time.Now()
	chunks := SplitIntoChunks(text, o.chunkSize)
	o.log.Info("extract.start", "chunks", len(chunks), "text_len", len(text))

	var (
		collected []entity.RawExtractedValue
		failed    int
	)
	for i, chunk := range chunks {
		resp, err := o.completion.Complete(ctx, buildExtractionPrompt(chunk))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			if o.collector != nil {
				o.collector.ChunkFailuresTotal.Inc()
			}
			o.log.Warn("extract.chunk_failed", "chunk", i, "error", err)
			continue
		}
		collected = append(collected, parseResponse(resp)...)
	}

	out := dedupeValues(collected)
	o.log.Info("extract.ok",
		"values", len(out),
		"chunks", len(chunks),
		"failed_chunks", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
