package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/blob"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository"
	"github.com/healthfolio/labingest/internal/structuring"
)

// DocumentMapper turns structured text into a draft mapping result.
type DocumentMapper interface {
	MapDocument(ctx context.Context, docID uuid.UUID, text string) (*entity.MappingResult, error)
}

// Processor runs one document end to end: load the stored blob, turn it
// into text, map the lab values, persist the draft for review.
type Processor struct {
	logger       *slog.Logger
	repo         repository.DocumentRepository
	blobs        blob.Store
	structurer   structuring.Service
	mapper       DocumentMapper
	pollInterval time.Duration
	budget       time.Duration
}

func NewProcessor(
	logger *slog.Logger,
	repo repository.DocumentRepository,
	blobs blob.Store,
	structurer structuring.Service,
	mapper DocumentMapper,
	pollInterval time.Duration,
	budget time.Duration,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if budget <= 0 {
		budget = 5 * time.Minute
	}
	return &Processor{
		logger:       logger,
		repo:         repo,
		blobs:        blobs,
		structurer:   structurer,
		mapper:       mapper,
		pollInterval: pollInterval,
		budget:       budget,
	}
}

// Process handles a single queued document. The queue owns the retry and
// failure bookkeeping; this only reports success or error.
func (p *Processor) Process(ctx context.Context, doc *entity.DocumentRecord) error {
	// 1) Structuring stage: raw bytes to text.
	text, confidence, err := p.structuredText(ctx, doc)
	if err != nil {
		p.logger.Error("processor.structuring.failed", "document_id", doc.ID, "err", err)
		return err
	}
	p.logger.Debug("processor structuring success",
		"document_id", doc.ID,
		"text_bytes", len(text),
		"confidence", confidence,
	)

	// 2) Mapping stage: text to import groups.
	result, err := p.mapper.MapDocument(ctx, doc.ID, text)
	if err != nil {
		p.logger.Error("processor.mapping.failed", "document_id", doc.ID, "err", err)
		return err
	}

	if err := p.repo.SaveDraftMappingResult(ctx, doc.ID, result); err != nil {
		p.logger.Error("processor.draft.save_failed", "document_id", doc.ID, "err", err)
		return err
	}

	status := constants.DocumentCompleted
	if result.NeedsReview {
		status = constants.DocumentReview
	}
	if err := p.repo.UpdateStatus(ctx, doc.ID, status); err != nil {
		return err
	}

	p.logger.Info("processor.document.ok",
		"document_id", doc.ID,
		"status", string(status),
		"groups", len(result.ImportGroups),
		"values", len(result.StandardizedValues),
	)
	return nil
}

// structuredText loads the document blob and produces text for extraction.
// Plain text documents bypass the structuring service entirely.
func (p *Processor) structuredText(ctx context.Context, doc *entity.DocumentRecord) (string, float32, error) {
	key := filepath.Base(doc.StoragePath)
	data, err := p.blobs.Get(ctx, key)
	if err != nil {
		return "", 0, common.WrapError(err, "loading document content")
	}

	if constants.IsPlainText(doc.ContentType) {
		return string(data), 1.0, nil
	}
	if p.structurer == nil {
		return "", 0, common.NewAppError(common.CodeConfig,
			"no structuring service configured, only plain text documents can be processed", nil)
	}

	pctx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	jobID, err := p.structurer.Submit(pctx, data, doc.ContentType)
	if err != nil {
		return "", 0, common.NewAppError(common.CodeStructuring, "submitting document for structuring", err)
	}
	p.logger.Debug("structuring job submitted", "document_id", doc.ID, "job_id", jobID)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-pctx.Done():
			if ctx.Err() != nil {
				// The queue cancelled or timed the run out; report that,
				// not a structuring failure.
				return "", 0, ctx.Err()
			}
			return "", 0, common.NewAppError(common.CodeTimeout, "structuring budget exhausted", pctx.Err())
		case <-ticker.C:
			state, err := p.structurer.PollStatus(pctx, jobID)
			if err != nil {
				return "", 0, common.NewAppError(common.CodeStructuring, "polling structuring job", err)
			}
			switch state {
			case structuring.JobFailed:
				return "", 0, common.NewAppError(common.CodeStructuring, "structuring job failed", nil)
			case structuring.JobSucceeded:
				res, err := p.structurer.FetchResult(pctx, jobID)
				if err != nil {
					return "", 0, common.NewAppError(common.CodeStructuring, "fetching structuring result", err)
				}
				return res.Text, res.Confidence, nil
			}
		}
	}
}
