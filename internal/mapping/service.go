package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/extract"
	"github.com/healthfolio/labingest/internal/match"
	"github.com/healthfolio/labingest/internal/metrics"
)

// Service coordinates extraction, catalog matching and group building
// into one draft mapping result per document.
type Service struct {
	logger    *slog.Logger
	matcher   *match.Matcher
	extractor extract.ValueExtractor
	builder   *Builder
	modelID   string
	collector *metrics.Collector
}

type Option func(*Service)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) {
		s.collector = c
	}
}

func NewService(
	logger *slog.Logger,
	matcher *match.Matcher,
	extractor extract.ValueExtractor,
	builder *Builder,
	modelID string,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		logger:    logger,
		matcher:   matcher,
		extractor: extractor,
		builder:   builder,
		modelID:   modelID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MapDocument extracts lab values from text and resolves them against the
// catalog. Unmatched names are logged and dropped from standardization but
// kept in RawValues for the audit trail.
func (s *Service) MapDocument(ctx context.Context, docID uuid.UUID, text string) (*entity.MappingResult, error) {
	start := time.Now()

	raw, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract values: %w", err)
	}

	standardized := make([]entity.StandardizedValue, 0, len(raw))
	for _, rv := range raw {
		param, confidence, ok := s.matcher.Match(rv.TestName, rv.TestType)
		if !ok {
			s.logger.Warn("mapping.unmatched",
				"document_id", docID,
				"test_name", rv.TestName,
				"test_type", rv.TestType,
			)
			continue
		}
		standardized = append(standardized, standardize(rv, param, confidence))
	}

	groups := s.builder.Build(standardized)
	if s.collector != nil {
		s.collector.ValuesMappedTotal.Add(float64(len(standardized)))
	}

	result := &entity.MappingResult{
		DocumentID:         docID,
		RawValues:          raw,
		StandardizedValues: standardized,
		ImportGroups:       groups,
		NeedsReview:        len(groups) > 0,
		OverallConfidence:  meanConfidence(standardized),
		ModelID:            s.modelID,
		DurationMS:         time.Since(start).Milliseconds(),
		CreatedAt:          time.Now().UTC(),
	}

	s.logger.Info("mapping.ok",
		"document_id", docID,
		"raw_values", len(raw),
		"standardized", len(standardized),
		"groups", len(groups),
		"needs_review", result.NeedsReview,
		"overall_confidence", result.OverallConfidence,
		"elapsed_ms", result.DurationMS,
	)
	return result, nil
}

// standardize fills a StandardizedValue, preferring what the document
// printed over the catalog defaults for unit and reference range.
func standardize(rv entity.RawExtractedValue, param *entity.StandardParameter, confidence float32) entity.StandardizedValue {
	unit := rv.Unit
	if unit == "" {
		unit = param.Unit
	}
	refRange := rv.ReferenceRange
	if refRange == "" {
		refRange = param.ReferenceRange
	}
	return entity.StandardizedValue{
		Key:               param.Key,
		DisplayName:       param.DisplayName,
		Category:          param.Category,
		Value:             rv.Value,
		Unit:              unit,
		ReferenceRange:    refRange,
		IsAbnormal:        rv.IsAbnormal,
		MappingConfidence: confidence,
		OriginalName:      rv.TestName,
	}
}

func meanConfidence(values []entity.StandardizedValue) float32 {
	if len(values) == 0 {
		return 0
	}
	var sum float32
	for _, v := range values {
		sum += v.MappingConfidence
	}
	return sum / float32(len(values))
}
