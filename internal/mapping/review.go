package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
)

// DraftStore is the slice of the document store the review flow needs.
type DraftStore interface {
	GetDraftMappingResult(ctx context.Context, docID uuid.UUID) (*entity.MappingResult, error)
	SaveDraftMappingResult(ctx context.Context, docID uuid.UUID, result *entity.MappingResult) error
	SaveAcceptedValues(ctx context.Context, docID uuid.UUID, values []entity.LabValue) error
	UpdateStatus(ctx context.Context, docID uuid.UUID, status constants.DocumentStatus) error
}

// ReviewService applies reviewer selections to a draft and promotes the
// draft to accepted lab values once every group has a pick.
type ReviewService struct {
	logger *slog.Logger
	store  DraftStore
}

func NewReviewService(store DraftStore, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{logger: logger, store: store}
}

// ApplySelections records the reviewer's candidate picks, keyed by canonical
// parameter key. Unknown groups or candidates reject the whole call without
// touching the draft. When the last group gets its selection the accepted
// values are persisted and the document completes.
func (r *ReviewService) ApplySelections(ctx context.Context, docID uuid.UUID, selections map[string]uuid.UUID) (*entity.MappingResult, error) {
	if len(selections) == 0 {
		return nil, common.NewAppError(common.CodeInvalid, "no selections given", nil)
	}

	draft, err := r.store.GetDraftMappingResult(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	for key, candID := range selections {
		group := draft.Group(key)
		if group == nil {
			return nil, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("no import group for key %q", key), nil)
		}
		if !hasCandidate(group, candID) {
			return nil, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("candidate %s is not part of group %q", candID, key), nil)
		}
		id := candID
		group.SelectedCandidateID = &id
	}

	if err := r.store.SaveDraftMappingResult(ctx, docID, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	if !draft.FullyReviewed() {
		r.logger.Info("review.partial",
			"document_id", docID,
			"selected", len(selections),
			"groups", len(draft.ImportGroups),
		)
		return draft, nil
	}

	accepted := acceptedValues(draft, docID)
	if err := r.store.SaveAcceptedValues(ctx, docID, accepted); err != nil {
		return nil, fmt.Errorf("save accepted values: %w", err)
	}
	if err := r.store.UpdateStatus(ctx, docID, constants.DocumentCompleted); err != nil {
		return nil, fmt.Errorf("complete document: %w", err)
	}

	r.logger.Info("review.completed",
		"document_id", docID,
		"accepted_values", len(accepted),
	)
	return draft, nil
}

func hasCandidate(g *entity.ImportGroup, id uuid.UUID) bool {
	for i := range g.Candidates {
		if g.Candidates[i].ID == id {
			return true
		}
	}
	return false
}

// acceptedValues materializes the selected candidate of every group.
func acceptedValues(draft *entity.MappingResult, docID uuid.UUID) []entity.LabValue {
	now := time.Now().UTC()
	out := make([]entity.LabValue, 0, len(draft.ImportGroups))
	for i := range draft.ImportGroups {
		g := &draft.ImportGroups[i]
		c := g.Selected()
		if c == nil {
			continue
		}
		out = append(out, entity.LabValue{
			ID:             uuid.New(),
			DocumentID:     docID,
			Key:            g.CanonicalKey,
			DisplayName:    g.DisplayName,
			Category:       c.Value.Category,
			Value:          c.Value.Value,
			Unit:           c.Value.Unit,
			ReferenceRange: c.Value.ReferenceRange,
			IsAbnormal:     c.Value.IsAbnormal,
			CreatedAt:      now,
		})
	}
	return out
}
