package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
)

// Verdict classifies a candidate value for the review UI.
type Verdict string

const (
	VerdictValid       Verdict = "valid"
	VerdictInvalidType Verdict = "invalidType"
	VerdictOutOfRange  Verdict = "outOfRange"
	VerdictMissingData Verdict = "missingData"
)

// ImportCandidate is one standardized value competing for a canonical
// parameter slot, annotated with its validation verdict.
type ImportCandidate struct {
	ID      uuid.UUID         `json:"id"`
	Value   StandardizedValue `json:"value"`
	Verdict Verdict           `json:"verdict"`
	Reason  string            `json:"reason,omitempty"`
}

// ImportGroup collects every candidate that mapped to the same canonical
// parameter. SelectedCandidateID stays nil until a reviewer picks one.
type ImportGroup struct {
	CanonicalKey        string            `json:"canonical_key"`
	DisplayName         string            `json:"display_name"`
	Candidates          []ImportCandidate `json:"candidates"`
	SelectedCandidateID *uuid.UUID        `json:"selected_candidate_id,omitempty"`
}

// Selected returns the chosen candidate, or nil when review is pending.
func (g *ImportGroup) Selected() *ImportCandidate {
	if g.SelectedCandidateID == nil {
		return nil
	}
	for i := range g.Candidates {
		if g.Candidates[i].ID == *g.SelectedCandidateID {
			return &g.Candidates[i]
		}
	}
	return nil
}

// MappingResult is the draft outcome of processing one document. It is
// persisted as-is so review can resume after a restart.
type MappingResult struct {
	DocumentID         uuid.UUID           `json:"document_id"`
	RawValues          []RawExtractedValue `json:"raw_values"`
	StandardizedValues []StandardizedValue `json:"standardized_values"`
	ImportGroups       []ImportGroup       `json:"import_groups"`
	NeedsReview        bool                `json:"needs_review"`
	OverallConfidence  float32             `json:"overall_confidence"`
	ModelID            string              `json:"model_id,omitempty"`
	DurationMS         int64               `json:"duration_ms"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Group returns the import group for a canonical key, or nil.
func (r *MappingResult) Group(canonicalKey string) *ImportGroup {
	for i := range r.ImportGroups {
		if r.ImportGroups[i].CanonicalKey == canonicalKey {
			return &r.ImportGroups[i]
		}
	}
	return nil
}

// FullyReviewed reports whether every group has a selection.
func (r *MappingResult) FullyReviewed() bool {
	for i := range r.ImportGroups {
		if r.ImportGroups[i].SelectedCandidateID == nil {
			return false
		}
	}
	return true
}

// LabValue is an accepted, reviewer-approved lab value. These rows are
// the authoritative record for a document.
type LabValue struct {
	ID             uuid.UUID                   `json:"id"`
	DocumentID     uuid.UUID                   `json:"document_id"`
	Key            string                      `json:"key"`
	DisplayName    string                      `json:"display_name"`
	Category       constants.ParameterCategory `json:"category"`
	Value          string                      `json:"value"`
	Unit           string                      `json:"unit,omitempty"`
	ReferenceRange string                      `json:"reference_range,omitempty"`
	IsAbnormal     bool                        `json:"is_abnormal"`
	CreatedAt      time.Time                   `json:"created_at"`
}
