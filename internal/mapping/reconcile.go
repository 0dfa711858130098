// Package mapping resolves extracted lab values against the standard
// parameter catalog and assembles the reviewable import draft.
package mapping

import (
	"github.com/google/uuid"

	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/validate"
)

// Builder assembles import groups from standardized values. Every value
// becomes a candidate; the reviewer decides which candidate wins a slot.
type Builder struct {
	catalog   *catalog.Catalog
	validator *validate.Validator
}

func NewBuilder(c *catalog.Catalog, v *validate.Validator) *Builder {
	if v == nil {
		v = validate.New()
	}
	return &Builder{catalog: c, validator: v}
}

// Build groups values by canonical key, preserving first-seen order, and
// attaches a validation verdict to each candidate. No candidate is ever
// pre-selected; SelectedCandidateID stays nil until review.
func (b *Builder) Build(values []entity.StandardizedValue) []entity.ImportGroup {
	var groups []entity.ImportGroup
	index := make(map[string]int, len(values))

	for _, sv := range values {
		param, _ := b.catalog.Lookup(sv.Key)
		verdict := b.validator.Validate(sv.Value, sv.ReferenceRange, param)
		cand := entity.ImportCandidate{
			ID:      uuid.New(),
			Value:   sv,
			Verdict: verdict.Verdict,
			Reason:  verdict.Reason,
		}

		if i, ok := index[sv.Key]; ok {
			groups[i].Candidates = append(groups[i].Candidates, cand)
			continue
		}

		display := sv.DisplayName
		if param != nil {
			display = param.DisplayName
		}
		index[sv.Key] = len(groups)
		groups = append(groups, entity.ImportGroup{
			CanonicalKey: sv.Key,
			DisplayName:  display,
			Candidates:   []entity.ImportCandidate{cand},
		})
	}
	return groups
}

// SuggestBestCandidate ranks a group's candidates without selecting one.
// Preference order: higher mapping confidence, then presence of a unit,
// then presence of a reference range, then the longer original name.
// Ties keep the earlier candidate.
func SuggestBestCandidate(g *entity.ImportGroup) *entity.ImportCandidate {
	if g == nil || len(g.Candidates) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(g.Candidates); i++ {
		if preferred(&g.Candidates[i], &g.Candidates[best]) {
			best = i
		}
	}
	return &g.Candidates[best]
}

// preferred reports whether a beats b under the suggestion ordering.
func preferred(a, b *entity.ImportCandidate) bool {
	if a.Value.MappingConfidence != b.Value.MappingConfidence {
		return a.Value.MappingConfidence > b.Value.MappingConfidence
	}
	if (a.Value.Unit != "") != (b.Value.Unit != "") {
		return a.Value.Unit != ""
	}
	if (a.Value.ReferenceRange != "") != (b.Value.ReferenceRange != "") {
		return a.Value.ReferenceRange != ""
	}
	return len(a.Value.OriginalName) > len(b.Value.OriginalName)
}
