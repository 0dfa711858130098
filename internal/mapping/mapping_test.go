package mapping

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/catalog"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/match"
	"github.com/healthfolio/labingest/internal/validate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(catalog.New(), validate.New())
}

func glucoseValue(value, unit, refRange string, confidence float32) entity.StandardizedValue {
	return entity.StandardizedValue{
		Key:               "glucose_fasting",
		DisplayName:       "Fasting Glucose",
		Category:          constants.CategoryGeneralChemistry,
		Value:             value,
		Unit:              unit,
		ReferenceRange:    refRange,
		MappingConfidence: confidence,
		OriginalName:      "Glucose",
	}
}

func TestBuildGroupsByCanonicalKey(t *testing.T) {
	b := testBuilder(t)

	groups := b.Build([]entity.StandardizedValue{
		glucoseValue("95", "mg/dL", "70-100", 1.0),
		{Key: "sodium", DisplayName: "Sodium", Value: "140", Unit: "mmol/L", MappingConfidence: 1.0, OriginalName: "Sodium"},
		glucoseValue("96", "mg/dL", "70-100", 0.9),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "glucose_fasting", groups[0].CanonicalKey, "first-seen order is preserved")
	assert.Equal(t, "sodium", groups[1].CanonicalKey)
	require.Len(t, groups[0].Candidates, 2)
	require.Len(t, groups[1].Candidates, 1)
	assert.Nil(t, groups[0].SelectedCandidateID, "no candidate is pre-selected")
	assert.Nil(t, groups[1].SelectedCandidateID)
}

func TestBuildAttachesVerdicts(t *testing.T) {
	b := testBuilder(t)

	groups := b.Build([]entity.StandardizedValue{
		glucoseValue("95", "mg/dL", "70-100", 1.0),
		glucoseValue("15000", "mg/dL", "70-100", 0.7),
		glucoseValue("", "", "", 0.7),
	})

	require.Len(t, groups, 1)
	cands := groups[0].Candidates
	require.Len(t, cands, 3)
	assert.Equal(t, entity.VerdictValid, cands[0].Verdict)
	assert.Equal(t, entity.VerdictOutOfRange, cands[1].Verdict)
	assert.NotEmpty(t, cands[1].Reason)
	assert.Equal(t, entity.VerdictMissingData, cands[2].Verdict)
}

func TestBuildUsesCatalogDisplayName(t *testing.T) {
	b := testBuilder(t)

	groups := b.Build([]entity.StandardizedValue{
		{Key: "glucose_fasting", DisplayName: "whatever came in", Value: "95"},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Fasting Glucose", groups[0].DisplayName)
}

func TestSuggestBestCandidate(t *testing.T) {
	group := func(values ...entity.StandardizedValue) *entity.ImportGroup {
		g := &entity.ImportGroup{CanonicalKey: "glucose_fasting"}
		for _, v := range values {
			g.Candidates = append(g.Candidates, entity.ImportCandidate{ID: uuid.New(), Value: v})
		}
		return g
	}

	t.Run("higher confidence wins", func(t *testing.T) {
		g := group(glucoseValue("95", "", "", 0.7), glucoseValue("96", "", "", 0.9))
		best := SuggestBestCandidate(g)
		require.NotNil(t, best)
		assert.Equal(t, "96", best.Value.Value)
	})

	t.Run("unit breaks confidence tie", func(t *testing.T) {
		g := group(glucoseValue("95", "", "70-100", 0.9), glucoseValue("96", "mg/dL", "", 0.9))
		assert.Equal(t, "96", SuggestBestCandidate(g).Value.Value)
	})

	t.Run("range breaks unit tie", func(t *testing.T) {
		g := group(glucoseValue("95", "mg/dL", "", 0.9), glucoseValue("96", "mg/dL", "70-100", 0.9))
		assert.Equal(t, "96", SuggestBestCandidate(g).Value.Value)
	})

	t.Run("longer original name breaks range tie", func(t *testing.T) {
		a := glucoseValue("95", "mg/dL", "70-100", 0.9)
		a.OriginalName = "Glu"
		b := glucoseValue("96", "mg/dL", "70-100", 0.9)
		b.OriginalName = "Fasting Glucose"
		assert.Equal(t, "96", SuggestBestCandidate(group(a, b)).Value.Value)
	})

	t.Run("full tie keeps the first candidate", func(t *testing.T) {
		g := group(glucoseValue("95", "mg/dL", "70-100", 0.9), glucoseValue("96", "mg/dL", "70-100", 0.9))
		assert.Equal(t, "95", SuggestBestCandidate(g).Value.Value)
	})

	t.Run("suggestion does not select", func(t *testing.T) {
		g := group(glucoseValue("95", "mg/dL", "70-100", 0.9))
		_ = SuggestBestCandidate(g)
		assert.Nil(t, g.SelectedCandidateID)
	})

	t.Run("empty group", func(t *testing.T) {
		assert.Nil(t, SuggestBestCandidate(&entity.ImportGroup{}))
		assert.Nil(t, SuggestBestCandidate(nil))
	})
}

type fakeExtractor struct {
	values []entity.RawExtractedValue
	err    error
}

func (f *fakeExtractor) Extract(context.Context, string) ([]entity.RawExtractedValue, error) {
	return f.values, f.err
}

func testService(t *testing.T, ex *fakeExtractor) *Service {
	t.Helper()
	c := catalog.New()
	return NewService(discardLogger(), match.NewMatcher(c), ex, NewBuilder(c, validate.New()), "test-model")
}

func TestMapDocument(t *testing.T) {
	ex := &fakeExtractor{values: []entity.RawExtractedValue{
		{TestName: "HbA1c", TestType: constants.TestTypeBlood, Value: "5.4", Unit: "%", ReferenceRange: "4.0-5.6", Confidence: 1.0},
		{TestName: "Sodium", TestType: constants.TestTypeBlood, Value: "140", Confidence: 0.9},
		{TestName: "Mystery Assay", TestType: constants.TestTypeBlood, Value: "42", Confidence: 0.6},
	}}
	s := testService(t, ex)
	docID := uuid.New()

	result, err := s.MapDocument(context.Background(), docID, "report text")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, docID, result.DocumentID)
	assert.Len(t, result.RawValues, 3, "unmatched values stay in the audit trail")
	require.Len(t, result.StandardizedValues, 2)

	a1c := result.StandardizedValues[0]
	assert.Equal(t, "hemoglobin_a1c", a1c.Key)
	assert.Equal(t, "Hemoglobin A1c", a1c.DisplayName)
	assert.Equal(t, "HbA1c", a1c.OriginalName)

	sodium := result.StandardizedValues[1]
	assert.Equal(t, "sodium", sodium.Key)
	assert.Equal(t, "mmol/L", sodium.Unit, "catalog unit fills the gap")
	assert.Equal(t, "136-145", sodium.ReferenceRange, "catalog range fills the gap")

	assert.Len(t, result.ImportGroups, 2)
	assert.True(t, result.NeedsReview)
	assert.Equal(t, "test-model", result.ModelID)
	assert.InDelta(t, 0.95, float64(result.OverallConfidence), 1e-3)
	assert.False(t, result.CreatedAt.IsZero())
}

func TestMapDocumentNothingExtracted(t *testing.T) {
	s := testService(t, &fakeExtractor{})

	result, err := s.MapDocument(context.Background(), uuid.New(), "no labs here")
	require.NoError(t, err)
	assert.Empty(t, result.ImportGroups)
	assert.False(t, result.NeedsReview, "nothing to review when nothing mapped")
	assert.Zero(t, result.OverallConfidence)
}

func TestMapDocumentExtractionError(t *testing.T) {
	s := testService(t, &fakeExtractor{err: errors.New("completion unavailable")})

	_, err := s.MapDocument(context.Background(), uuid.New(), "text")
	require.Error(t, err)
}
