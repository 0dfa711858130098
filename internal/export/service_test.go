package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository"
)

func exportFixture(t *testing.T) (*Service, repository.DocumentRepository, *entity.DocumentRecord) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryRepository(logger)

	doc := &entity.DocumentRecord{
		ID:          uuid.New(),
		Filename:    "annual_panel.pdf",
		ContentType: "application/pdf",
		ContentHash: "hash-export",
		Priority:    constants.PriorityNormal,
		Status:      constants.DocumentReview,
	}
	require.NoError(t, repo.CreateDocument(context.Background(), doc))

	return NewService(repo, logger), repo, doc
}

func TestExportDocumentXLSX(t *testing.T) {
	svc, repo, doc := exportFixture(t)
	ctx := context.Background()

	values := []entity.LabValue{
		{
			ID:             uuid.New(),
			DocumentID:     doc.ID,
			Key:            "glucose_fasting",
			DisplayName:    "Fasting Glucose",
			Category:       constants.CategoryGeneralChemistry,
			Value:          "95",
			Unit:           "mg/dL",
			ReferenceRange: "70-100",
			CreatedAt:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:          uuid.New(),
			DocumentID:  doc.ID,
			Key:         "sodium",
			DisplayName: "Sodium",
			Category:    constants.CategoryGeneralChemistry,
			Value:       "151",
			Unit:        "mmol/L",
			IsAbnormal:  true,
			CreatedAt:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, repo.SaveAcceptedValues(ctx, doc.ID, values))

	selected := uuid.New()
	draft := &entity.MappingResult{
		DocumentID: doc.ID,
		ImportGroups: []entity.ImportGroup{
			{
				CanonicalKey:        "sodium",
				DisplayName:         "Sodium",
				Candidates:          []entity.ImportCandidate{{ID: selected}},
				SelectedCandidateID: &selected,
			},
			{
				CanonicalKey: "hemoglobin_a1c",
				DisplayName:  "Hemoglobin A1c",
				Candidates: []entity.ImportCandidate{
					{
						ID:      uuid.New(),
						Value:   entity.StandardizedValue{Value: "5.4", Unit: "%"},
						Verdict: entity.VerdictValid,
					},
					{
						ID:      uuid.New(),
						Value:   entity.StandardizedValue{Value: "5.5", Unit: "%"},
						Verdict: entity.VerdictValid,
					},
				},
			},
		},
		NeedsReview: true,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.SaveDraftMappingResult(ctx, doc.ID, draft))

	out, err := svc.ExportDocumentXLSX(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	assert.ElementsMatch(t, []string{"Lab Values", "Pending Review"}, wb.GetSheetList())

	header, err := wb.GetCellValue("Lab Values", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Parameter", header)

	name, err := wb.GetCellValue("Lab Values", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Fasting Glucose", name)
	rangeCell, err := wb.GetCellValue("Lab Values", "F2")
	require.NoError(t, err)
	assert.Equal(t, "70-100", rangeCell)

	abnormal, err := wb.GetCellValue("Lab Values", "G3")
	require.NoError(t, err)
	assert.Equal(t, "YES", abnormal)

	// Only the unresolved group appears on the review sheet.
	pendingKey, err := wb.GetCellValue("Pending Review", "B2")
	require.NoError(t, err)
	assert.Equal(t, "hemoglobin_a1c", pendingKey)
	candidates, err := wb.GetCellValue("Pending Review", "C2")
	require.NoError(t, err)
	assert.Equal(t, "2", candidates)
	joined, err := wb.GetCellValue("Pending Review", "D2")
	require.NoError(t, err)
	assert.Contains(t, joined, "5.4 %")
	assert.Contains(t, joined, "valid")

	empty, err := wb.GetCellValue("Pending Review", "B3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExportDocumentWithoutDraft(t *testing.T) {
	svc, _, doc := exportFixture(t)

	out, err := svc.ExportDocumentXLSX(context.Background(), doc.ID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Lab Values"}, wb.GetSheetList())
}

func TestExportUnknownDocument(t *testing.T) {
	svc, _, _ := exportFixture(t)

	_, err := svc.ExportDocumentXLSX(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, common.CodeNotFound, common.CodeOf(err))
}
