package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes
// for document exports.
type Service struct {
	repo   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(repo repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportDocumentXLSX returns an XLSX workbook (as bytes) with the accepted
// lab values for one document. Groups still awaiting review go on a second
// sheet so the spreadsheet never silently drops unresolved results.
func (s *Service) ExportDocumentXLSX(ctx context.Context, docID uuid.UUID) ([]byte, error) {
	start := time.Now()

	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	values, err := s.repo.ListAcceptedValues(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("query lab values: %w", err)
	}

	// The draft is absent for documents that never reached mapping.
	var pending []entity.ImportGroup
	draft, err := s.repo.GetDraftMappingResult(ctx, docID)
	if err != nil {
		if common.CodeOf(err) != common.CodeNotFound {
			return nil, err
		}
	} else {
		for _, g := range draft.ImportGroups {
			if g.SelectedCandidateID == nil {
				pending = append(pending, g)
			}
		}
	}

	f := excelize.NewFile()
	const sheet = "Lab Values"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Parameter",
		"Key",
		"Category",
		"Value",
		"Unit",
		"Reference Range",
		"Abnormal",
		"Accepted At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, v := range values {
		write := func(col int, val any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, val)
		}

		write(1, v.DisplayName)
		write(2, v.Key)
		write(3, string(v.Category))
		write(4, v.Value)
		write(5, v.Unit)
		write(6, v.ReferenceRange)
		if v.IsAbnormal {
			write(7, "YES")
		} else {
			write(7, "")
		}
		if !v.CreatedAt.IsZero() {
			write(8, v.CreatedAt.Format("2006-01-02"))
		} else {
			write(8, "")
		}
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 28) // parameter
	_ = f.SetColWidth(sheet, "B", "B", 22) // key
	_ = f.SetColWidth(sheet, "C", "C", 22) // category
	_ = f.SetColWidth(sheet, "D", "F", 16) // value, unit, range
	_ = f.SetColWidth(sheet, "G", "G", 10) // abnormal
	_ = f.SetColWidth(sheet, "H", "H", 14) // date

	if len(pending) > 0 {
		if err := s.writePendingSheet(f, pending); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"document_id", docID.String(),
		"filename", doc.Filename,
		"rows", len(values),
		"pending_groups", len(pending),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writePendingSheet(f *excelize.File, pending []entity.ImportGroup) error {
	const sheet = "Pending Review"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Parameter", "Key", "Candidates", "Values"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, g := range pending {
		write := func(col int, val any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, val)
		}

		write(1, g.DisplayName)
		write(2, g.CanonicalKey)
		write(3, len(g.Candidates))
		write(4, truncate(joinCandidates(g.Candidates), 140))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 22)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 64)
	return nil
}

// joinCandidates renders the competing values of a group on one line,
// e.g. "95 mg/dL (valid); 5.3 mmol/L (valid)".
func joinCandidates(candidates []entity.ImportCandidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		part := c.Value.Value
		if c.Value.Unit != "" {
			part += " " + c.Value.Unit
		}
		part += " (" + string(c.Verdict) + ")"
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
