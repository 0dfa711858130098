package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/repository"
)

type uploadResponse struct {
	Document     *entity.DocumentRecord `json:"document"`
	Deduplicated bool                   `json:"deduplicated"`
}

type listDocumentsResponse struct {
	Documents []entity.DocumentRecord `json:"documents"`
	Count     int                     `json:"count"`
}

type draftResponse struct {
	Draft       *entity.MappingResult `json:"draft"`
	Suggestions map[string]uuid.UUID  `json:"suggestions,omitempty"`
}

type reviewRequest struct {
	Selections map[string]string `json:"selections" validate:"required,min=1"`
}

type listValuesResponse struct {
	Values []entity.LabValue `json:"values"`
	Count  int               `json:"count"`
}

// handleUploadDocument accepts a multipart upload (field "file") and
// registers it. Identical content returns the already known document with
// 200 instead of storing a second copy.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalid, "parsing multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalid, `multipart field "file" is required`, err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalid, "reading upload", err))
		return
	}

	priority, ok := constants.ParsePriority(r.FormValue("priority"))
	if !ok {
		s.writeError(w, r, common.NewAppError(common.CodeInvalid,
			fmt.Sprintf("unknown priority %q", r.FormValue("priority")), nil))
		return
	}
	enqueue := !strings.EqualFold(r.FormValue("enqueue"), "false")

	doc, dedup, err := s.ingestSvc.RegisterUpload(r.Context(), header.Filename, content, priority, enqueue)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.collector != nil && !dedup {
		s.collector.DocumentsRegisteredTotal.Inc()
	}

	status := http.StatusCreated
	if dedup {
		status = http.StatusOK
	}
	s.writeJSON(w, status, uploadResponse{Document: doc, Deduplicated: dedup})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.repo.ListDocuments(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs, Count: len(docs)})
}

func parseListFilter(r *http.Request) (repository.ListFilter, error) {
	var filter repository.ListFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, ok := constants.ParseDocumentStatus(raw)
		if !ok {
			return filter, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("unknown status %q", raw), nil)
		}
		filter.Status = &status
	}
	if raw := q.Get("priority"); raw != "" {
		priority, ok := constants.ParsePriority(raw)
		if !ok {
			return filter, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("unknown priority %q", raw), nil)
		}
		filter.Priority = &priority
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("%s must be a non-negative integer", name), err)
		}
		*dst = n
	}
	return filter, nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := documentIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.repo.GetDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleGetDraft returns the draft mapping result. With ?suggest=true the
// response carries a ranked pick per unresolved group; nothing is selected
// on the draft itself.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	docID, err := documentIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	draft, err := s.repo.GetDraftMappingResult(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := draftResponse{Draft: draft}
	if strings.EqualFold(r.URL.Query().Get("suggest"), "true") {
		resp.Suggestions = map[string]uuid.UUID{}
		for i := range draft.ImportGroups {
			g := &draft.ImportGroups[i]
			if g.SelectedCandidateID != nil {
				continue
			}
			if best := mapping.SuggestBestCandidate(g); best != nil {
				resp.Suggestions[g.CanonicalKey] = best.ID
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	docID, err := documentIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	selections := make(map[string]uuid.UUID, len(req.Selections))
	for key, raw := range req.Selections {
		candID, err := uuid.Parse(raw)
		if err != nil {
			s.writeError(w, r, common.NewAppError(common.CodeInvalid,
				fmt.Sprintf("candidate id for %q is not a UUID", key), err))
			return
		}
		selections[key] = candID
	}

	draft, err := s.review.ApplySelections(r.Context(), docID, selections)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, draftResponse{Draft: draft})
}

func (s *Server) handleListValues(w http.ResponseWriter, r *http.Request) {
	docID, err := documentIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	values, err := s.repo.ListAcceptedValues(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listValuesResponse{Values: values, Count: len(values)})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	docID, err := documentIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.exporter.ExportDocumentXLSX(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("lab_values_%s.xlsx", docID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("server.export.write_failed", "document_id", docID, "error", err)
	}
}

func documentIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "documentID")
	docID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError(common.CodeInvalid,
			fmt.Sprintf("document id %q is not a UUID", raw), err)
	}
	return docID, nil
}
