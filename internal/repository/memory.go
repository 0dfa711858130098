package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
)

// memoryRepository keeps everything in process memory. It backs tests
// and the zero-setup demo mode; data does not survive a restart.
type memoryRepository struct {
	logger *slog.Logger

	mu     sync.RWMutex
	docs   map[uuid.UUID]*entity.DocumentRecord
	byHash map[string]uuid.UUID
	drafts map[uuid.UUID]*entity.MappingResult
	values map[uuid.UUID][]entity.LabValue
}

func NewMemoryRepository(logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &memoryRepository{
		logger: logger,
		docs:   make(map[uuid.UUID]*entity.DocumentRecord),
		byHash: make(map[string]uuid.UUID),
		drafts: make(map[uuid.UUID]*entity.MappingResult),
		values: make(map[uuid.UUID][]entity.LabValue),
	}
}

func (r *memoryRepository) CreateDocument(_ context.Context, doc *entity.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[doc.ID]; exists {
		return common.NewAppError(common.CodeConflict, "document already exists", nil)
	}
	if doc.ContentHash != "" {
		if _, exists := r.byHash[doc.ContentHash]; exists {
			return common.NewAppError(common.CodeConflict, "document with same content already exists", nil)
		}
	}

	now := time.Now().UTC()
	cp := copyDocument(doc)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = now
	}
	r.docs[cp.ID] = cp
	if cp.ContentHash != "" {
		r.byHash[cp.ContentHash] = cp.ID
	}
	return nil
}

func (r *memoryRepository) GetDocument(_ context.Context, id uuid.UUID) (*entity.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	return copyDocument(doc), nil
}

func (r *memoryRepository) GetDocumentByHash(_ context.Context, hash string) (*entity.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[hash]
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	return copyDocument(r.docs[id]), nil
}

func (r *memoryRepository) ListDocuments(_ context.Context, filter ListFilter) ([]entity.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]entity.DocumentRecord, 0, len(r.docs))
	for _, doc := range r.docs {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && doc.Priority != *filter.Priority {
			continue
		}
		all = append(all, *copyDocument(doc))
	}
	// Newest first, ties broken by ID so pagination stays stable.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return nil, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	now := time.Now().UTC()
	doc.Status = status
	doc.UpdatedAt = now
	if status.IsTerminal() && doc.ProcessedAt == nil {
		doc.ProcessedAt = &now
	}
	return nil
}

func (r *memoryRepository) SetProcessingError(_ context.Context, id uuid.UUID, message string, retryCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	msg := message
	doc.LastError = &msg
	doc.RetryCount = retryCount
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) FetchQueued(_ context.Context) ([]entity.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.DocumentRecord
	for _, doc := range r.docs {
		if doc.Status == constants.DocumentQueued || doc.Status == constants.DocumentProcessing {
			out = append(out, *copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) SaveDraftMappingResult(_ context.Context, docID uuid.UUID, result *entity.MappingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[docID]; !ok {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	r.drafts[docID] = copyMappingResult(result)
	return nil
}

func (r *memoryRepository) GetDraftMappingResult(_ context.Context, docID uuid.UUID) (*entity.MappingResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	draft, ok := r.drafts[docID]
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, "no draft mapping result for document", nil)
	}
	return copyMappingResult(draft), nil
}

func (r *memoryRepository) SaveAcceptedValues(_ context.Context, docID uuid.UUID, values []entity.LabValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[docID]; !ok {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	cp := make([]entity.LabValue, len(values))
	copy(cp, values)
	r.values[docID] = cp
	return nil
}

func (r *memoryRepository) ListAcceptedValues(_ context.Context, docID uuid.UUID) ([]entity.LabValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.values[docID]
	out := make([]entity.LabValue, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *memoryRepository) Ping(context.Context) error { return nil }

func (r *memoryRepository) Close() error { return nil }

func copyDocument(doc *entity.DocumentRecord) *entity.DocumentRecord {
	cp := *doc
	if doc.LastError != nil {
		msg := *doc.LastError
		cp.LastError = &msg
	}
	if doc.ProcessedAt != nil {
		ts := *doc.ProcessedAt
		cp.ProcessedAt = &ts
	}
	return &cp
}

func copyMappingResult(result *entity.MappingResult) *entity.MappingResult {
	cp := *result
	cp.RawValues = make([]entity.RawExtractedValue, len(result.RawValues))
	copy(cp.RawValues, result.RawValues)
	cp.StandardizedValues = make([]entity.StandardizedValue, len(result.StandardizedValues))
	copy(cp.StandardizedValues, result.StandardizedValues)
	cp.ImportGroups = make([]entity.ImportGroup, len(result.ImportGroups))
	for i, g := range result.ImportGroups {
		gc := g
		gc.Candidates = make([]entity.ImportCandidate, len(g.Candidates))
		copy(gc.Candidates, g.Candidates)
		if g.SelectedCandidateID != nil {
			id := *g.SelectedCandidateID
			gc.SelectedCandidateID = &id
		}
		cp.ImportGroups[i] = gc
	}
	return &cp
}
