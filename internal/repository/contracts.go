package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/entity"
)

// ListFilter narrows ListDocuments. Nil or zero fields apply no constraint.
type ListFilter struct {
	Status   *constants.DocumentStatus
	Priority *constants.Priority
	Limit    int
	Offset   int
}

// DocumentRepository is the persistence boundary for documents, their
// draft mapping results and the accepted lab values.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *entity.DocumentRecord) error
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error)
	GetDocumentByHash(ctx context.Context, hash string) (*entity.DocumentRecord, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]entity.DocumentRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error
	SetProcessingError(ctx context.Context, id uuid.UUID, message string, retryCount int) error
	FetchQueued(ctx context.Context) ([]entity.DocumentRecord, error)

	SaveDraftMappingResult(ctx context.Context, docID uuid.UUID, result *entity.MappingResult) error
	GetDraftMappingResult(ctx context.Context, docID uuid.UUID) (*entity.MappingResult, error)

	SaveAcceptedValues(ctx context.Context, docID uuid.UUID, values []entity.LabValue) error
	ListAcceptedValues(ctx context.Context, docID uuid.UUID) ([]entity.LabValue, error)

	Ping(ctx context.Context) error
	Close() error
}
