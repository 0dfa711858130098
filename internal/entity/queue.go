package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
)

// QueueItem is one unit of work in the document processing queue.
type QueueItem struct {
	ID          uuid.UUID             `json:"id"`
	DocumentID  uuid.UUID             `json:"document_id"`
	Priority    constants.Priority    `json:"priority"`
	Status      constants.QueueStatus `json:"status"`
	RetryCount  int                   `json:"retry_count"`
	LastError   string                `json:"last_error,omitempty"`
	EnqueuedAt  time.Time             `json:"enqueued_at"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}
