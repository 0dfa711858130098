package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
)

// DocumentRecord is an ingested lab report document.
type DocumentRecord struct {
	ID          uuid.UUID                `json:"id"`
	Filename    string                   `json:"filename"`
	ContentType string                   `json:"content_type"`
	StoragePath string                   `json:"storage_path"`
	ContentHash string                   `json:"content_hash"`
	SizeBytes   int64                    `json:"size_bytes"`
	Priority    constants.Priority       `json:"priority"`
	Status      constants.DocumentStatus `json:"status"`
	RetryCount  int                      `json:"retry_count"`
	LastError   *string                  `json:"last_error,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	ProcessedAt *time.Time               `json:"processed_at,omitempty"`
}
