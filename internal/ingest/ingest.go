// Package ingest registers lab report files: content-hash deduplication,
// blob storage, document rows and the handoff to the processing queue.
package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	Enqueued     bool
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Enqueuer hands registered documents to the processing queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, docID uuid.UUID, priority constants.Priority) (uuid.UUID, error)
}
