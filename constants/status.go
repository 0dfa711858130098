package constants

import "strings"

// DocumentStatus tracks a document through the processing pipeline.
// Stable values (store these exact strings in DB).
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "PENDING"    // registered, not yet enqueued
	DocumentQueued     DocumentStatus = "QUEUED"     // waiting in the processing queue
	DocumentProcessing DocumentStatus = "PROCESSING" // a worker is on it
	DocumentReview     DocumentStatus = "REVIEW"     // draft mapping ready, awaiting review
	DocumentCompleted  DocumentStatus = "COMPLETED"  // accepted values persisted
	DocumentFailed     DocumentStatus = "FAILED"     // terminal failure
)

// IsTerminal reports whether no further pipeline work is expected.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentCompleted || s == DocumentFailed
}

// ParseDocumentStatus maps a free-form label to a DocumentStatus. Returns
// false for unknown labels.
func ParseDocumentStatus(input string) (DocumentStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "PENDING":
		return DocumentPending, true
	case "QUEUED":
		return DocumentQueued, true
	case "PROCESSING":
		return DocumentProcessing, true
	case "REVIEW":
		return DocumentReview, true
	case "COMPLETED":
		return DocumentCompleted, true
	case "FAILED":
		return DocumentFailed, true
	default:
		return "", false
	}
}

// QueueStatus is the lifecycle of a single queue item.
type QueueStatus string

const (
	QueueItemQueued     QueueStatus = "QUEUED"
	QueueItemProcessing QueueStatus = "PROCESSING"
	QueueItemRetrying   QueueStatus = "RETRYING"
	QueueItemCompleted  QueueStatus = "COMPLETED"
	QueueItemFailed     QueueStatus = "FAILED"
)

// Priority orders documents within the processing queue. Higher ranks are
// dispatched first; items of equal rank are served in arrival order.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Rank returns the numeric dispatch rank for the priority. Unknown values
// rank with PriorityNormal.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 0
	default:
		return 1
	}
}

// ParsePriority maps a free-form label to a Priority. Returns false for
// unknown labels.
func ParsePriority(input string) (Priority, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "LOW":
		return PriorityLow, true
	case "NORMAL", "", "DEFAULT":
		return PriorityNormal, true
	case "HIGH":
		return PriorityHigh, true
	case "URGENT", "STAT":
		return PriorityUrgent, true
	default:
		return "", false
	}
}
