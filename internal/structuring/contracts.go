// Package structuring defines the contract for the asynchronous document
// structuring backend that turns uploaded files into machine-readable text.
package structuring

import "context"

// JobState is the lifecycle of a structuring job on the backend.
type JobState string

const (
	JobPending   JobState = "PENDING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
)

// Result is the structured output of a finished job.
type Result struct {
	Text       string  `json:"text"`
	Pages      int     `json:"pages"`
	Confidence float32 `json:"confidence"`
}

// Service is the submit/poll/fetch contract. Jobs run on a minutes scale;
// callers own the polling cadence and the overall deadline.
type Service interface {
	Submit(ctx context.Context, content []byte, contentType string) (string, error)
	PollStatus(ctx context.Context, jobID string) (JobState, error)
	FetchResult(ctx context.Context, jobID string) (Result, error)
}
