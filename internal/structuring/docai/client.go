package docai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/healthfolio/labingest/internal/structuring"
)

// Submit uploads a document for structuring and returns the backend job ID.
func (c *Client) Submit(ctx context.Context, content []byte, contentType string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("docai.submit.start",
		"req_id", rid,
		"bytes", len(content),
		"content_type", contentType,
	)

	body := map[string]any{
		"content":      base64.StdEncoding.EncodeToString(content),
		"content_type": contentType,
	}
	raw, err := c.post(ctx, c.endpoint("/v1/documents"), body)
	if err != nil {
		c.log.Error("docai.submit.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("submit response missing job_id")
	}

	c.log.Info("docai.submit.ok",
		"req_id", rid,
		"job_id", out.JobID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.JobID, nil
}

// PollStatus reports the job's current state. Backend status labels are
// folded into the three JobState values; anything unrecognized is an error.
func (c *Client) PollStatus(ctx context.Context, jobID string) (structuring.JobState, error) {
	raw, err := c.get(ctx, c.endpoint("/v1/jobs/"+jobID))
	if err != nil {
		return "", err
	}

	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode job status: %w", err)
	}

	switch strings.ToLower(out.Status) {
	case "queued", "pending", "running", "processing":
		c.log.Debug("docai.status", "job_id", jobID, "status", out.Status)
		return structuring.JobPending, nil
	case "succeeded", "completed", "done":
		return structuring.JobSucceeded, nil
	case "failed", "error":
		c.log.Warn("docai.job_failed", "job_id", jobID, "error", out.Error)
		return structuring.JobFailed, nil
	default:
		return "", fmt.Errorf("unknown job status %q", out.Status)
	}
}

// FetchResult downloads a finished job's output and validates it against
// the result schema. A missing confidence is estimated from the text.
func (c *Client) FetchResult(ctx context.Context, jobID string) (structuring.Result, error) {
	start := time.Now()

	raw, err := c.get(ctx, c.endpoint("/v1/jobs/"+jobID+"/result"))
	if err != nil {
		return structuring.Result{}, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return structuring.Result{}, fmt.Errorf("decode job result: %w", err)
	}
	if err := c.schema.Validate(payload); err != nil {
		return structuring.Result{}, fmt.Errorf("job result does not match schema: %w", err)
	}

	var res structuring.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return structuring.Result{}, fmt.Errorf("decode job result: %w", err)
	}
	if res.Confidence == 0 {
		res.Confidence = heuristicConfidence(res.Text)
	}

	c.log.Info("docai.result.ok",
		"job_id", jobID,
		"text_len", len(res.Text),
		"pages", res.Pages,
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("docai response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("docai status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
