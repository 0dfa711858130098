package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/blob"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/core/async"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/export"
	"github.com/healthfolio/labingest/internal/ingest"
	"github.com/healthfolio/labingest/internal/mapping"
	"github.com/healthfolio/labingest/internal/repository"
)

type noopProcessor struct{}

func (noopProcessor) Process(ctx context.Context, doc *entity.DocumentRecord) error {
	return nil
}

type serverFixture struct {
	srv     *httptest.Server
	repo    repository.DocumentRepository
	queue   *async.DocumentQueue
	ingest  *ingest.Service
	baseURL string
}

// newServerFixture wires the full HTTP stack onto the in-memory backends.
// The queue is never started so enqueued items stay visible in snapshots.
func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryRepository(logger)
	blobs, err := blob.NewFSStore(t.TempDir(), logger)
	require.NoError(t, err)

	queue := async.NewDocumentQueue(noopProcessor{}, repo, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		queue.Shutdown(ctx)
	})

	ingestSvc := ingest.NewService(logger, repo, blobs, queue)
	review := mapping.NewReviewService(repo, logger)
	exporter := export.NewService(repo, logger)

	cfg := common.ServerConfig{
		HTTPAddr:       ":0",
		RateLimit:      1000,
		RateWindow:     time.Minute,
		MaxUploadBytes: 8 << 20,
	}
	s := New(logger, cfg, ingestSvc, repo, review, exporter, queue, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &serverFixture{
		srv:     srv,
		repo:    repo,
		queue:   queue,
		ingest:  ingestSvc,
		baseURL: srv.URL,
	}
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUploadDocument(t *testing.T) {
	fx := newServerFixture(t)
	content := []byte("Glucose | 95 | mg/dL | 70-100 | | 0.97")

	body, contentType := multipartUpload(t, "panel.txt", content, map[string]string{
		"priority": "high",
		"enqueue":  "false",
	})
	resp, err := http.Post(fx.baseURL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	first := decodeBody[uploadResponse](t, resp)
	require.NotNil(t, first.Document)
	assert.False(t, first.Deduplicated)
	assert.Equal(t, "panel.txt", first.Document.Filename)
	assert.Equal(t, constants.PriorityHigh, first.Document.Priority)
	assert.Equal(t, constants.DocumentPending, first.Document.Status)

	// Same bytes again: the known document comes back, nothing new stored.
	body, contentType = multipartUpload(t, "panel_copy.txt", content, map[string]string{"enqueue": "false"})
	resp, err = http.Post(fx.baseURL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	second := decodeBody[uploadResponse](t, resp)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.Document.ID, second.Document.ID)
}

func TestUploadDocumentValidation(t *testing.T) {
	fx := newServerFixture(t)

	t.Run("unknown priority", func(t *testing.T) {
		body, contentType := multipartUpload(t, "panel.txt", []byte("data"), map[string]string{"priority": "whenever"})
		resp, err := http.Post(fx.baseURL+"/api/v1/documents", contentType, body)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("priority", "normal"))
		require.NoError(t, mw.Close())
		resp, err := http.Post(fx.baseURL+"/api/v1/documents", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		body, contentType := multipartUpload(t, "notes.docx", []byte("data"), nil)
		resp, err := http.Post(fx.baseURL+"/api/v1/documents", contentType, body)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		errBody := decodeBody[errorResponse](t, resp)
		assert.Equal(t, common.CodeInvalid, errBody.Code)
	})
}

func TestGetDocument(t *testing.T) {
	fx := newServerFixture(t)
	doc, _, err := fx.ingest.RegisterUpload(context.Background(), "cbc.pdf", []byte("%PDF-1.4"), constants.PriorityNormal, false)
	require.NoError(t, err)

	resp, err := http.Get(fx.baseURL + "/api/v1/documents/" + doc.ID.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[entity.DocumentRecord](t, resp)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "cbc.pdf", got.Filename)

	resp, err = http.Get(fx.baseURL + "/api/v1/documents/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(fx.baseURL + "/api/v1/documents/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	fx := newServerFixture(t)
	ctx := context.Background()
	_, _, err := fx.ingest.RegisterUpload(ctx, "a.pdf", []byte("content a"), constants.PriorityNormal, false)
	require.NoError(t, err)
	_, _, err = fx.ingest.RegisterUpload(ctx, "b.pdf", []byte("content b"), constants.PriorityUrgent, false)
	require.NoError(t, err)

	resp, err := http.Get(fx.baseURL + "/api/v1/documents/?priority=urgent")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[listDocumentsResponse](t, resp)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "b.pdf", got.Documents[0].Filename)

	resp, err = http.Get(fx.baseURL + "/api/v1/documents/?status=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func seedDraft(t *testing.T, fx *serverFixture, groups int) (uuid.UUID, *entity.MappingResult) {
	t.Helper()
	ctx := context.Background()
	doc, _, err := fx.ingest.RegisterUpload(ctx, "panel.pdf", []byte("draft seed"), constants.PriorityNormal, false)
	require.NoError(t, err)

	draft := &entity.MappingResult{
		DocumentID:  doc.ID,
		NeedsReview: true,
		CreatedAt:   time.Now().UTC(),
	}
	keys := []string{"glucose_fasting", "sodium"}
	names := []string{"Fasting Glucose", "Sodium"}
	for i := 0; i < groups; i++ {
		draft.ImportGroups = append(draft.ImportGroups, entity.ImportGroup{
			CanonicalKey: keys[i],
			DisplayName:  names[i],
			Candidates: []entity.ImportCandidate{
				{
					ID: uuid.New(),
					Value: entity.StandardizedValue{
						Key: keys[i], DisplayName: names[i],
						Value: "95", Unit: "mg/dL", MappingConfidence: 0.9,
					},
					Verdict: entity.VerdictValid,
				},
				{
					ID: uuid.New(),
					Value: entity.StandardizedValue{
						Key: keys[i], DisplayName: names[i],
						Value: "410", Unit: "mg/dL", MappingConfidence: 0.4,
					},
					Verdict: entity.VerdictOutOfRange,
					Reason:  "above reference range",
				},
			},
		})
	}
	require.NoError(t, fx.repo.SaveDraftMappingResult(ctx, doc.ID, draft))
	require.NoError(t, fx.repo.UpdateStatus(ctx, doc.ID, constants.DocumentReview))
	return doc.ID, draft
}

func TestDraftAndReviewFlow(t *testing.T) {
	fx := newServerFixture(t)
	docID, draft := seedDraft(t, fx, 2)

	resp, err := http.Get(fx.baseURL + "/api/v1/documents/" + docID.String() + "/draft")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[draftResponse](t, resp)
	require.NotNil(t, got.Draft)
	assert.Len(t, got.Draft.ImportGroups, 2)
	assert.Empty(t, got.Suggestions)

	// Ranked suggestions are advisory; the draft stays unselected.
	resp, err = http.Get(fx.baseURL + "/api/v1/documents/" + docID.String() + "/draft?suggest=true")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeBody[draftResponse](t, resp)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, draft.ImportGroups[0].Candidates[0].ID, got.Suggestions["glucose_fasting"])
	for i := range got.Draft.ImportGroups {
		assert.Nil(t, got.Draft.ImportGroups[i].SelectedCandidateID)
	}

	// Review both groups; the document completes and values land.
	selections := map[string]map[string]string{
		"selections": {
			"glucose_fasting": draft.ImportGroups[0].Candidates[0].ID.String(),
			"sodium":          draft.ImportGroups[1].Candidates[0].ID.String(),
		},
	}
	payload, err := json.Marshal(selections)
	require.NoError(t, err)
	resp, err = http.Post(fx.baseURL+"/api/v1/documents/"+docID.String()+"/review", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reviewed := decodeBody[draftResponse](t, resp)
	assert.True(t, reviewed.Draft.FullyReviewed())

	docAfter, err := fx.repo.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentCompleted, docAfter.Status)

	resp, err = http.Get(fx.baseURL + "/api/v1/documents/" + docID.String() + "/values")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	values := decodeBody[listValuesResponse](t, resp)
	assert.Equal(t, 2, values.Count)
}

func TestReviewValidation(t *testing.T) {
	fx := newServerFixture(t)
	docID, _ := seedDraft(t, fx, 1)

	post := func(body string) *http.Response {
		resp, err := http.Post(fx.baseURL+"/api/v1/documents/"+docID.String()+"/review", "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"selections": {}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(`{"selections": {"glucose_fasting": "not-a-uuid"}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(`{"selections": {"unknown_key": "` + uuid.NewString() + `"}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	fx := newServerFixture(t)
	docID, draft := seedDraft(t, fx, 1)

	selections := map[string]map[string]string{
		"selections": {"glucose_fasting": draft.ImportGroups[0].Candidates[0].ID.String()},
	}
	payload, err := json.Marshal(selections)
	require.NoError(t, err)
	resp, err := http.Post(fx.baseURL+"/api/v1/documents/"+docID.String()+"/review", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(fx.baseURL + "/api/v1/documents/" + docID.String() + "/export.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	cell, err := f.GetCellValue("Lab Values", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Fasting Glucose", cell)
}

func TestQueueEndpoints(t *testing.T) {
	fx := newServerFixture(t)
	ctx := context.Background()
	doc, _, err := fx.ingest.RegisterUpload(ctx, "queued.pdf", []byte("queued content"), constants.PriorityNormal, true)
	require.NoError(t, err)

	resp, err := http.Get(fx.baseURL + "/api/v1/queue/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody[queueSnapshotResponse](t, resp)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, doc.ID, snap.Items[0].DocumentID)
	assert.Equal(t, 1, snap.Depth)

	itemID := snap.Items[0].ID
	resp, err = http.Post(fx.baseURL+"/api/v1/queue/items/"+itemID.String()+"/cancel", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	docAfter, err := fx.repo.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentPending, docAfter.Status)

	resp, err = http.Post(fx.baseURL+"/api/v1/queue/items/"+uuid.NewString()+"/cancel", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, _, err = fx.ingest.RegisterUpload(ctx, "another.pdf", []byte("other content"), constants.PriorityNormal, true)
	require.NoError(t, err)
	resp, err = http.Post(fx.baseURL+"/api/v1/queue/clear", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(fx.baseURL + "/api/v1/queue/")
	require.NoError(t, err)
	snap = decodeBody[queueSnapshotResponse](t, resp)
	assert.Empty(t, snap.Items)
}

func TestHealthz(t *testing.T) {
	fx := newServerFixture(t)

	resp, err := http.Get(fx.baseURL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}
