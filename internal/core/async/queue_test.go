package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
)

type fakeQueueStore struct {
	mu     sync.Mutex
	docs   map[uuid.UUID]*entity.DocumentRecord
	status map[uuid.UUID]constants.DocumentStatus
	errMsg map[uuid.UUID]string
	errCnt map[uuid.UUID]int
}

func newFakeQueueStore() *fakeQueueStore {
	return &fakeQueueStore{
		docs:   map[uuid.UUID]*entity.DocumentRecord{},
		status: map[uuid.UUID]constants.DocumentStatus{},
		errMsg: map[uuid.UUID]string{},
		errCnt: map[uuid.UUID]int{},
	}
}

func (s *fakeQueueStore) addDoc(priority constants.Priority, status constants.DocumentStatus) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.docs[id] = &entity.DocumentRecord{ID: id, Filename: "report.pdf", Priority: priority}
	s.status[id] = status
	return id
}

func (s *fakeQueueStore) GetDocument(_ context.Context, id uuid.UUID) (*entity.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	cp := *doc
	cp.Status = s.status[id]
	return &cp, nil
}

func (s *fakeQueueStore) UpdateStatus(_ context.Context, id uuid.UUID, st constants.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[id] = st
	return nil
}

func (s *fakeQueueStore) SetProcessingError(_ context.Context, id uuid.UUID, msg string, retryCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg[id] = msg
	s.errCnt[id] = retryCount
	return nil
}

func (s *fakeQueueStore) FetchQueued(_ context.Context) ([]entity.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.DocumentRecord
	for id, doc := range s.docs {
		st := s.status[id]
		if st == constants.DocumentQueued || st == constants.DocumentProcessing {
			cp := *doc
			cp.Status = st
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *fakeQueueStore) statusOf(id uuid.UUID) constants.DocumentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[id]
}

func (s *fakeQueueStore) errorCountOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errCnt[id]
}

// fakeDocProcessor scripts per-document failures and can hold work open
// until the test releases it.
type fakeDocProcessor struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	failures map[uuid.UUID]int // remaining failures; negative means always fail
	started  chan uuid.UUID
	release  chan struct{}
}

func (p *fakeDocProcessor) Process(ctx context.Context, doc *entity.DocumentRecord) error {
	p.mu.Lock()
	p.calls = append(p.calls, doc.ID)
	var remaining int
	if p.failures != nil {
		remaining = p.failures[doc.ID]
		if remaining > 0 {
			p.failures[doc.ID] = remaining - 1
		}
	}
	p.mu.Unlock()

	if p.started != nil {
		p.started <- doc.ID
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if remaining != 0 {
		return errors.New("processing boom")
	}
	return nil
}

func (p *fakeDocProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeDocProcessor) callOrder() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uuid.UUID, len(p.calls))
	copy(out, p.calls)
	return out
}

func testQueue(t *testing.T, proc Processor, store DocumentStore, opts ...Option) *DocumentQueue {
	t.Helper()
	base := []Option{
		WithWorkers(1),
		WithBackoffBase(0.01), // sub-millisecond retry delays
		WithProcessTimeout(5 * time.Second),
	}
	q := NewDocumentQueue(proc, store, slog.New(slog.NewTextHandler(io.Discard, nil)), append(base, opts...)...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		q.Shutdown(ctx)
	})
	return q
}

func findItem(q *DocumentQueue, id uuid.UUID) (entity.QueueItem, bool) {
	for _, it := range q.Snapshot() {
		if it.ID == id {
			return it, true
		}
	}
	return entity.QueueItem{}, false
}

func TestEnqueuePriorityOrdering(t *testing.T) {
	store := newFakeQueueStore()
	proc := &fakeDocProcessor{started: make(chan uuid.UUID, 8), release: make(chan struct{})}
	q := testQueue(t, proc, store)
	ctx := context.Background()
	q.Start(ctx)

	first := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	_, err := q.Enqueue(ctx, first, constants.PriorityNormal)
	require.NoError(t, err)
	<-proc.started // the single worker is now held on the first document

	normal := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	urgent1 := store.addDoc(constants.PriorityUrgent, constants.DocumentPending)
	low := store.addDoc(constants.PriorityLow, constants.DocumentPending)
	urgent2 := store.addDoc(constants.PriorityUrgent, constants.DocumentPending)
	for _, tc := range []struct {
		id       uuid.UUID
		priority constants.Priority
	}{
		{normal, constants.PriorityNormal},
		{urgent1, constants.PriorityUrgent},
		{low, constants.PriorityLow},
		{urgent2, constants.PriorityUrgent},
	} {
		_, err := q.Enqueue(ctx, tc.id, tc.priority)
		require.NoError(t, err)
	}

	close(proc.release)
	require.Eventually(t, func() bool { return proc.callCount() == 5 },
		2*time.Second, 5*time.Millisecond)

	order := proc.callOrder()
	assert.Equal(t, []uuid.UUID{first, urgent1, urgent2, normal, low}, order,
		"urgent first, FIFO within a priority class, low last")
}

func TestRetryThenSuccess(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	proc := &fakeDocProcessor{failures: map[uuid.UUID]int{docID: 2}}
	q := testQueue(t, proc, store)
	ctx := context.Background()
	q.Start(ctx)

	itemID, err := q.Enqueue(ctx, docID, constants.PriorityNormal)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		it, ok := findItem(q, itemID)
		return ok && it.Status == constants.QueueItemCompleted
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, proc.callCount(), "two failures then the winning attempt")
	it, ok := findItem(q, itemID)
	require.True(t, ok)
	assert.Equal(t, 2, it.RetryCount)
	assert.NotNil(t, it.CompletedAt)
}

func TestRetriesExhausted(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	proc := &fakeDocProcessor{failures: map[uuid.UUID]int{docID: -1}}
	q := testQueue(t, proc, store)
	ctx := context.Background()
	q.Start(ctx)

	itemID, err := q.Enqueue(ctx, docID, constants.PriorityNormal)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		it, ok := findItem(q, itemID)
		return ok && it.Status == constants.QueueItemFailed
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, proc.callCount(), "exactly three attempts")
	assert.Equal(t, constants.DocumentFailed, store.statusOf(docID))
	assert.Equal(t, 3, store.errorCountOf(docID))

	// The failed item must never be scheduled again.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, proc.callCount())
}

func TestCancelQueuedItem(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	proc := &fakeDocProcessor{}
	q := testQueue(t, proc, store)
	ctx := context.Background()

	itemID, err := q.Enqueue(ctx, docID, constants.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentQueued, store.statusOf(docID))

	require.NoError(t, q.Cancel(ctx, itemID))
	assert.Equal(t, constants.DocumentPending, store.statusOf(docID),
		"cancel reverts the document to pending")
	assert.Empty(t, q.Snapshot())

	q.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, proc.callCount(), "a cancelled item is never processed")
}

func TestCancelUnknownItem(t *testing.T) {
	q := testQueue(t, &fakeDocProcessor{}, newFakeQueueStore())

	err := q.Cancel(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, common.CodeNotFound, common.CodeOf(err))
}

func TestCancelProcessingItem(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	proc := &fakeDocProcessor{started: make(chan uuid.UUID, 1), release: make(chan struct{})}
	q := testQueue(t, proc, store)
	ctx := context.Background()
	q.Start(ctx)

	itemID, err := q.Enqueue(ctx, docID, constants.PriorityNormal)
	require.NoError(t, err)
	<-proc.started

	require.NoError(t, q.Cancel(ctx, itemID))

	require.Eventually(t, func() bool {
		return store.statusOf(docID) == constants.DocumentPending && len(q.Snapshot()) == 0
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, proc.callCount(), "no retry after a cancel")
}

func TestClearQueue(t *testing.T) {
	store := newFakeQueueStore()
	proc := &fakeDocProcessor{}
	q := testQueue(t, proc, store)
	ctx := context.Background()

	var docs []uuid.UUID
	for i := 0; i < 3; i++ {
		id := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
		docs = append(docs, id)
		_, err := q.Enqueue(ctx, id, constants.PriorityNormal)
		require.NoError(t, err)
	}

	q.Clear(ctx)
	assert.Empty(t, q.Snapshot())
	for _, id := range docs {
		assert.Equal(t, constants.DocumentPending, store.statusOf(id))
	}
}

func TestRecoverRequeuesUnfinishedDocuments(t *testing.T) {
	store := newFakeQueueStore()
	queued := store.addDoc(constants.PriorityHigh, constants.DocumentQueued)
	processing := store.addDoc(constants.PriorityNormal, constants.DocumentProcessing)
	store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	store.addDoc(constants.PriorityNormal, constants.DocumentCompleted)

	q := testQueue(t, &fakeDocProcessor{}, store)
	require.NoError(t, q.Recover(context.Background()))

	snap := q.Snapshot()
	require.Len(t, snap, 2, "only queued and processing documents are recovered")
	recovered := map[uuid.UUID]bool{}
	for _, it := range snap {
		recovered[it.DocumentID] = true
	}
	assert.True(t, recovered[queued])
	assert.True(t, recovered[processing])
	assert.Equal(t, constants.DocumentQueued, store.statusOf(processing))
}

func TestEnqueueAfterShutdown(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	q := testQueue(t, &fakeDocProcessor{}, store)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	_, err := q.Enqueue(context.Background(), docID, constants.PriorityNormal)
	require.Error(t, err)
	assert.Equal(t, common.CodeQueue, common.CodeOf(err))
}

func TestWorkerConcurrencyBound(t *testing.T) {
	store := newFakeQueueStore()
	proc := &fakeDocProcessor{started: make(chan uuid.UUID, 8), release: make(chan struct{})}
	q := testQueue(t, proc, store, WithWorkers(2))
	ctx := context.Background()
	q.Start(ctx)

	for i := 0; i < 4; i++ {
		id := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
		_, err := q.Enqueue(ctx, id, constants.PriorityNormal)
		require.NoError(t, err)
	}

	<-proc.started
	<-proc.started
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, proc.callCount(), "no more work in flight than workers")

	close(proc.release)
	require.Eventually(t, func() bool { return proc.callCount() == 4 },
		2*time.Second, 5*time.Millisecond)
}

func TestShutdownWaitsForInflight(t *testing.T) {
	store := newFakeQueueStore()
	docID := store.addDoc(constants.PriorityNormal, constants.DocumentPending)
	proc := &fakeDocProcessor{started: make(chan uuid.UUID, 1), release: make(chan struct{})}
	q := testQueue(t, proc, store)
	ctx := context.Background()
	q.Start(ctx)

	itemID, err := q.Enqueue(ctx, docID, constants.PriorityNormal)
	require.NoError(t, err)
	<-proc.started

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(proc.release)
	}()

	sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	q.Shutdown(sctx)

	assert.Equal(t, 1, proc.callCount())
	it, ok := findItem(q, itemID)
	require.True(t, ok)
	assert.Equal(t, constants.QueueItemCompleted, it.Status, "in-flight work finishes before shutdown returns")
}

func TestBackoffDelayGrows(t *testing.T) {
	q := NewDocumentQueue(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, 2*time.Second, q.backoffDelay(1))
	assert.Equal(t, 4*time.Second, q.backoffDelay(2))
	assert.Less(t, q.backoffDelay(1), q.backoffDelay(2))
}
