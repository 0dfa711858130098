// Package async runs document processing in the background. The queue owns
// every queue item state transition; workers, retry timers and cancellation
// all funnel through the same mutex.
package async

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/metrics"
)

// Processor handles one document end to end.
type Processor interface {
	Process(ctx context.Context, doc *entity.DocumentRecord) error
}

// DocumentStore is the slice of the repository the queue drives.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error
	SetProcessingError(ctx context.Context, id uuid.UUID, message string, retryCount int) error
	FetchQueued(ctx context.Context) ([]entity.DocumentRecord, error)
}

// DocumentQueue dispatches documents to workers by priority, retries
// failures with exponential backoff, and supports cancellation. Items of
// equal priority are served in arrival order.
type DocumentQueue struct {
	logger      *slog.Logger
	proc        Processor
	store       DocumentStore
	collector   *metrics.Collector
	workers     int
	maxRetries  int
	backoffBase float64
	timeout     time.Duration

	notify chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu        sync.Mutex
	pending   []*entity.QueueItem
	byID      map[uuid.UUID]*entity.QueueItem
	inflight  map[uuid.UUID]context.CancelFunc
	timers    map[uuid.UUID]*time.Timer
	cancelled map[uuid.UUID]struct{}
	closed    bool
}

type Option func(*DocumentQueue)

func WithWorkers(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.maxRetries = n
		}
	}
}

func WithBackoffBase(b float64) Option {
	return func(q *DocumentQueue) {
		if b > 0 {
			q.backoffBase = b
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *DocumentQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(q *DocumentQueue) {
		q.collector = c
	}
}

func NewDocumentQueue(proc Processor, store DocumentStore, logger *slog.Logger, opts ...Option) *DocumentQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &DocumentQueue{
		logger:      logger,
		proc:        proc,
		store:       store,
		workers:     3,
		maxRetries:  3,
		backoffBase: 2.0,
		timeout:     15 * time.Minute,
		notify:      make(chan struct{}, 256),
		stop:        make(chan struct{}),
		byID:        make(map[uuid.UUID]*entity.QueueItem),
		inflight:    make(map[uuid.UUID]context.CancelFunc),
		timers:      make(map[uuid.UUID]*time.Timer),
		cancelled:   make(map[uuid.UUID]struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Start launches the worker pool. Items enqueued before Start wait in order
// and are picked up as soon as the workers come online.
func (q *DocumentQueue) Start(ctx context.Context) {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.worker(ctx, i+1)
		}
	})
}

// Enqueue registers a document for processing and returns the queue item ID.
// The document moves to QUEUED immediately so a restart can recover it.
func (q *DocumentQueue) Enqueue(ctx context.Context, docID uuid.UUID, priority constants.Priority) (uuid.UUID, error) {
	if priority == "" {
		priority = constants.PriorityNormal
	}

	if q.isClosed() {
		return uuid.Nil, common.NewAppError(common.CodeQueue, "queue is shut down", nil)
	}

	// Mark the document QUEUED before the item becomes claimable, so a
	// worker's PROCESSING write can never be overwritten by this one.
	if err := q.store.UpdateStatus(ctx, docID, constants.DocumentQueued); err != nil {
		q.logger.Warn("queue.enqueue.status_update_failed", "document_id", docID, "error", err)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return uuid.Nil, common.NewAppError(common.CodeQueue, "queue is shut down", nil)
	}
	item := &entity.QueueItem{
		ID:         uuid.New(),
		DocumentID: docID,
		Priority:   priority,
		Status:     constants.QueueItemQueued,
		EnqueuedAt: time.Now().UTC(),
	}
	q.byID[item.ID] = item
	q.insertLocked(item)
	q.mu.Unlock()

	q.signal()
	q.setDepth()
	if q.collector != nil {
		q.collector.EnqueuedTotal.Inc()
	}
	q.logger.Info("queue.enqueued",
		"item_id", item.ID,
		"document_id", docID,
		"priority", priority,
	)
	return item.ID, nil
}

// Cancel removes an item from the queue. A queued or retrying item is
// dropped outright; a processing item has its context cancelled. In every
// case the document reverts to PENDING so it can be enqueued again later.
func (q *DocumentQueue) Cancel(ctx context.Context, itemID uuid.UUID) error {
	q.mu.Lock()
	item, ok := q.byID[itemID]
	if !ok {
		q.mu.Unlock()
		return common.NewAppError(common.CodeNotFound, "queue item not found", nil)
	}
	switch item.Status {
	case constants.QueueItemCompleted, constants.QueueItemFailed:
		q.mu.Unlock()
		return common.NewAppError(common.CodeConflict, "queue item already finished", nil)
	case constants.QueueItemQueued:
		q.removePendingLocked(itemID)
	case constants.QueueItemRetrying:
		if t, ok := q.timers[itemID]; ok {
			t.Stop()
			delete(q.timers, itemID)
		}
	case constants.QueueItemProcessing:
		q.cancelled[itemID] = struct{}{}
		if cancel, ok := q.inflight[itemID]; ok {
			cancel()
		}
	}
	docID := item.DocumentID
	delete(q.byID, itemID)
	q.mu.Unlock()

	if err := q.store.UpdateStatus(ctx, docID, constants.DocumentPending); err != nil {
		q.logger.Warn("queue.cancel.status_update_failed", "document_id", docID, "error", err)
	}
	q.setDepth()
	q.logger.Info("queue.cancelled", "item_id", itemID, "document_id", docID)
	return nil
}

// Clear cancels everything and resets the queue to empty. Documents that
// had not finished revert to PENDING.
func (q *DocumentQueue) Clear(ctx context.Context) {
	q.mu.Lock()
	var docs []uuid.UUID
	for id, item := range q.byID {
		switch item.Status {
		case constants.QueueItemQueued, constants.QueueItemRetrying:
			docs = append(docs, item.DocumentID)
		case constants.QueueItemProcessing:
			q.cancelled[id] = struct{}{}
			if cancel, ok := q.inflight[id]; ok {
				cancel()
			}
			docs = append(docs, item.DocumentID)
		}
		delete(q.byID, id)
	}
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	cleared := len(q.pending)
	q.pending = nil
	q.mu.Unlock()

	for _, docID := range docs {
		if err := q.store.UpdateStatus(ctx, docID, constants.DocumentPending); err != nil {
			q.logger.Warn("queue.clear.status_update_failed", "document_id", docID, "error", err)
		}
	}
	q.setDepth()
	q.logger.Info("queue.cleared", "pending", cleared, "reverted", len(docs))
}

// Recover re-enqueues documents the store still shows as queued or
// processing, typically after a restart cut their previous run short.
func (q *DocumentQueue) Recover(ctx context.Context) error {
	docs, err := q.store.FetchQueued(ctx)
	if err != nil {
		return common.WrapError(err, "fetch queued documents")
	}
	for _, doc := range docs {
		if _, err := q.Enqueue(ctx, doc.ID, doc.Priority); err != nil {
			return err
		}
	}
	if len(docs) > 0 {
		q.logger.Info("queue.recovered", "documents", len(docs))
	}
	return nil
}

// Snapshot returns a copy of every tracked item, oldest first.
func (q *DocumentQueue) Snapshot() []entity.QueueItem {
	q.mu.Lock()
	out := make([]entity.QueueItem, 0, len(q.byID))
	for _, item := range q.byID {
		cp := *item
		if item.StartedAt != nil {
			t := *item.StartedAt
			cp.StartedAt = &t
		}
		if item.CompletedAt != nil {
			t := *item.CompletedAt
			cp.CompletedAt = &t
		}
		out = append(out, cp)
	}
	q.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Shutdown stops accepting work and waits for in-flight items. When the
// context expires first, in-flight processing is cancelled.
func (q *DocumentQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	close(q.stop)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context, cancelling in-flight work")
		q.mu.Lock()
		for _, cancel := range q.inflight {
			cancel()
		}
		q.mu.Unlock()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			q.logger.Error("workers did not exit after cancel")
		}
	}
}

func (q *DocumentQueue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()
	q.logger.Info("worker started", "worker_id", workerID)

	for {
		item := q.dequeue()
		if item == nil {
			select {
			case <-ctx.Done():
				q.logger.Info("worker stopped", "worker_id", workerID)
				return
			case <-q.stop:
				q.logger.Info("worker stopped", "worker_id", workerID)
				return
			case <-q.notify:
				continue
			}
		}
		q.runItem(ctx, item)
	}
}

// dequeue pops the highest-priority item and marks it PROCESSING in the
// same critical section, so Cancel never sees a claimed item as queued.
func (q *DocumentQueue) dequeue() *entity.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.pending) == 0 {
		return nil
	}
	item := q.pending[0]
	q.pending = q.pending[1:]
	now := time.Now().UTC()
	item.Status = constants.QueueItemProcessing
	item.StartedAt = &now
	return item
}

func (q *DocumentQueue) runItem(ctx context.Context, item *entity.QueueItem) {
	itemID := item.ID
	docID := item.DocumentID
	start := time.Now()
	q.setDepth()

	pctx, cancel := context.WithTimeout(ctx, q.timeout)
	q.mu.Lock()
	if _, wasCancelled := q.cancelled[itemID]; wasCancelled {
		// Cancelled between dequeue and here; never start the work.
		delete(q.cancelled, itemID)
		q.mu.Unlock()
		cancel()
		return
	}
	q.inflight[itemID] = cancel
	q.mu.Unlock()

	if err := q.store.UpdateStatus(pctx, docID, constants.DocumentProcessing); err != nil {
		q.logger.Warn("queue.item.status_update_failed", "document_id", docID, "error", err)
	}

	doc, err := q.store.GetDocument(pctx, docID)
	procErr := err
	if procErr == nil {
		procErr = q.proc.Process(pctx, doc)
	}
	cancel()

	q.mu.Lock()
	delete(q.inflight, itemID)
	if _, wasCancelled := q.cancelled[itemID]; wasCancelled {
		delete(q.cancelled, itemID)
		q.mu.Unlock()
		// Re-assert PENDING in case the PROCESSING update above raced
		// with the cancel's own status write.
		rctx, rcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rcancel()
		if err := q.store.UpdateStatus(rctx, docID, constants.DocumentPending); err != nil {
			q.logger.Warn("queue.cancel.status_update_failed", "document_id", docID, "error", err)
		}
		q.logger.Info("queue.item.cancelled", "item_id", itemID, "document_id", docID)
		return
	}
	q.mu.Unlock()

	if procErr != nil {
		q.handleFailure(item, procErr)
		return
	}

	q.mu.Lock()
	now := time.Now().UTC()
	item.Status = constants.QueueItemCompleted
	item.CompletedAt = &now
	q.mu.Unlock()

	if q.collector != nil {
		q.collector.DocumentsProcessedTotal.WithLabelValues("completed").Inc()
		q.collector.ProcessingDuration.Observe(time.Since(start).Seconds())
	}
	q.logger.Info("queue.item.completed",
		"item_id", itemID,
		"document_id", docID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// handleFailure schedules a retry or marks the item failed once the retry
// budget is spent. The document stays QUEUED during backoff so a restart
// still recovers it.
func (q *DocumentQueue) handleFailure(item *entity.QueueItem, procErr error) {
	q.mu.Lock()
	item.RetryCount++
	item.LastError = procErr.Error()
	retries := item.RetryCount
	itemID := item.ID
	docID := item.DocumentID
	q.mu.Unlock()

	pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pcancel()

	if retries >= q.maxRetries {
		q.mu.Lock()
		now := time.Now().UTC()
		item.Status = constants.QueueItemFailed
		item.CompletedAt = &now
		q.mu.Unlock()

		if err := q.store.SetProcessingError(pctx, docID, procErr.Error(), retries); err != nil {
			q.logger.Warn("queue.item.error_update_failed", "document_id", docID, "error", err)
		}
		if err := q.store.UpdateStatus(pctx, docID, constants.DocumentFailed); err != nil {
			q.logger.Warn("queue.item.status_update_failed", "document_id", docID, "error", err)
		}
		if q.collector != nil {
			q.collector.DocumentsProcessedTotal.WithLabelValues("failed").Inc()
		}
		q.logger.Error("queue.item.failed",
			"item_id", itemID,
			"document_id", docID,
			"attempts", retries,
			"error", procErr,
		)
		return
	}

	delay := q.backoffDelay(retries)
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	item.Status = constants.QueueItemRetrying
	q.timers[itemID] = time.AfterFunc(delay, func() { q.requeue(itemID) })
	q.mu.Unlock()

	if err := q.store.SetProcessingError(pctx, docID, procErr.Error(), retries); err != nil {
		q.logger.Warn("queue.item.error_update_failed", "document_id", docID, "error", err)
	}
	if err := q.store.UpdateStatus(pctx, docID, constants.DocumentQueued); err != nil {
		q.logger.Warn("queue.item.status_update_failed", "document_id", docID, "error", err)
	}
	if q.collector != nil {
		q.collector.RetriesTotal.Inc()
	}
	q.logger.Warn("queue.item.retry",
		"item_id", itemID,
		"document_id", docID,
		"attempt", retries,
		"delay", delay,
		"error", procErr,
	)
}

func (q *DocumentQueue) requeue(itemID uuid.UUID) {
	q.mu.Lock()
	delete(q.timers, itemID)
	item, ok := q.byID[itemID]
	if !ok || q.closed || item.Status != constants.QueueItemRetrying {
		q.mu.Unlock()
		return
	}
	item.Status = constants.QueueItemQueued
	retry := item.RetryCount
	q.insertLocked(item)
	q.mu.Unlock()

	q.signal()
	q.setDepth()
	q.logger.Info("queue.requeued", "item_id", itemID, "attempt", retry+1)
}

// insertLocked places the item after every entry of equal or higher rank,
// which keeps arrival order within a priority class.
func (q *DocumentQueue) insertLocked(item *entity.QueueItem) {
	rank := item.Priority.Rank()
	for i := range q.pending {
		if q.pending[i].Priority.Rank() < rank {
			q.pending = append(q.pending, nil)
			copy(q.pending[i+1:], q.pending[i:])
			q.pending[i] = item
			return
		}
	}
	q.pending = append(q.pending, item)
}

func (q *DocumentQueue) removePendingLocked(itemID uuid.UUID) {
	for i := range q.pending {
		if q.pending[i].ID == itemID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

func (q *DocumentQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *DocumentQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *DocumentQueue) setDepth() {
	if q.collector == nil {
		return
	}
	q.mu.Lock()
	n := len(q.pending)
	q.mu.Unlock()
	q.collector.QueueDepth.Set(float64(n))
}

func (q *DocumentQueue) backoffDelay(retry int) time.Duration {
	return time.Duration(math.Pow(q.backoffBase, float64(retry)) * float64(time.Second))
}
