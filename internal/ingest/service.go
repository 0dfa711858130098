package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/blob"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository"
)

// Service registers documents from uploads and the local filesystem.
type Service struct {
	logger *slog.Logger
	repo   repository.DocumentRepository
	blobs  blob.Store
	queue  Enqueuer
}

func NewService(logger *slog.Logger, repo repository.DocumentRepository, blobs blob.Store, queue Enqueuer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo, blobs: blobs, queue: queue}
}

// RegisterUpload stores content as a new document. A document whose hash
// is already known is returned as-is instead of being stored twice.
// When enqueue is set the new document is handed to the processing queue;
// an enqueue failure still leaves the document registered as PENDING.
func (s *Service) RegisterUpload(ctx context.Context, filename string, content []byte, priority constants.Priority, enqueue bool) (*entity.DocumentRecord, bool, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if !constants.IsAllowedExt(ext) {
		return nil, false, common.NewAppError(common.CodeInvalid, "unsupported or missing file extension", nil)
	}
	if len(content) == 0 {
		return nil, false, common.NewAppError(common.CodeInvalid, "empty file content", nil)
	}

	sum := sha256.Sum256(content)
	hashHex := hex.EncodeToString(sum[:])

	existing, err := s.repo.GetDocumentByHash(ctx, hashHex)
	if err == nil {
		s.logger.Info("ingest.deduplicated", "document_id", existing.ID, "filename", filename)
		return existing, true, nil
	}
	if common.CodeOf(err) != common.CodeNotFound {
		return nil, false, err
	}

	id := uuid.New()
	key := id.String() + "." + ext
	contentType := constants.ContentTypeForExt(ext)
	storagePath, err := s.blobs.Put(ctx, key, content, contentType)
	if err != nil {
		return nil, false, err
	}

	doc := &entity.DocumentRecord{
		ID:          id,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		StoragePath: storagePath,
		ContentHash: hashHex,
		SizeBytes:   int64(len(content)),
		Priority:    priority,
		Status:      constants.DocumentPending,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		// A concurrent upload of the same content can win the insert race.
		if common.CodeOf(err) == common.CodeConflict {
			if existing, lookupErr := s.repo.GetDocumentByHash(ctx, hashHex); lookupErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	s.logger.Info("ingest.registered",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"bytes", doc.SizeBytes,
		"priority", string(doc.Priority),
	)

	if enqueue && s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, doc.ID, doc.Priority); err != nil {
			s.logger.Warn("ingest.enqueue_failed", "document_id", doc.ID, "error", err)
		} else {
			doc.Status = constants.DocumentQueued
		}
	}
	return doc, false, nil
}

// RegisterFile reads one file from disk and registers it.
func (s *Service) RegisterFile(ctx context.Context, path string, priority constants.Priority, enqueue bool) (*entity.DocumentRecord, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, common.NewAppError(common.CodeInvalid, "resolving path", err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, false, common.NewAppError(common.CodeStorage, "reading file", err)
	}
	return s.RegisterUpload(ctx, abs, content, priority, enqueue)
}
