// Package blob stores the original uploaded document bytes. Processing
// always rereads the blob rather than trusting anything cached in the
// database row.
package blob

import (
	"context"
	"log/slog"

	"github.com/healthfolio/labingest/internal/common"
)

// Store persists raw document content under opaque keys.
type Store interface {
	// Put writes data under key and returns the storage path to record
	// on the document row.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg common.BlobConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "fs":
		return NewFSStore(cfg.Root, logger)
	case "minio":
		return NewMinioStore(ctx, cfg, logger)
	default:
		return nil, common.NewAppError(common.CodeConfig, "unknown blob backend "+cfg.Backend, nil)
	}
}
