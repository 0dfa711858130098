package blob

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/healthfolio/labingest/internal/common"
)

// FSStore keeps blobs as plain files under a single root directory.
type FSStore struct {
	root   string
	logger *slog.Logger
}

func NewFSStore(root string, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		return nil, common.NewAppError(common.CodeConfig, "blob root directory is required", nil)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, common.NewAppError(common.CodeStorage, "creating blob root directory", err)
	}
	return &FSStore{root: root, logger: logger}, nil
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("blob.fs.write_failed", "key", name, "error", err)
		return "", common.NewAppError(common.CodeStorage, "writing blob", err)
	}
	s.logger.Debug("blob.fs.put", "key", name, "bytes", len(data))
	return path, nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return nil, common.NewAppError(common.CodeNotFound, "blob not found", err)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "reading blob", err)
	}
	return data, nil
}

// sanitizeKey rejects anything that could escape the root directory.
func sanitizeKey(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", common.NewAppError(common.CodeInvalid, "invalid blob key", nil)
	}
	return key, nil
}
