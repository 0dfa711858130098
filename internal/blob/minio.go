package blob

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/healthfolio/labingest/internal/common"
)

// MinioStore keeps blobs in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStore connects to the endpoint and creates the bucket when it
// does not exist yet.
func NewMinioStore(ctx context.Context, cfg common.BlobConfig, logger *slog.Logger) (*MinioStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "connecting to object storage", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "checking bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, common.NewAppError(common.CodeStorage, "creating bucket", err)
		}
		logger.Info("blob.minio.bucket_created", "bucket", cfg.Bucket)
	}

	logger.Info("connected to object storage", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &MinioStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("blob.minio.put_failed", "key", key, "error", err)
		return "", common.NewAppError(common.CodeStorage, "uploading blob", err)
	}
	s.logger.Debug("blob.minio.put", "key", key, "bytes", len(data))
	return s.bucket + "/" + key, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "fetching blob", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, common.NewAppError(common.CodeNotFound, "blob not found", err)
		}
		return nil, common.NewAppError(common.CodeStorage, "reading blob", err)
	}
	return data, nil
}
