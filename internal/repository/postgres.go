package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository/migrations"
)

const pgUniqueViolation = "23505"

type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository wraps an existing pool and applies pending
// migrations. The repository owns the pool from here on; Close releases it.
func NewPostgresRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &postgresRepository{pool: pool, logger: logger}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, common.NewAppError(common.CodeDatabase, "running migrations", err)
	}
	return r, nil
}

func (r *postgresRepository) migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := r.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".postgres.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *postgresRepository) CreateDocument(ctx context.Context, doc *entity.DocumentRecord) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, doc.ID, doc.Filename, doc.ContentType, doc.StoragePath, doc.ContentHash,
		doc.SizeBytes, doc.Priority, doc.Status, doc.RetryCount, doc.LastError,
		doc.CreatedAt, doc.UpdatedAt, doc.ProcessedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.NewAppError(common.CodeConflict, "document with same content already exists", err)
		}
		return common.NewAppError(common.CodeDatabase, "creating document", err)
	}
	return nil
}

func (r *postgresRepository) GetDocument(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = $1
	`, id)
	return scanPostgresDocument(row)
}

func (r *postgresRepository) GetDocumentByHash(ctx context.Context, hash string) (*entity.DocumentRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE content_hash = $1
	`, hash)
	return scanPostgresDocument(row)
}

func (r *postgresRepository) ListDocuments(ctx context.Context, filter ListFilter) ([]entity.DocumentRecord, error) {
	q := `SELECT ` + documentColumns + ` FROM documents`
	var conds []string
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying documents", err)
	}
	defer rows.Close()

	var docs []entity.DocumentRecord
	for rows.Next() {
		doc, err := scanPostgresDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterating documents", err)
	}
	return docs, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	now := time.Now().UTC()
	var processedAt *time.Time
	if status.IsTerminal() {
		processedAt = &now
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, updated_at = $3, processed_at = COALESCE($4, processed_at)
		WHERE id = $1
	`, id, status, now, processedAt)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "updating document status", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	return nil
}

func (r *postgresRepository) SetProcessingError(ctx context.Context, id uuid.UUID, message string, retryCount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET last_error = $2, retry_count = $3, updated_at = $4 WHERE id = $1
	`, id, message, retryCount, time.Now().UTC())
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "recording processing error", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	return nil
}

func (r *postgresRepository) FetchQueued(ctx context.Context) ([]entity.DocumentRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE status = ANY($1)
		ORDER BY created_at
	`, []string{string(constants.DocumentQueued), string(constants.DocumentProcessing)})
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying queued documents", err)
	}
	defer rows.Close()

	var docs []entity.DocumentRecord
	for rows.Next() {
		doc, err := scanPostgresDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterating queued documents", err)
	}
	return docs, nil
}

func (r *postgresRepository) SaveDraftMappingResult(ctx context.Context, docID uuid.UUID, result *entity.MappingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return common.NewAppError(common.CodeInternal, "marshalling mapping result", err)
	}
	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO mapping_drafts (document_id, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (document_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, docID, payload, now)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "saving draft mapping result", err)
	}
	return nil
}

func (r *postgresRepository) GetDraftMappingResult(ctx context.Context, docID uuid.UUID) (*entity.MappingResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM mapping_drafts WHERE document_id = $1
	`, docID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "no draft mapping result for document", err)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "loading draft mapping result", err)
	}

	var result entity.MappingResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "unmarshalling mapping result", err)
	}
	return &result, nil
}

func (r *postgresRepository) SaveAcceptedValues(ctx context.Context, docID uuid.UUID, values []entity.LabValue) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM lab_values WHERE document_id = $1", docID); err != nil {
		return common.NewAppError(common.CodeDatabase, "clearing previous lab values", err)
	}
	for _, v := range values {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lab_values
				(id, document_id, param_key, display_name, category, value, unit, reference_range, is_abnormal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, v.ID, docID, v.Key, v.DisplayName, v.Category, v.Value, v.Unit,
			v.ReferenceRange, v.IsAbnormal, v.CreatedAt); err != nil {
			return common.NewAppError(common.CodeDatabase, "saving lab value", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return common.NewAppError(common.CodeDatabase, "committing lab values", err)
	}
	return nil
}

func (r *postgresRepository) ListAcceptedValues(ctx context.Context, docID uuid.UUID) ([]entity.LabValue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, param_key, display_name, category, value, unit, reference_range, is_abnormal, created_at
		FROM lab_values WHERE document_id = $1
		ORDER BY created_at, param_key
	`, docID)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying lab values", err)
	}
	defer rows.Close()

	var values []entity.LabValue
	for rows.Next() {
		var v entity.LabValue
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Key, &v.DisplayName, &v.Category,
			&v.Value, &v.Unit, &v.ReferenceRange, &v.IsAbnormal, &v.CreatedAt); err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scanning lab value", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterating lab values", err)
	}
	return values, nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresDocument(row pgx.Row) (*entity.DocumentRecord, error) {
	var doc entity.DocumentRecord
	err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.StoragePath, &doc.ContentHash,
		&doc.SizeBytes, &doc.Priority, &doc.Status, &doc.RetryCount, &doc.LastError,
		&doc.CreatedAt, &doc.UpdatedAt, &doc.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "document not found", err)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "scanning document", err)
	}
	return &doc, nil
}
