package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/healthfolio/labingest/constants"
	"github.com/healthfolio/labingest/internal/common"
	"github.com/healthfolio/labingest/internal/entity"
	"github.com/healthfolio/labingest/internal/repository/migrations"
)

const documentColumns = `id, filename, content_type, storage_path, content_hash, size_bytes,
	priority, status, retry_count, last_error, created_at, updated_at, processed_at`

// sqliteRepository stores everything in a single SQLite file. Timestamps
// are TEXT in RFC 3339 so the rows stay portable across drivers.
type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteRepository opens (or creates) the database file at path and
// applies pending migrations.
func NewSQLiteRepository(path string, logger *slog.Logger) (DocumentRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		// WAL keeps readers unblocked while the queue workers write.
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "opening sqlite database", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, common.NewAppError(common.CodeDatabase, "enabling foreign keys", err)
	}

	r := &sqliteRepository{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, common.NewAppError(common.CodeDatabase, "running migrations", err)
	}
	logger.Info("sqlite database ready", "path", path)
	return r, nil
}

// migrate applies embedded migrations newer than the recorded version.
func (r *sqliteRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sqlite.sql") {
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
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *sqliteRepository) CreateDocument(ctx context.Context, doc *entity.DocumentRecord) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID.String(), doc.Filename, doc.ContentType, doc.StoragePath, doc.ContentHash,
		doc.SizeBytes, string(doc.Priority), string(doc.Status), doc.RetryCount,
		nullableString(doc.LastError), formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
		nullableTime(doc.ProcessedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return common.NewAppError(common.CodeConflict, "document with same content already exists", err)
		}
		return common.NewAppError(common.CodeDatabase, "creating document", err)
	}
	return nil
}

func (r *sqliteRepository) GetDocument(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = ?
	`, id.String())
	return scanSQLiteDocument(row.Scan)
}

func (r *sqliteRepository) GetDocumentByHash(ctx context.Context, hash string) (*entity.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE content_hash = ?
	`, hash)
	return scanSQLiteDocument(row.Scan)
}

func (r *sqliteRepository) ListDocuments(ctx context.Context, filter ListFilter) ([]entity.DocumentRecord, error) {
	q := `SELECT ` + documentColumns + ` FROM documents`
	var conds []string
	var args []any
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			// SQLite requires a LIMIT clause before OFFSET.
			q += " LIMIT -1"
		}
		q += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying documents", err)
	}
	defer rows.Close()

	var docs []entity.DocumentRecord
	for rows.Next() {
		doc, err := scanSQLiteDocument(rows.Scan)
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

func (r *sqliteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	now := time.Now().UTC()
	var processedAt any
	if status.IsTerminal() {
		processedAt = formatTime(now)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, updated_at = ?, processed_at = COALESCE(?, processed_at)
		WHERE id = ?
	`, string(status), formatTime(now), processedAt, id.String())
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "updating document status", err)
	}
	return requireRowAffected(res)
}

func (r *sqliteRepository) SetProcessingError(ctx context.Context, id uuid.UUID, message string, retryCount int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents SET last_error = ?, retry_count = ?, updated_at = ? WHERE id = ?
	`, message, retryCount, formatTime(time.Now().UTC()), id.String())
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "recording processing error", err)
	}
	return requireRowAffected(res)
}

func (r *sqliteRepository) FetchQueued(ctx context.Context) ([]entity.DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE status IN (?, ?)
		ORDER BY created_at
	`, string(constants.DocumentQueued), string(constants.DocumentProcessing))
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying queued documents", err)
	}
	defer rows.Close()

	var docs []entity.DocumentRecord
	for rows.Next() {
		doc, err := scanSQLiteDocument(rows.Scan)
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

func (r *sqliteRepository) SaveDraftMappingResult(ctx context.Context, docID uuid.UUID, result *entity.MappingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return common.NewAppError(common.CodeInternal, "marshalling mapping result", err)
	}
	now := formatTime(time.Now().UTC())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mapping_drafts (document_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (document_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, docID.String(), string(payload), now, now)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "saving draft mapping result", err)
	}
	return nil
}

func (r *sqliteRepository) GetDraftMappingResult(ctx context.Context, docID uuid.UUID) (*entity.MappingResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM mapping_drafts WHERE document_id = ?
	`, docID.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "no draft mapping result for document", err)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "loading draft mapping result", err)
	}

	var result entity.MappingResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "unmarshalling mapping result", err)
	}
	return &result, nil
}

func (r *sqliteRepository) SaveAcceptedValues(ctx context.Context, docID uuid.UUID, values []entity.LabValue) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM lab_values WHERE document_id = ?", docID.String()); err != nil {
		return common.NewAppError(common.CodeDatabase, "clearing previous lab values", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lab_values
			(id, document_id, param_key, display_name, category, value, unit, reference_range, is_abnormal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "preparing lab value insert", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, v.ID.String(), docID.String(), v.Key, v.DisplayName,
			string(v.Category), v.Value, v.Unit, v.ReferenceRange, v.IsAbnormal,
			formatTime(v.CreatedAt)); err != nil {
			return common.NewAppError(common.CodeDatabase, "saving lab value", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return common.NewAppError(common.CodeDatabase, "committing lab values", err)
	}
	return nil
}

func (r *sqliteRepository) ListAcceptedValues(ctx context.Context, docID uuid.UUID) ([]entity.LabValue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, param_key, display_name, category, value, unit, reference_range, is_abnormal, created_at
		FROM lab_values WHERE document_id = ?
		ORDER BY created_at, param_key
	`, docID.String())
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "querying lab values", err)
	}
	defer rows.Close()

	var values []entity.LabValue
	for rows.Next() {
		var v entity.LabValue
		var id, documentID, category, createdAt string
		if err := rows.Scan(&id, &documentID, &v.Key, &v.DisplayName, &category,
			&v.Value, &v.Unit, &v.ReferenceRange, &v.IsAbnormal, &createdAt); err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scanning lab value", err)
		}
		if v.ID, err = uuid.Parse(id); err != nil {
			return nil, common.NewAppError(common.CodeInternal, "parsing lab value id", err)
		}
		if v.DocumentID, err = uuid.Parse(documentID); err != nil {
			return nil, common.NewAppError(common.CodeInternal, "parsing lab value document id", err)
		}
		v.Category = constants.ParameterCategory(category)
		if v.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, common.NewAppError(common.CodeInternal, "parsing lab value timestamp", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "iterating lab values", err)
	}
	return values, nil
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

// scanSQLiteDocument reads one documents row through any Scan-shaped
// function, so *sql.Row and *sql.Rows share the decoding.
func scanSQLiteDocument(scan func(dest ...any) error) (*entity.DocumentRecord, error) {
	var doc entity.DocumentRecord
	var id, priority, status, createdAt, updatedAt string
	var lastError, processedAt sql.NullString

	err := scan(&id, &doc.Filename, &doc.ContentType, &doc.StoragePath, &doc.ContentHash,
		&doc.SizeBytes, &priority, &status, &doc.RetryCount, &lastError,
		&createdAt, &updatedAt, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "document not found", err)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "scanning document", err)
	}

	if doc.ID, err = uuid.Parse(id); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "parsing document id", err)
	}
	doc.Priority = constants.Priority(priority)
	doc.Status = constants.DocumentStatus(status)
	if lastError.Valid {
		doc.LastError = &lastError.String
	}
	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "parsing created_at", err)
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, common.NewAppError(common.CodeInternal, "parsing updated_at", err)
	}
	if processedAt.Valid {
		ts, err := parseTime(processedAt.String)
		if err != nil {
			return nil, common.NewAppError(common.CodeInternal, "parsing processed_at", err)
		}
		doc.ProcessedAt = &ts
	}
	return &doc, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.NewAppError(common.CodeDatabase, "checking rows affected", err)
	}
	if n == 0 {
		return common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
