package documents

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// defaultListLimit bounds List when the caller passes no limit.
const defaultListLimit = 100

// StoreConfig holds PostgreSQL connection settings.
type StoreConfig struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// MaxOpenConns bounds the connection pool. Default: 10.
	MaxOpenConns int
}

// Validate validates the configuration.
func (c StoreConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("%w: DSN required", ErrInvalidConfig)
	}
	return nil
}

// Store persists document metadata in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and ensures the schema exists.
func NewStore(ctx context.Context, config StoreConfig) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	maxConns := config.MaxOpenConns
	if maxConns == 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing database handle. The schema must
// already exist.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new document record in the uploaded state.
func (s *Store) Create(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, content_type, size_bytes, storage_path, status, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID, doc.Filename, doc.ContentType, doc.SizeBytes, doc.StoragePath, StatusUploaded, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, content_type, size_bytes, storage_path, status, page_count, chunk_count, error, uploaded_at, processed_at
		FROM documents WHERE id = $1
	`, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return doc, nil
}

// List returns a page of documents, newest first. A non-positive
// limit falls back to defaultListLimit.
func (s *Store) List(ctx context.Context, skip, limit int) ([]Document, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, content_type, size_bytes, storage_path, status, page_count, chunk_count, error, uploaded_at, processed_at
		FROM documents ORDER BY uploaded_at DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ListProcessedIDs returns the ids of documents eligible for
// retrieval.
func (s *Store) ListProcessedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM documents WHERE status = $1`, StatusProcessed)
	if err != nil {
		return nil, fmt.Errorf("querying processed documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkProcessed transitions a document to the processed state.
// Idempotent: re-marking an already processed document updates the
// page and chunk counts and the timestamp.
func (s *Store) MarkProcessed(ctx context.Context, id string, pageCount, chunkCount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET status = $1, page_count = $2, chunk_count = $3, error = '', processed_at = $4
		WHERE id = $5
	`, StatusProcessed, pageCount, chunkCount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("marking processed: %w", err)
	}
	return requireRow(res, id)
}

// MarkFailed transitions a document to the failed state with a reason.
func (s *Store) MarkFailed(ctx context.Context, id string, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = $1, error = $2 WHERE id = $3
	`, StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("marking failed: %w", err)
	}
	return requireRow(res, id)
}

// Delete removes a document record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireRow(res, id)
}

// CountByStatus returns document counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var processedAt sql.NullTime
	err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.SizeBytes,
		&doc.StoragePath, &doc.Status, &doc.PageCount, &doc.ChunkCount,
		&doc.Error, &doc.UploadedAt, &processedAt)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		doc.ProcessedAt = processedAt.Time
	}
	return &doc, nil
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
