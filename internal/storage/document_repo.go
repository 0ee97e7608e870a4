package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks medlit/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document catalog operations.
type DocumentStore interface {
	// GetByUID gets a document record by UID.
	// Returns nil and ErrNotFound if not found.
	GetByUID(ctx context.Context, uid string) (*DocumentRecord, error)
	// Upsert inserts a new document record or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// Delete removes a document record and, via cascade, its chunk refs.
	Delete(ctx context.Context, uid string) error
}

// DocumentRepo provides methods for document catalog operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByUID gets a document record by UID.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByUID(ctx context.Context, uid string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var publishedAt sql.NullString
	var indexedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT uid, source, title, hash, published_at, quality_total, indexed_at FROM documents WHERE uid = ?",
		uid,
	).Scan(&doc.UID, &doc.Source, &doc.Title, &doc.Hash, &publishedAt, &doc.QualityTotal, &indexedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	if publishedAt.Valid && publishedAt.String != "" {
		doc.PublishedAt, err = parseSQLiteTime(publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse published_at timestamp: %w", err)
		}
	}
	doc.IndexedAt, err = parseSQLiteTime(indexedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse indexed_at timestamp: %w", err)
	}

	return &doc, nil
}

// Upsert inserts a new document record or updates an existing one,
// refreshing indexed_at.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	var publishedAt any
	if !doc.PublishedAt.IsZero() {
		publishedAt = doc.PublishedAt.UTC().Format(time.RFC3339)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (uid, source, title, hash, published_at, quality_total, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (uid) DO UPDATE SET
		 source = excluded.source, title = excluded.title, hash = excluded.hash,
		 published_at = excluded.published_at, quality_total = excluded.quality_total,
		 indexed_at = CURRENT_TIMESTAMP`,
		doc.UID, doc.Source, doc.Title, doc.Hash, publishedAt, doc.QualityTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// Delete removes a document record. Deleting a missing UID is not an error.
func (r *DocumentRepo) Delete(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// parseSQLiteTime parses the two timestamp layouts SQLite emits.
func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
