package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks medlit/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk reference bookkeeping.
type ChunkStore interface {
	// ListIDsByDocument returns all chunk point IDs recorded for a
	// document, ordered by chunk_idx. Returns an empty slice if none
	// exist (not an error).
	ListIDsByDocument(ctx context.Context, documentUID string) ([]string, error)
	// ReplaceForDocument atomically replaces a document's chunk refs.
	ReplaceForDocument(ctx context.Context, documentUID string, refs []ChunkRef) error
	// DeleteByDocument deletes all chunk refs for a document.
	DeleteByDocument(ctx context.Context, documentUID string) error
}

// ChunkRepo provides methods for chunk reference operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ListIDsByDocument returns all chunk point IDs for a document, ordered
// by chunk_idx. Used to diff against freshly produced chunk IDs so stale
// index points can be deleted before re-indexing.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentUID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM document_chunks WHERE document_uid = ? ORDER BY chunk_idx",
		documentUID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// ReplaceForDocument atomically replaces a document's chunk refs.
func (r *ChunkRepo) ReplaceForDocument(ctx context.Context, documentUID string, refs []ChunkRef) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_chunks WHERE document_uid = ?", documentUID); err != nil {
		return fmt.Errorf("failed to delete old chunk refs: %w", err)
	}

	for _, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO document_chunks (id, document_uid, chunk_idx) VALUES (?, ?, ?)",
			ref.ID, documentUID, ref.ChunkIdx,
		); err != nil {
			return fmt.Errorf("failed to insert chunk ref: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk refs: %w", err)
	}

	return nil
}

// DeleteByDocument deletes all chunk refs for a document.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentUID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM document_chunks WHERE document_uid = ?", documentUID)
	if err != nil {
		return fmt.Errorf("failed to delete chunk refs: %w", err)
	}
	return nil
}
