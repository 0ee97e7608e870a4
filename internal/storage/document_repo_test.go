package storage

import (
	"context"
	"testing"
	"time"
)

func testDB(t *testing.T) *DocumentRepo {
	t.Helper()
	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewDocumentRepo(db)
}

func TestDocumentRepo_GetByUID_NotFound(t *testing.T) {
	repo := testDB(t)

	_, err := repo.GetByUID(context.Background(), "pubmed:404")
	if err != ErrNotFound {
		t.Errorf("GetByUID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{
		UID:          "pubmed:38012345",
		Source:       "pubmed",
		Title:        "Trial of X",
		Hash:         "abc123",
		PublishedAt:  time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		QualityTotal: 0.7,
	}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByUID(ctx, "pubmed:38012345")
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if got.Title != "Trial of X" || got.Hash != "abc123" {
		t.Errorf("GetByUID() = %+v", got)
	}
	if !got.PublishedAt.Equal(doc.PublishedAt) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, doc.PublishedAt)
	}
	if got.QualityTotal != 0.7 {
		t.Errorf("QualityTotal = %v, want 0.7", got.QualityTotal)
	}
	if got.IndexedAt.IsZero() {
		t.Error("IndexedAt should be set")
	}

	// Second upsert with a new hash must update in place.
	doc.Hash = "def456"
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, err = repo.GetByUID(ctx, "pubmed:38012345")
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if got.Hash != "def456" {
		t.Errorf("Hash = %q, want def456", got.Hash)
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	doc := &DocumentRecord{UID: "pubmed:1", Source: "pubmed", Hash: "h"}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.Delete(ctx, "pubmed:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByUID(ctx, "pubmed:1"); err != ErrNotFound {
		t.Errorf("GetByUID() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing document is not an error.
	if err := repo.Delete(ctx, "pubmed:404"); err != nil {
		t.Errorf("Delete() of missing document error = %v", err)
	}
}
