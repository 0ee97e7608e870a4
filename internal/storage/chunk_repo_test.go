package storage

import (
	"context"
	"testing"
)

func testChunkDB(t *testing.T) (*DocumentRepo, *ChunkRepo) {
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
	return NewDocumentRepo(db), NewChunkRepo(db)
}

func TestChunkRepo_ListIDsByDocument_Empty(t *testing.T) {
	_, repo := testChunkDB(t)

	ids, err := repo.ListIDsByDocument(context.Background(), "pubmed:1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() = %v, want empty", ids)
	}
}

func TestChunkRepo_ReplaceAndList(t *testing.T) {
	docRepo, repo := testChunkDB(t)
	ctx := context.Background()

	if err := docRepo.Upsert(ctx, &DocumentRecord{UID: "pubmed:1", Source: "pubmed", Hash: "h"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	refs := []ChunkRef{
		{ID: "point-b", DocumentUID: "pubmed:1", ChunkIdx: 1},
		{ID: "point-a", DocumentUID: "pubmed:1", ChunkIdx: 0},
	}
	if err := repo.ReplaceForDocument(ctx, "pubmed:1", refs); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, "pubmed:1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	// Ordered by chunk_idx, not insertion order.
	if len(ids) != 2 || ids[0] != "point-a" || ids[1] != "point-b" {
		t.Errorf("ListIDsByDocument() = %v, want [point-a point-b]", ids)
	}

	// Replacing again drops refs absent from the new set.
	if err := repo.ReplaceForDocument(ctx, "pubmed:1", []ChunkRef{
		{ID: "point-a", DocumentUID: "pubmed:1", ChunkIdx: 0},
	}); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}
	ids, err = repo.ListIDsByDocument(ctx, "pubmed:1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "point-a" {
		t.Errorf("ListIDsByDocument() = %v, want [point-a]", ids)
	}
}

func TestChunkRepo_DeleteByDocument(t *testing.T) {
	docRepo, repo := testChunkDB(t)
	ctx := context.Background()

	if err := docRepo.Upsert(ctx, &DocumentRecord{UID: "pubmed:1", Source: "pubmed", Hash: "h"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.ReplaceForDocument(ctx, "pubmed:1", []ChunkRef{
		{ID: "point-a", DocumentUID: "pubmed:1", ChunkIdx: 0},
	}); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	if err := repo.DeleteByDocument(ctx, "pubmed:1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	ids, err := repo.ListIDsByDocument(ctx, "pubmed:1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() = %v, want empty", ids)
	}
}

func TestChunkRefsCascadeOnDocumentDelete(t *testing.T) {
	docRepo, repo := testChunkDB(t)
	ctx := context.Background()

	if err := docRepo.Upsert(ctx, &DocumentRecord{UID: "pubmed:1", Source: "pubmed", Hash: "h"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.ReplaceForDocument(ctx, "pubmed:1", []ChunkRef{
		{ID: "point-a", DocumentUID: "pubmed:1", ChunkIdx: 0},
	}); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	if err := docRepo.Delete(ctx, "pubmed:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ids, err := repo.ListIDsByDocument(ctx, "pubmed:1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("chunk refs survived document delete: %v", ids)
	}
}
