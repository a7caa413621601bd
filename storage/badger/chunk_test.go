package badger

import (
	"context"
	"testing"

	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

func addTestCapture(t *testing.T, repo storage.CaptureRepository, scope storage.Scope, projectID core.ID) *core.Capture {
	t.Helper()
	capture, err := repo.AddCapture(context.Background(), scope, &core.Capture{
		ProjectId: projectID,
		Type:      core.CaptureTypeUserNote,
		Text:      "test capture",
	})
	if err != nil {
		t.Fatalf("Failed to add capture: %v", err)
	}
	return capture
}

func TestAddChunksBatchIsAtomic(t *testing.T) {
	captureRepo, chunkRepo, sessionRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	scope := storage.NewScope(1)
	capture := addTestCapture(t, captureRepo, scope, 3)

	// The second chunk is invalid, so neither may be persisted.
	_, err = chunkRepo.AddChunks(ctx, scope,
		&core.Chunk{CaptureId: capture.Id, ProjectId: 3, Ordinal: 0, Text: "valid", Vector: []float32{1}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: capture.Id, ProjectId: 3, Ordinal: 1, Text: "", Vector: []float32{1}, Origin: core.ChunkOriginRaw},
	)
	if err == nil {
		t.Fatal("Expected error for empty chunk text")
	}

	chunks, err := chunkRepo.GetChunksByCapture(ctx, scope, capture.Id)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Expected 0 chunks after failed batch, got %d", len(chunks))
	}
}

func TestGetChunksByCaptureOrdinalOrder(t *testing.T) {
	captureRepo, chunkRepo, sessionRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	scope := storage.NewScope(1)
	capture := addTestCapture(t, captureRepo, scope, 3)

	// Ordinals preserved from chunking, including gaps left by skipped
	// embeddings.
	_, err = chunkRepo.AddChunks(ctx, scope,
		&core.Chunk{CaptureId: capture.Id, ProjectId: 3, Ordinal: 2, Text: "third", Vector: []float32{1}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: capture.Id, ProjectId: 3, Ordinal: 0, Text: "first", Vector: []float32{1}, Origin: core.ChunkOriginRaw},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	chunks, err := chunkRepo.GetChunksByCapture(ctx, scope, capture.Id)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Ordinal != 0 || chunks[1].Ordinal != 2 {
		t.Fatalf("Expected ordinal order [0 2], got [%d %d]", chunks[0].Ordinal, chunks[1].Ordinal)
	}
}

func TestFindSimilarRanksAndLimits(t *testing.T) {
	captureRepo, chunkRepo, sessionRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	scope := storage.NewScope(1)
	capture := addTestCapture(t, captureRepo, scope, 8)
	other := addTestCapture(t, captureRepo, scope, 99)

	_, err = chunkRepo.AddChunks(ctx, scope,
		&core.Chunk{CaptureId: capture.Id, ProjectId: 8, Ordinal: 0, Text: "close", Vector: []float32{0.9, 0.1}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: capture.Id, ProjectId: 8, Ordinal: 1, Text: "closer", Vector: []float32{1, 0}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: capture.Id, ProjectId: 8, Ordinal: 2, Text: "far", Vector: []float32{0, 1}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: other.Id, ProjectId: 99, Ordinal: 0, Text: "wrong project", Vector: []float32{1, 0}, Origin: core.ChunkOriginRaw},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	matches, err := chunkRepo.FindSimilar(ctx, scope, 8, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Failed to search chunks: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].ChunkText != "closer" {
		t.Fatalf("Expected best match first, got %q", matches[0].ChunkText)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Expected descending score order")
	}
	for _, m := range matches {
		if m.ChunkText == "wrong project" {
			t.Fatal("Match leaked from another project")
		}
	}
}
