package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/recallit/ai/mock"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.CaptureRepository, storage.ChunkRepository, storage.SessionRepository) {
	t.Helper()
	captureRepo, chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	})
	return captureRepo, chunkRepo, sessionRepo
}

func seedCapture(t *testing.T, repo storage.CaptureRepository, chunks storage.ChunkRepository, scope storage.Scope, projectID core.ID, text string, vector []float32) *core.Capture {
	t.Helper()
	ctx := context.Background()
	capture, err := repo.AddCapture(ctx, scope, &core.Capture{
		ProjectId: projectID,
		Type:      core.CaptureTypeUserNote,
		Text:      text,
	})
	require.NoError(t, err)
	_, err = chunks.AddChunks(ctx, scope, &core.Chunk{
		CaptureId: capture.Id,
		ProjectId: projectID,
		Ordinal:   0,
		Text:      text,
		Vector:    vector,
		Origin:    core.ChunkOriginRaw,
	})
	require.NoError(t, err)
	return capture
}

func TestBuildContextEmptyProject(t *testing.T) {
	captureRepo, chunkRepo, _ := newTestRepos(t)

	builder, err := NewBuilder(captureRepo, chunkRepo)
	require.NoError(t, err)
	defer builder.Release()

	scope := storage.NewScope(1)
	result, err := builder.BuildContext(context.Background(), scope, 7, mock.DeterministicVector("query", 8), DefaultK)
	require.NoError(t, err)

	assert.True(t, result.Empty)
	assert.Empty(t, result.SourceRefs)
	assert.Empty(t, result.PromptText)
}

func TestBuildContextGroupsChunksByParent(t *testing.T) {
	captureRepo, chunkRepo, _ := newTestRepos(t)
	ctx := context.Background()
	scope := storage.NewScope(1)

	capture, err := captureRepo.AddCapture(ctx, scope, &core.Capture{
		ProjectId: 7,
		Type:      core.CaptureTypeWebText,
		Text:      "article body",
		PageTitle: "Worker pools in practice",
		SourceURL: "https://example.com/pools",
	})
	require.NoError(t, err)

	_, err = chunkRepo.AddChunks(ctx, scope,
		&core.Chunk{CaptureId: capture.Id, ProjectId: 7, Ordinal: 0, Text: "first fragment", Vector: []float32{1, 0}, Origin: core.ChunkOriginRaw},
		&core.Chunk{CaptureId: capture.Id, ProjectId: 7, Ordinal: 1, Text: "second fragment", Vector: []float32{0.9, 0.1}, Origin: core.ChunkOriginRaw},
	)
	require.NoError(t, err)

	builder, err := NewBuilder(captureRepo, chunkRepo)
	require.NoError(t, err)
	defer builder.Release()

	result, err := builder.BuildContext(ctx, scope, 7, []float32{1, 0}, DefaultK)
	require.NoError(t, err)

	assert.False(t, result.Empty)
	require.Len(t, result.SourceRefs, 1)
	assert.Equal(t, capture.Id, result.SourceRefs[0].CaptureId)
	assert.Equal(t, "Worker pools in practice", result.SourceRefs[0].Title)

	// Both fragments land in the same capture block.
	assert.Contains(t, result.PromptText, "## [WEB_TEXT] Worker pools in practice")
	assert.Contains(t, result.PromptText, "Fragment 1:\nfirst fragment")
	assert.Contains(t, result.PromptText, "Fragment 2:\nsecond fragment")
	assert.Equal(t, 1, strings.Count(result.PromptText, "## ["))
}

func TestBuildContextCapsBlocks(t *testing.T) {
	captureRepo, chunkRepo, _ := newTestRepos(t)
	scope := storage.NewScope(1)

	for i := 0; i < maxCaptureBlocks+5; i++ {
		seedCapture(t, captureRepo, chunkRepo, scope, 7,
			fmt.Sprintf("note %d", i), []float32{1, 0})
	}

	builder, err := NewBuilder(captureRepo, chunkRepo)
	require.NoError(t, err)
	defer builder.Release()

	result, err := builder.BuildContext(context.Background(), scope, 7, []float32{1, 0}, maxCaptureBlocks+5)
	require.NoError(t, err)

	assert.LessOrEqual(t, strings.Count(result.PromptText, "## ["), maxCaptureBlocks)
	assert.LessOrEqual(t, len(result.SourceRefs), maxCaptureBlocks)
}

func TestBuildContextResolvesMediaWithIsolation(t *testing.T) {
	captureRepo, chunkRepo, _ := newTestRepos(t)
	ctx := context.Background()
	scope := storage.NewScope(1)

	capture := seedCapture(t, captureRepo, chunkRepo, scope, 7, "note with media", []float32{1, 0})

	store := objstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "users/1/shot.png", []byte("png-bytes")))

	_, err := captureRepo.AddAttachments(ctx, scope,
		&core.Attachment{CaptureId: capture.Id, ObjectKey: "users/1/shot.png", Kind: core.AttachmentKindImage, DisplayName: "shot.png"},
		&core.Attachment{CaptureId: capture.Id, ObjectKey: "users/1/missing.png", Kind: core.AttachmentKindImage, DisplayName: "missing.png"},
	)
	require.NoError(t, err)

	builder, err := NewBuilder(captureRepo, chunkRepo, WithObjectStore(store))
	require.NoError(t, err)
	defer builder.Release()

	result, err := builder.BuildContext(ctx, scope, 7, []float32{1, 0}, DefaultK)
	require.NoError(t, err)

	// The missing object is omitted, the good one survives.
	require.Len(t, result.Media, 1)
	assert.Equal(t, "image/png", result.Media[0].MIMEType)
	assert.Equal(t, []byte("png-bytes"), result.Media[0].Data)
	assert.Contains(t, result.PromptText, "Attachments: shot.png, missing.png")
}

func TestBuildContextIncludesActiveFile(t *testing.T) {
	captureRepo, chunkRepo, sessionRepo := newTestRepos(t)
	ctx := context.Background()
	scope := storage.NewScope(1)

	session, err := sessionRepo.StartSession(ctx, scope, &core.Session{ProjectId: 7})
	require.NoError(t, err)
	require.NoError(t, sessionRepo.TouchSession(ctx, scope, session.Id, "cmd/server/main.go"))

	capture, err := captureRepo.AddCapture(ctx, scope, &core.Capture{
		ProjectId: 7,
		SessionId: session.Id,
		Type:      core.CaptureTypeIDEProgress,
		Text:      "refactored the handler wiring",
	})
	require.NoError(t, err)
	_, err = chunkRepo.AddChunks(ctx, scope, &core.Chunk{
		CaptureId: capture.Id, ProjectId: 7, Ordinal: 0,
		Text: "refactored the handler wiring", Vector: []float32{1, 0}, Origin: core.ChunkOriginRaw,
	})
	require.NoError(t, err)

	builder, err := NewBuilder(captureRepo, chunkRepo, WithSessionRepository(sessionRepo))
	require.NoError(t, err)
	defer builder.Release()

	result, err := builder.BuildContext(ctx, scope, 7, []float32{1, 0}, DefaultK)
	require.NoError(t, err)
	assert.Contains(t, result.PromptText, "Active file: cmd/server/main.go")
}
