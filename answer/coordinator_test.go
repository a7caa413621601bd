package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/ai/mock"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/retrieval"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	coordinator *Coordinator
	embedder    *mock.Embedder
	generator   *mock.Generator
	captures    storage.CaptureRepository
	chunks      storage.ChunkRepository
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	captureRepo, chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	})

	builder, err := retrieval.NewBuilder(captureRepo, chunkRepo)
	require.NoError(t, err)
	t.Cleanup(builder.Release)

	embedder := mock.NewEmbedder()
	generator := mock.NewGenerator()
	provider := mock.NewProviderWithServices(embedder, mock.NewSummarizer(), generator)

	coordinator, err := NewCoordinator(provider, builder)
	require.NoError(t, err)

	return &testHarness{
		coordinator: coordinator,
		embedder:    embedder,
		generator:   generator,
		captures:    captureRepo,
		chunks:      chunkRepo,
	}
}

func (h *testHarness) seed(t *testing.T, scope storage.Scope, projectID core.ID, text string) {
	t.Helper()
	ctx := context.Background()
	capture, err := h.captures.AddCapture(ctx, scope, &core.Capture{
		ProjectId: projectID,
		Type:      core.CaptureTypeUserNote,
		Text:      text,
	})
	require.NoError(t, err)
	_, err = h.chunks.AddChunks(ctx, scope, &core.Chunk{
		CaptureId: capture.Id,
		ProjectId: projectID,
		Ordinal:   0,
		Text:      text,
		Vector:    mock.DeterministicVector(text, 8),
		Origin:    core.ChunkOriginRaw,
	})
	require.NoError(t, err)
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for event := range events {
		out = append(out, event)
	}
	return out
}

func TestAnswerSuccessEventOrder(t *testing.T) {
	h := newTestHarness(t)
	scope := storage.NewScope(1)
	h.seed(t, scope, 7, "the deploy script lives in scripts/deploy.sh")

	events := collect(t, h.coordinator.Answer(context.Background(), scope, 7, "where is the deploy script", nil))
	require.NotEmpty(t, events)

	assert.Equal(t, EventSources, events[0].Type)
	require.Len(t, events[0].Sources, 1)

	last := events[len(events)-1]
	assert.Equal(t, EventDone, last.Type)

	for _, event := range events[1 : len(events)-1] {
		assert.Equal(t, EventDelta, event.Type)
	}

	// The mock generator echoes the prompt, so deltas must reassemble it.
	var b strings.Builder
	for _, event := range events {
		b.WriteString(event.Delta)
	}
	assert.Equal(t, "where is the deploy script", strings.TrimSpace(b.String()))
}

func TestAnswerEmptyProjectUsesFixedMessage(t *testing.T) {
	h := newTestHarness(t)
	scope := storage.NewScope(1)

	events := collect(t, h.coordinator.Answer(context.Background(), scope, 7, "anything?", nil))
	require.Len(t, events, 3)

	assert.Equal(t, EventSources, events[0].Type)
	assert.Empty(t, events[0].Sources)
	assert.Equal(t, EventDelta, events[1].Type)
	assert.Equal(t, EmptyStateMessage, events[1].Delta)
	assert.Equal(t, EventDone, events[2].Type)

	assert.Equal(t, 0, h.generator.CallCount())
}

func TestAnswerEmbeddingFailureShortCircuits(t *testing.T) {
	h := newTestHarness(t)
	h.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model offline")
	}

	events := collect(t, h.coordinator.Answer(context.Background(), storage.NewScope(1), 7, "query", nil))
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Contains(t, events[0].Error, "model offline")
}

func TestAnswerGenerationFailureAfterSources(t *testing.T) {
	h := newTestHarness(t)
	scope := storage.NewScope(1)
	h.seed(t, scope, 7, "some context")

	h.generator.GenerateStreamFunc = func(ctx context.Context, req ai.GenerationRequest, onDelta func(string)) error {
		onDelta("partial ")
		return errors.New("stream cut")
	}

	events := collect(t, h.coordinator.Answer(context.Background(), scope, 7, "query", nil))
	require.GreaterOrEqual(t, len(events), 2)

	assert.Equal(t, EventSources, events[0].Type)
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Contains(t, last.Error, "stream cut")
}

func TestAnswerHistoryCapped(t *testing.T) {
	h := newTestHarness(t)
	scope := storage.NewScope(1)
	h.seed(t, scope, 7, "context")

	var history []ai.Turn
	for i := 0; i < MaxHistoryTurns+6; i++ {
		history = append(history, ai.Turn{Role: ai.RoleUser, Content: "turn"})
	}
	history[len(history)-1].Content = "newest"

	collect(t, h.coordinator.Answer(context.Background(), scope, 7, "query", history))

	req := h.generator.LastRequest
	require.Len(t, req.History, MaxHistoryTurns)
	// Oldest turns dropped, newest kept.
	assert.Equal(t, "newest", req.History[len(req.History)-1].Content)
}

func TestAnswerConsumerCancellation(t *testing.T) {
	h := newTestHarness(t)
	scope := storage.NewScope(1)
	h.seed(t, scope, 7, "context")

	ctx, cancel := context.WithCancel(context.Background())

	h.generator.GenerateStreamFunc = func(genCtx context.Context, req ai.GenerationRequest, onDelta func(string)) error {
		onDelta("first")
		cancel()
		return genCtx.Err()
	}

	// The stream must close rather than hang, and a cancelled run never
	// reports success.
	events := collect(t, h.coordinator.Answer(ctx, scope, 7, "query", nil))
	for _, event := range events {
		assert.NotEqual(t, EventDone, event.Type)
	}
}
