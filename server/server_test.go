package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/recallit/ai/mock"
	"github.com/poiesic/recallit/answer"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/retrieval"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type serverHarness struct {
	server   *Server
	captures storage.CaptureRepository
	chunks   storage.ChunkRepository
	sessions storage.SessionRepository
	token    string
}

func newServerHarness(t *testing.T) *serverHarness {
	t.Helper()

	captureRepo, chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sessionRepo.Close()
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
	})

	provider := mock.NewProvider()

	pipeline, err := ingestion.NewPipeline(captureRepo, chunkRepo, provider)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	builder, err := retrieval.NewBuilder(captureRepo, chunkRepo,
		retrieval.WithSessionRepository(sessionRepo))
	require.NoError(t, err)
	t.Cleanup(builder.Release)

	coordinator, err := answer.NewCoordinator(provider, builder)
	require.NoError(t, err)

	srv, err := New(Config{
		Captures:    captureRepo,
		Sessions:    sessionRepo,
		Objects:     objstore.NewMemoryStore(),
		Pipeline:    pipeline,
		Coordinator: coordinator,
		Summarizer:  provider.Summarizer(),
		AuthSecret:  testSecret,
	})
	require.NoError(t, err)

	token, err := IssueToken(testSecret, 1, time.Hour)
	require.NoError(t, err)

	return &serverHarness{
		server:   srv,
		captures: captureRepo,
		chunks:   chunkRepo,
		sessions: sessionRepo,
		token:    token,
	}
}

func (h *serverHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	return w
}

func TestUnauthorizedRejectedBeforeDataAccess(t *testing.T) {
	h := newServerHarness(t)
	h.token = ""

	w := h.do(t, http.MethodPost, "/api/captures", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Error)
}

func TestCreateCaptureAcknowledgesImmediately(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodPost, "/api/captures", map[string]any{
		"type":       "USER_NOTE",
		"project_id": 7,
		"text":       "remember the retry backoff is 250ms",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var ack struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	require.NotZero(t, ack.ID)

	// The capture row is visible right away, before enrichment.
	got := h.do(t, http.MethodGet, fmt.Sprintf("/api/captures/%d", ack.ID), nil)
	assert.Equal(t, http.StatusOK, got.Code)

	// Background processing eventually produces chunks.
	scope := storage.NewScope(1)
	assert.Eventually(t, func() bool {
		chunks, err := h.chunks.GetChunksByCapture(context.Background(), scope, core.ID(ack.ID))
		return err == nil && len(chunks) > 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCreateCaptureUnknownType(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodPost, "/api/captures", map[string]any{
		"type":       "CARRIER_PIGEON",
		"project_id": 7,
		"text":       "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCapture(t *testing.T) {
	h := newServerHarness(t)

	capture, err := h.captures.AddCapture(context.Background(), storage.NewScope(1), &core.Capture{
		ProjectId: 7,
		Type:      core.CaptureTypeUserNote,
		Text:      "delete me",
	})
	require.NoError(t, err)

	w := h.do(t, http.MethodDelete, fmt.Sprintf("/api/captures/%d", capture.Id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	got := h.do(t, http.MethodGet, fmt.Sprintf("/api/captures/%d", capture.Id), nil)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func TestSignUpload(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodPost, "/api/uploads/sign", map[string]any{
		"file_name": "design.pdf",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ObjectKey string `json:"object_key"`
		UploadURL string `json:"upload_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "users/1/uploads/"))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, "/design.pdf"))
	assert.NotEmpty(t, resp.UploadURL)
}

func TestSessionLifecycleWithDebrief(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"project_id": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A member capture gives the debrief something to summarize.
	_, err := h.captures.AddCapture(context.Background(), storage.NewScope(1), &core.Capture{
		ProjectId: 7,
		SessionId: core.ID(created.ID),
		Type:      core.CaptureTypeUserNote,
		Text:      "fixed the flaky integration test",
	})
	require.NoError(t, err)

	end := h.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%d/end", created.ID), nil)
	require.Equal(t, http.StatusOK, end.Code)

	scope := storage.NewScope(1)
	assert.Eventually(t, func() bool {
		session, err := h.sessions.GetSession(context.Background(), scope, core.ID(created.ID))
		return err == nil && session.Debrief != ""
	}, 3*time.Second, 20*time.Millisecond)
}

// decodeEvents parses the blank-line framed event stream.
func decodeEvents(t *testing.T, body string) []answer.Event {
	t.Helper()
	var events []answer.Event
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		var event answer.Event
		require.NoError(t, json.Unmarshal([]byte(frame), &event), "frame: %q", frame)
		events = append(events, event)
	}
	return events
}

func TestQueryStreamEmptyProject(t *testing.T) {
	h := newServerHarness(t)

	w := h.do(t, http.MethodPost, "/api/query", map[string]any{
		"project_id": 7,
		"query":      "what do I know?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	events := decodeEvents(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, answer.EventSources, events[0].Type)
	assert.Empty(t, events[0].Sources)
	assert.Equal(t, answer.EventDelta, events[1].Type)
	assert.Equal(t, answer.EmptyStateMessage, events[1].Delta)
	assert.Equal(t, answer.EventDone, events[2].Type)
}

func TestQueryStreamWithContext(t *testing.T) {
	h := newServerHarness(t)
	ctx := context.Background()
	scope := storage.NewScope(1)

	capture, err := h.captures.AddCapture(ctx, scope, &core.Capture{
		ProjectId: 7,
		Type:      core.CaptureTypeUserNote,
		Text:      "the staging database lives on host db-stg-02",
	})
	require.NoError(t, err)
	_, err = h.chunks.AddChunks(ctx, scope, &core.Chunk{
		CaptureId: capture.Id,
		ProjectId: 7,
		Ordinal:   0,
		Text:      "the staging database lives on host db-stg-02",
		Vector:    mock.DeterministicVector("staging database", 8),
		Origin:    core.ChunkOriginRaw,
	})
	require.NoError(t, err)

	w := h.do(t, http.MethodPost, "/api/query", map[string]any{
		"project_id": 7,
		"query":      "where is the staging database",
	})
	require.Equal(t, http.StatusOK, w.Code)

	events := decodeEvents(t, w.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, answer.EventSources, events[0].Type)
	require.Len(t, events[0].Sources, 1)
	assert.Equal(t, capture.Id, events[0].Sources[0].CaptureId)
	assert.Equal(t, answer.EventDone, events[len(events)-1].Type)
}
