package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("hello world")
	id2 := IDFromContent("hello world")
	assert.Equal(t, id1, id2)

	id3 := IDFromContent("hello world!")
	assert.NotEqual(t, id1, id3)
}

func TestIDFromContent_EmptyString(t *testing.T) {
	// Empty content still hashes to a stable value
	assert.Equal(t, IDFromContent(""), IDFromContent(""))
}

func TestCaptureType_RoundTrip(t *testing.T) {
	for _, ct := range []CaptureType{
		CaptureTypeWebText,
		CaptureTypeVideoSegment,
		CaptureTypeUserNote,
		CaptureTypeResourceUpload,
		CaptureTypeIDEBugFix,
		CaptureTypeIDEProgress,
	} {
		parsed, err := ParseCaptureType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
	}
}

func TestParseCaptureType_Unknown(t *testing.T) {
	_, err := ParseCaptureType("TELEPATHY")
	assert.ErrorIs(t, err, ErrUnknownCaptureType)
}

func TestCaptureType_IsCodeOriented(t *testing.T) {
	assert.True(t, CaptureTypeIDEBugFix.IsCodeOriented())
	assert.True(t, CaptureTypeIDEProgress.IsCodeOriented())
	assert.False(t, CaptureTypeWebText.IsCodeOriented())
	assert.False(t, CaptureTypeUserNote.IsCodeOriented())
}

func TestAttachmentKind_Inlineable(t *testing.T) {
	assert.True(t, AttachmentKindImage.Inlineable())
	assert.True(t, AttachmentKindDocument.Inlineable())
	assert.False(t, AttachmentKindRawTranscript.Inlineable())
	assert.False(t, AttachmentKindGenericDoc.Inlineable())
}

func TestSession_Ended(t *testing.T) {
	s := &Session{StartedAt: time.Now().UTC()}
	assert.False(t, s.Ended())

	s.EndedAt = time.Now().UTC()
	assert.True(t, s.Ended())
}

func TestCaptureMUS_RoundTrip(t *testing.T) {
	original := Capture{
		Id:         42,
		OwnerId:    7,
		ProjectId:  3,
		SessionId:  9,
		Type:       CaptureTypeIDEBugFix,
		Text:       "normalized body",
		Summary:    "## summary",
		SourceURL:  "https://example.com",
		PageTitle:  "Example",
		VideoStart: 10.5,
		VideoEnd:   20,
		ErrorLog:   "panic: nil deref",
		CodeDiff:   "+fixed\n-broken",
		FileTree:   "cmd/\ncore/",
		FilePath:   "core/models.go",
		Priority:   2,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	buf := make([]byte, CaptureMUS.Size(original))
	n := CaptureMUS.Marshal(original, buf)
	assert.Equal(t, len(buf), n)

	decoded, n, err := CaptureMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, original, decoded)
}

func TestChunkMUS_RoundTrip(t *testing.T) {
	original := Chunk{
		Id:        1,
		CaptureId: 42,
		ProjectId: 3,
		Ordinal:   5,
		Text:      "a chunk of text",
		Vector:    []float32{0.25, -0.5, 1.0},
		Origin:    ChunkOriginExplanation,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	buf := make([]byte, ChunkMUS.Size(original))
	ChunkMUS.Marshal(original, buf)

	decoded, _, err := ChunkMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestSessionMUS_RoundTrip_OpenSession(t *testing.T) {
	// EndedAt stays the zero time for open sessions and must survive the round trip
	original := Session{
		Id:           11,
		OwnerId:      7,
		ProjectId:    3,
		StartedAt:    time.Now().UTC().Truncate(time.Microsecond),
		LastActiveAt: time.Now().UTC().Truncate(time.Microsecond),
		ActiveFile:   "ingestion/pipeline.go",
	}

	buf := make([]byte, SessionMUS.Size(original))
	SessionMUS.Marshal(original, buf)

	decoded, _, err := SessionMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
	assert.False(t, decoded.Ended())
}
