package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CaptureType identifies the source of a capture.
type CaptureType int

const (
	// CaptureTypeWebText is text captured from a web page.
	CaptureTypeWebText CaptureType = iota + 1
	// CaptureTypeVideoSegment is a time range of a video, optionally with a transcript.
	CaptureTypeVideoSegment
	// CaptureTypeUserNote is a manually written note.
	CaptureTypeUserNote
	// CaptureTypeResourceUpload is an uploaded document whose text is extracted.
	CaptureTypeResourceUpload
	// CaptureTypeIDEBugFix is an IDE capture of an error log plus the diff that fixed it.
	CaptureTypeIDEBugFix
	// CaptureTypeIDEProgress is an IDE snapshot of work in progress.
	CaptureTypeIDEProgress
)

var captureTypeNames = map[CaptureType]string{
	CaptureTypeWebText:        "WEB_TEXT",
	CaptureTypeVideoSegment:   "VIDEO_SEGMENT",
	CaptureTypeUserNote:       "USER_NOTE",
	CaptureTypeResourceUpload: "RESOURCE_UPLOAD",
	CaptureTypeIDEBugFix:      "IDE_BUGFIX",
	CaptureTypeIDEProgress:    "IDE_PROGRESS",
}

// String returns the wire name of the capture type.
func (t CaptureType) String() string {
	if name, ok := captureTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseCaptureType parses a wire name into a CaptureType.
// Returns ErrUnknownCaptureType for names outside the closed set.
func ParseCaptureType(name string) (CaptureType, error) {
	for t, n := range captureTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, ErrUnknownCaptureType
}

// IsCodeOriented reports whether captures of this type carry verbatim code
// material that is chunked separately from the distilled explanation.
func (t CaptureType) IsCodeOriented() bool {
	return t == CaptureTypeIDEBugFix || t == CaptureTypeIDEProgress
}

// Capture is one ingested unit of raw or derived knowledge content.
// Its Text, Summary and chunks are populated asynchronously after creation;
// a capture with unpopulated fields is readable and valid, not an error state.
type Capture struct {
	Id        ID
	OwnerId   ID
	ProjectId ID
	SessionId ID
	Type      CaptureType
	Text      string // raw or normalized body; may stay empty if normalization yields nothing
	Summary   string // AI-generated condensed markdown; empty until enrichment completes

	// Source-specific fields. The capture type determines which are meaningful.
	SourceURL  string
	PageTitle  string
	VideoStart float64 // seconds into the video
	VideoEnd   float64 // seconds into the video
	ErrorLog   string
	CodeDiff   string
	FileTree   string
	FilePath   string

	Priority  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AttachmentKind classifies the file behind an attachment.
type AttachmentKind int

const (
	// AttachmentKindDocument is a text-bearing document.
	AttachmentKindDocument AttachmentKind = iota + 1
	// AttachmentKindImage is an image suitable for multimodal injection.
	AttachmentKindImage
	// AttachmentKindKeyframe is a video frame extracted from a segment.
	AttachmentKindKeyframe
	// AttachmentKindRawTranscript is a fetched transcript stored verbatim.
	AttachmentKindRawTranscript
	// AttachmentKindGenericDoc is any other file kept for reference.
	AttachmentKindGenericDoc
)

var attachmentKindNames = map[AttachmentKind]string{
	AttachmentKindDocument:      "DOCUMENT",
	AttachmentKindImage:         "IMAGE",
	AttachmentKindKeyframe:      "KEYFRAME",
	AttachmentKindRawTranscript: "RAW_TRANSCRIPT",
	AttachmentKindGenericDoc:    "GENERIC_DOC",
}

// String returns the wire name of the attachment kind.
func (k AttachmentKind) String() string {
	if name, ok := attachmentKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseAttachmentKind parses a wire name into an AttachmentKind.
func ParseAttachmentKind(name string) (AttachmentKind, error) {
	for k, n := range attachmentKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, ErrUnknownAttachmentKind
}

// Inlineable reports whether attachments of this kind are resolved into the
// multimodal payload during retrieval.
func (k AttachmentKind) Inlineable() bool {
	return k == AttachmentKindImage || k == AttachmentKindDocument
}

// Attachment is a binary file owned by exactly one Capture.
// Deleting the owning capture deletes its attachments.
type Attachment struct {
	Id          ID
	CaptureId   ID
	ObjectKey   string // object-storage reference
	Kind        AttachmentKind
	DisplayName string
	CreatedAt   time.Time
}

// ChunkOrigin identifies which body of text a chunk was cut from.
type ChunkOrigin int

const (
	// ChunkOriginRaw marks chunks cut from verbatim source material.
	ChunkOriginRaw ChunkOrigin = iota + 1
	// ChunkOriginExplanation marks chunks cut from the enrichment artifact.
	ChunkOriginExplanation
)

// Chunk is a bounded slice of a capture's text paired with its embedding vector.
// Chunks are append-only: never mutated, only inserted or cascade-deleted with
// the parent capture. Ordinal is unique per capture and stable.
type Chunk struct {
	Id        ID
	CaptureId ID
	ProjectId ID // denormalized for cross-capture similarity filtering
	Ordinal   int
	Text      string
	Vector    []float32
	Origin    ChunkOrigin
	CreatedAt time.Time
}

// Session groups captures produced during one continuous work period.
type Session struct {
	Id           ID
	OwnerId      ID
	ProjectId    ID
	StartedAt    time.Time
	EndedAt      time.Time // zero while the session is open
	LastActiveAt time.Time
	ActiveFile   string // file the user was working in, if known
	Debrief      string // AI-generated recap, derived from member capture summaries at session end
}

// Ended reports whether the session has been closed.
func (s *Session) Ended() bool {
	return !s.EndedAt.IsZero()
}

// SimilarityMatch is one hit from the similarity-search procedure:
// the parent capture, the matched chunk text, and the similarity score.
type SimilarityMatch struct {
	CaptureId ID
	ChunkText string
	Score     float32
}
