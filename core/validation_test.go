package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCapture_Valid(t *testing.T) {
	capture := &Capture{
		Type:      CaptureTypeUserNote,
		ProjectId: 1,
		Text:      "remember this",
	}
	assert.NoError(t, ValidateCapture(capture))
}

func TestValidateCapture_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateCapture(nil), ErrInvalidCapture)
}

func TestValidateCapture_UnknownType(t *testing.T) {
	capture := &Capture{Type: CaptureType(99), ProjectId: 1, Text: "x"}
	err := ValidateCapture(capture)
	assert.ErrorIs(t, err, ErrInvalidCapture)
	assert.ErrorIs(t, err, ErrUnknownCaptureType)
}

func TestValidateCapture_MissingProject(t *testing.T) {
	capture := &Capture{Type: CaptureTypeUserNote, Text: "x"}
	err := ValidateCapture(capture)
	assert.ErrorIs(t, err, ErrMissingProject)
}

func TestValidateCapture_NoteRequiresText(t *testing.T) {
	capture := &Capture{Type: CaptureTypeUserNote, ProjectId: 1}
	assert.ErrorIs(t, ValidateCapture(capture), ErrEmptyText)
}

func TestValidateCapture_VideoAcceptsURLOnly(t *testing.T) {
	capture := &Capture{
		Type:      CaptureTypeVideoSegment,
		ProjectId: 1,
		SourceURL: "https://youtu.be/XYZ",
	}
	assert.NoError(t, ValidateCapture(capture))
}

func TestValidateCapture_VideoWithoutSource(t *testing.T) {
	capture := &Capture{Type: CaptureTypeVideoSegment, ProjectId: 1}
	assert.ErrorIs(t, ValidateCapture(capture), ErrMissingSource)
}

func TestValidateCapture_IDEBugFixAcceptsLogOnly(t *testing.T) {
	capture := &Capture{
		Type:      CaptureTypeIDEBugFix,
		ProjectId: 1,
		ErrorLog:  "nil pointer dereference",
	}
	assert.NoError(t, ValidateCapture(capture))
}

func TestValidateAttachment(t *testing.T) {
	assert.ErrorIs(t, ValidateAttachment(nil), ErrInvalidAttachment)

	att := &Attachment{Kind: AttachmentKindImage}
	assert.ErrorIs(t, ValidateAttachment(att), ErrEmptyObjectKey)

	att.ObjectKey = "captures/1/shot.png"
	assert.NoError(t, ValidateAttachment(att))

	att.Kind = AttachmentKind(42)
	assert.ErrorIs(t, ValidateAttachment(att), ErrUnknownAttachmentKind)
}

func TestValidateSession(t *testing.T) {
	assert.ErrorIs(t, ValidateSession(nil), ErrInvalidSession)
	assert.ErrorIs(t, ValidateSession(&Session{}), ErrMissingProject)
	assert.NoError(t, ValidateSession(&Session{ProjectId: 1}))
}
