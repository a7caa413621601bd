// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateCapture validates a Capture according to domain rules.
//
// Validation rules:
//   - Type must be one of the closed set
//   - ProjectId must be set
//   - Per-type required source material must be present
//
// NOT validated (populated by the ingestion pipeline):
//   - Text for types that derive it (video transcript, extracted document)
//   - Summary (empty until enrichment completes)
//   - ID (0 is valid from database sequences)
func ValidateCapture(capture *Capture) error {
	if capture == nil {
		return fmt.Errorf("%w: capture is nil", ErrInvalidCapture)
	}
	if err := ValidateCaptureType(capture.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCapture, err)
	}
	if capture.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCapture, ErrMissingProject)
	}

	switch capture.Type {
	case CaptureTypeWebText, CaptureTypeUserNote:
		if capture.Text == "" {
			return fmt.Errorf("%w: %w", ErrInvalidCapture, ErrEmptyText)
		}
	case CaptureTypeVideoSegment:
		if capture.SourceURL == "" && capture.Text == "" {
			return fmt.Errorf("%w: %w", ErrInvalidCapture, ErrMissingSource)
		}
	case CaptureTypeIDEBugFix, CaptureTypeIDEProgress:
		if capture.ErrorLog == "" && capture.CodeDiff == "" && capture.Text == "" {
			return fmt.Errorf("%w: %w", ErrInvalidCapture, ErrMissingSource)
		}
	}

	return nil
}

// ValidateAttachment validates an Attachment according to domain rules.
func ValidateAttachment(attachment *Attachment) error {
	if attachment == nil {
		return fmt.Errorf("%w: attachment is nil", ErrInvalidAttachment)
	}
	if attachment.ObjectKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, ErrEmptyObjectKey)
	}
	if err := ValidateAttachmentKind(attachment.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, err)
	}
	return nil
}

// ValidateSession validates a Session according to domain rules.
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}
	if session.ProjectId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrMissingProject)
	}
	return nil
}

// ValidateCaptureType validates that a CaptureType has a valid value.
func ValidateCaptureType(t CaptureType) error {
	if _, ok := captureTypeNames[t]; !ok {
		return fmt.Errorf("%w: value %d", ErrUnknownCaptureType, t)
	}
	return nil
}

// ValidateAttachmentKind validates that an AttachmentKind has a valid value.
func ValidateAttachmentKind(k AttachmentKind) error {
	if _, ok := attachmentKindNames[k]; !ok {
		return fmt.Errorf("%w: value %d", ErrUnknownAttachmentKind, k)
	}
	return nil
}
