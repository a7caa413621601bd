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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCapture indicates a Capture failed validation.
	ErrInvalidCapture = errors.New("invalid capture")

	// ErrInvalidAttachment indicates an Attachment failed validation.
	ErrInvalidAttachment = errors.New("invalid attachment")

	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrUnknownCaptureType indicates a type tag outside the closed set.
	ErrUnknownCaptureType = errors.New("unknown capture type")

	// ErrUnknownAttachmentKind indicates a file-kind tag outside the closed set.
	ErrUnknownAttachmentKind = errors.New("unknown attachment kind")

	// ErrEmptyText indicates a required text body is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyObjectKey indicates an attachment has no object-storage reference.
	ErrEmptyObjectKey = errors.New("object key cannot be empty")

	// ErrMissingProject indicates a capture or session has no project identity.
	ErrMissingProject = errors.New("project id is required")

	// ErrMissingSource indicates a capture type requires source material it lacks.
	ErrMissingSource = errors.New("missing source material for capture type")
)
