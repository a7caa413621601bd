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


package storage

import (
	"context"
	"time"

	"github.com/poiesic/recallit/core"
)

// CaptureRepository persists captures and their attachments.
type CaptureRepository interface {
	// AddCapture stores a new capture. The owner is taken from the scope
	// unless the scope is privileged, in which case capture.OwnerId must
	// already be set. Returns the stored capture with Id and timestamps
	// populated.
	AddCapture(ctx context.Context, scope Scope, capture *core.Capture) (*core.Capture, error)

	// GetCapture retrieves a capture by id. Returns ErrNotFound for
	// missing records and for records outside the scope.
	GetCapture(ctx context.Context, scope Scope, id core.ID) (*core.Capture, error)

	// GetCaptures retrieves the captures for the given ids, preserving
	// the order of ids. Missing or out-of-scope records are skipped.
	GetCaptures(ctx context.Context, scope Scope, ids ...core.ID) ([]*core.Capture, error)

	// ListCapturesByProject returns the captures in a project, newest first.
	ListCapturesByProject(ctx context.Context, scope Scope, projectID core.ID) ([]*core.Capture, error)

	// ListCapturesBySession returns the captures recorded during a
	// session, oldest first.
	ListCapturesBySession(ctx context.Context, scope Scope, sessionID core.ID) ([]*core.Capture, error)

	// UpdateCaptureText replaces the capture's normalized text.
	UpdateCaptureText(ctx context.Context, scope Scope, id core.ID, text string) error

	// UpdateCaptureSummary replaces the capture's summary.
	UpdateCaptureSummary(ctx context.Context, scope Scope, id core.ID, summary string) error

	// DeleteCapture removes a capture together with its attachments and
	// derived chunks.
	DeleteCapture(ctx context.Context, scope Scope, id core.ID) error

	// AddAttachments stores attachments for an existing capture.
	AddAttachments(ctx context.Context, scope Scope, attachments ...*core.Attachment) ([]*core.Attachment, error)

	// ListAttachments returns the attachments of a capture, oldest first.
	ListAttachments(ctx context.Context, scope Scope, captureID core.ID) ([]*core.Attachment, error)

	// Close releases repository resources.
	Close() error
}

// ChunkRepository persists retrieval chunks and answers similarity
// queries over their vectors.
//
// Chunks carry no owner of their own; scoping is enforced when the
// parent captures are resolved. FindSimilar therefore filters by
// project only, and callers must fetch the parent captures through a
// scoped CaptureRepository before exposing chunk text.
type ChunkRepository interface {
	// AddChunks stores a batch of chunks in a single transaction. Either
	// every chunk is persisted or none is.
	AddChunks(ctx context.Context, scope Scope, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunksByCapture returns a capture's chunks ordered by ordinal.
	GetChunksByCapture(ctx context.Context, scope Scope, captureID core.ID) ([]*core.Chunk, error)

	// DeleteChunksByCapture removes all chunks derived from a capture.
	DeleteChunksByCapture(ctx context.Context, scope Scope, captureID core.ID) error

	// FindSimilar returns up to limit chunks from the project ranked by
	// similarity to the query vector, best first.
	FindSimilar(ctx context.Context, scope Scope, projectID core.ID, vector []float32, limit int) ([]core.SimilarityMatch, error)

	// Close releases repository resources.
	Close() error
}

// SessionRepository persists work sessions.
type SessionRepository interface {
	// StartSession stores a new open session. Returns the stored session
	// with Id and timestamps populated.
	StartSession(ctx context.Context, scope Scope, session *core.Session) (*core.Session, error)

	// GetSession retrieves a session by id.
	GetSession(ctx context.Context, scope Scope, id core.ID) (*core.Session, error)

	// ListSessionsByProject returns a project's sessions, newest first.
	ListSessionsByProject(ctx context.Context, scope Scope, projectID core.ID) ([]*core.Session, error)

	// TouchSession updates the session's last-activity timestamp and,
	// when activeFile is non-empty, the file the user is working in.
	TouchSession(ctx context.Context, scope Scope, id core.ID, activeFile string) error

	// EndSession marks the session ended at the given time. Ending an
	// already ended session updates the end time.
	EndSession(ctx context.Context, scope Scope, id core.ID, endedAt time.Time) (*core.Session, error)

	// SetDebrief stores the generated session debrief, overwriting any
	// previous one.
	SetDebrief(ctx context.Context, scope Scope, id core.ID, debrief string) error

	// Close releases repository resources.
	Close() error
}
