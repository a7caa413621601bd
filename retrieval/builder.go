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


package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/storage"
)

const (
	// DefaultK is the similarity-search result bound.
	DefaultK = 5

	// maxCaptureBlocks caps the rendered capture blocks as a prompt
	// size bound. Truncation is silent.
	maxCaptureBlocks = 15

	// maxMediaPayloads caps the inlined media payloads for token
	// budget safety. Truncation is silent.
	maxMediaPayloads = 10
)

// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
var ErrChunkRepositoryRequired = errors.New("chunk repository required")

// ErrCaptureRepositoryRequired is returned when a capture repository is not provided.
var ErrCaptureRepositoryRequired = errors.New("capture repository required")

// SourceRef identifies one capture the answer is grounded in. It is
// emitted to the caller before generation starts.
type SourceRef struct {
	CaptureId core.ID `json:"capture_id"`
	Type      string  `json:"type"`
	Title     string  `json:"title,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

// Context is the assembled grounding material for one query.
type Context struct {
	SourceRefs []SourceRef
	PromptText string
	Media      []ai.MediaPart

	// Empty reports that no captures matched. The caller must answer
	// with the fixed empty-state message instead of invoking generation.
	Empty bool
}

// Builder assembles retrieval contexts.
type Builder struct {
	captures storage.CaptureRepository
	chunks   storage.ChunkRepository
	sessions storage.SessionRepository
	objects  objstore.Store
	pool     *ants.Pool
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "retrieval")
		return nil
	}
}

// WithObjectStore enables media resolution for image and document
// attachments. Without it the context is text-only.
func WithObjectStore(store objstore.Store) BuilderOption {
	return func(b *Builder) error {
		b.objects = store
		return nil
	}
}

// WithSessionRepository enables active-file context in capture blocks.
func WithSessionRepository(sessions storage.SessionRepository) BuilderOption {
	return func(b *Builder) error {
		b.sessions = sessions
		return nil
	}
}

// NewBuilder creates a retrieval context builder.
func NewBuilder(captures storage.CaptureRepository, chunks storage.ChunkRepository, opts ...BuilderOption) (*Builder, error) {
	if captures == nil {
		return nil, ErrCaptureRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}

	pool, err := ants.NewPool(maxMediaPayloads)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		captures: captures,
		chunks:   chunks,
		pool:     pool,
		logger:   slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}
	return b, nil
}

// Release releases the media resolution pool.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// BuildContext runs the similarity search and assembles the grounding
// context. The hit order from the search is preserved, not re-sorted.
func (b *Builder) BuildContext(ctx context.Context, scope storage.Scope, projectID core.ID, queryVector []float32, k int) (*Context, error) {
	if k <= 0 {
		k = DefaultK
	}

	matches, err := b.chunks.FindSimilar(ctx, scope, projectID, queryVector, k)
	if err != nil {
		return nil, err
	}

	// Distinct parents, first-hit order.
	var parentIDs []core.ID
	chunksByParent := make(map[core.ID][]string)
	for _, match := range matches {
		if _, seen := chunksByParent[match.CaptureId]; !seen {
			parentIDs = append(parentIDs, match.CaptureId)
		}
		chunksByParent[match.CaptureId] = append(chunksByParent[match.CaptureId], match.ChunkText)
	}

	captures, err := b.captures.GetCaptures(ctx, scope, parentIDs...)
	if err != nil {
		return nil, err
	}
	if len(captures) == 0 {
		return &Context{Empty: true}, nil
	}

	if len(captures) > maxCaptureBlocks {
		captures = captures[:maxCaptureBlocks]
	}

	result := &Context{}
	var mediaCandidates []*core.Attachment

	var rendered []captureBlock
	for _, capture := range captures {
		block := captureBlock{
			capture:   capture,
			fragments: chunksByParent[capture.Id],
		}

		attachments, err := b.captures.ListAttachments(ctx, scope, capture.Id)
		if err != nil {
			b.logger.Warn("could not list attachments", "capture", capture.Id, "err", err)
		} else {
			block.attachments = attachments
			for _, attachment := range attachments {
				if attachment.Kind.Inlineable() {
					mediaCandidates = append(mediaCandidates, attachment)
				}
			}
		}

		if b.sessions != nil && capture.SessionId != 0 {
			session, err := b.sessions.GetSession(ctx, scope, capture.SessionId)
			if err != nil {
				b.logger.Warn("could not load session", "session", capture.SessionId, "err", err)
			} else {
				block.activeFile = session.ActiveFile
			}
		}

		rendered = append(rendered, block)
		result.SourceRefs = append(result.SourceRefs, SourceRef{
			CaptureId: capture.Id,
			Type:      capture.Type.String(),
			Title:     capture.PageTitle,
			SourceURL: capture.SourceURL,
		})
	}

	result.PromptText = renderBlocks(rendered)
	result.Media = b.resolveMedia(ctx, mediaCandidates)

	return result, nil
}

// resolveMedia fetches inlineable attachments concurrently. A failure
// for one attachment omits that payload only.
func (b *Builder) resolveMedia(ctx context.Context, attachments []*core.Attachment) []ai.MediaPart {
	if b.objects == nil || len(attachments) == 0 {
		return nil
	}
	if len(attachments) > maxMediaPayloads {
		attachments = attachments[:maxMediaPayloads]
	}

	results := make([]*ai.MediaPart, len(attachments))
	var wg sync.WaitGroup
	for i, attachment := range attachments {
		wg.Add(1)
		i, attachment := i, attachment
		err := b.pool.Submit(func() {
			defer wg.Done()
			data, err := b.objects.Get(ctx, attachment.ObjectKey)
			if err != nil {
				b.logger.Warn("media resolution failed, omitting attachment",
					"object", attachment.ObjectKey, "err", err)
				return
			}
			results[i] = &ai.MediaPart{
				MIMEType: mimeTypeForKey(attachment.ObjectKey),
				Data:     data,
			}
		})
		if err != nil {
			wg.Done()
			b.logger.Warn("could not schedule media resolution", "object", attachment.ObjectKey, "err", err)
		}
	}
	wg.Wait()

	var media []ai.MediaPart
	for _, part := range results {
		if part != nil {
			media = append(media, *part)
		}
	}
	return media
}
