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


package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/retrieval"
	"github.com/poiesic/recallit/storage"
)

// MaxHistoryTurns caps the conversation history supplied to generation.
// Older turns beyond the cap are silently dropped.
const MaxHistoryTurns = 10

// EmptyStateMessage is the verbatim answer for a project with no
// captured knowledge. It is a product contract, not a fallback: when it
// applies, generation is never invoked.
const EmptyStateMessage = "I don't have any captured knowledge for this project yet. " +
	"Capture a page, a video segment, or a note first, then ask me again."

// ErrBuilderRequired is returned when a retrieval builder is not provided.
var ErrBuilderRequired = errors.New("retrieval builder required")

// ErrAIProviderRequired is returned when an AI provider is not provided.
var ErrAIProviderRequired = errors.New("AI provider required")

// Coordinator drives one query through retrieval and generation,
// relaying the output as an event stream.
type Coordinator struct {
	embedder  ai.Embedder
	generator ai.Generator
	builder   *retrieval.Builder
	logger    *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "answer")
	}
}

// NewCoordinator creates an answer coordinator.
func NewCoordinator(provider ai.Provider, builder *retrieval.Builder, opts ...CoordinatorOption) (*Coordinator, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	c := &Coordinator{
		embedder:  provider.Embedder(),
		generator: provider.Generator(),
		builder:   builder,
		logger:    slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Answer streams the answer to one query. The returned channel closes
// after the terminal event. Cancelling ctx abandons generation and
// closes the stream.
func (c *Coordinator) Answer(ctx context.Context, scope storage.Scope, projectID core.ID, query string, history []ai.Turn) <-chan Event {
	s := newStream(ctx)
	go c.run(ctx, s, scope, projectID, query, history)
	return s.events
}

func (c *Coordinator) run(ctx context.Context, s *stream, scope storage.Scope, projectID core.ID, query string, history []ai.Turn) {
	vector, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		c.logger.Error("query embedding failed", "project", projectID, "err", err)
		s.fail(fmt.Sprintf("embedding the query failed: %v", err))
		return
	}

	retrieved, err := c.builder.BuildContext(ctx, scope, projectID, vector, retrieval.DefaultK)
	if err != nil {
		c.logger.Error("context assembly failed", "project", projectID, "err", err)
		s.fail(fmt.Sprintf("retrieving context failed: %v", err))
		return
	}

	s.sources(retrieved.SourceRefs)

	if retrieved.Empty {
		s.delta(EmptyStateMessage)
		s.done()
		return
	}

	req := ai.GenerationRequest{
		System:  renderSystemPrompt(retrieved.PromptText),
		History: capHistory(history),
		Prompt:  query,
		Media:   retrieved.Media,
	}

	err = c.generator.GenerateStream(ctx, req, func(delta string) {
		s.delta(delta)
	})
	if err != nil {
		c.logger.Error("generation failed", "project", projectID, "err", err)
		s.fail(fmt.Sprintf("generating the answer failed: %v", err))
		return
	}

	s.done()
}

// capHistory keeps the most recent MaxHistoryTurns turns, dropping the
// oldest first.
func capHistory(history []ai.Turn) []ai.Turn {
	if len(history) <= MaxHistoryTurns {
		return history
	}
	return history[len(history)-MaxHistoryTurns:]
}
