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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recallit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.SummaryModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		model:  config.SummaryModel,
		logger: slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize produces a condensed markdown summary of the given text.
// Input beyond the generation-safe budget is truncated before the call.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	truncated := ai.TruncateChars(text, ai.MaxSummaryInputChars)
	s.logger.Debug("summarizing text", "length", len(truncated), "model", s.model)

	prompt := fmt.Sprintf(summaryPromptTemplate, truncated)
	out, err := llms.GenerateFromSinglePrompt(ctx, s.client, prompt)
	if err != nil {
		s.logger.Error("summarization call failed", "err", err)
		return "", err
	}

	return strings.TrimSpace(out), nil
}
