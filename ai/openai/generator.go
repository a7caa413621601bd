package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/recallit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		model:  config.ChatModel,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new streaming generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// GenerateStream drives one streaming generation call. Deltas are forwarded
// to onDelta in generation order; cancelling ctx abandons the call.
func (g *Generator) GenerateStream(ctx context.Context, req ai.GenerationRequest, onDelta func(delta string)) error {
	messages := buildMessages(req)
	g.logger.Debug("starting generation stream",
		"model", g.model, "history", len(req.History), "media", len(req.Media))

	_, err := g.client.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) > 0 && onDelta != nil {
				onDelta(string(chunk))
			}
			return ctx.Err()
		}),
	)
	if err != nil {
		g.logger.Error("generation stream failed", "err", err)
		return fmt.Errorf("generation: %w", err)
	}
	return nil
}

// buildMessages maps a GenerationRequest onto langchaingo message contents.
// Media parts ride on the final user message.
func buildMessages(req ai.GenerationRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.History)+2)

	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}

	for _, turn := range req.History {
		role := llms.ChatMessageTypeHuman
		if turn.Role == ai.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}

	parts := []llms.ContentPart{llms.TextPart(req.Prompt)}
	for _, media := range req.Media {
		parts = append(parts, llms.BinaryPart(media.MIMEType, media.Data))
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	})

	return messages
}
