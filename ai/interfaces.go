package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Input beyond the model-safe character budget is truncated, not rejected.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer condenses raw capture text into a markdown artifact.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize produces a condensed markdown summary of the given text.
	// Input beyond the generation-safe character budget is truncated.
	// Returns an error if the summarization call fails; callers fall back to
	// the raw text rather than aborting.
	Summarize(ctx context.Context, text string) (string, error)
}

// Generator drives the streaming generation call behind a conversational answer.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateStream produces an answer incrementally, invoking onDelta for
	// each text fragment in generation order. It returns after the final
	// fragment has been delivered, or with the first error encountered.
	// Cancelling ctx abandons the underlying network call.
	GenerateStream(ctx context.Context, req GenerationRequest, onDelta func(delta string)) error
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Summarizer and Generator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the summarization service.
	Summarizer() Summarizer

	// Generator returns the streaming generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
