package ingestion

import "errors"

var (
	// ErrCaptureRepositoryRequired is returned when a capture repository is not provided.
	ErrCaptureRepositoryRequired = errors.New("capture repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
