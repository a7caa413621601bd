package mock

import (
	"context"
	"strings"

	"github.com/poiesic/recallit/ai"
)

// Generator is a test double for ai.Generator.
type Generator struct {
	// GenerateStreamFunc is called by GenerateStream if set.
	// If nil, uses default deterministic behavior.
	GenerateStreamFunc func(ctx context.Context, req ai.GenerationRequest, onDelta func(delta string)) error

	// LastRequest holds the most recent request for test assertions.
	LastRequest ai.GenerationRequest

	callCount int
}

// NewGenerator creates a mock generator with default deterministic behavior.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateStream echoes the prompt back word by word as deltas.
func (m *Generator) GenerateStream(ctx context.Context, req ai.GenerationRequest, onDelta func(delta string)) error {
	m.callCount++
	m.LastRequest = req

	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, req, onDelta)
	}

	for i, word := range strings.Fields(req.Prompt) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onDelta != nil {
			if i > 0 {
				onDelta(" ")
			}
			onDelta(word)
		}
	}
	return nil
}

// CallCount returns the number of times GenerateStream was called.
func (m *Generator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *Generator) Reset() {
	m.callCount = 0
	m.GenerateStreamFunc = nil
	m.LastRequest = ai.GenerationRequest{}
}
