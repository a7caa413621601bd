package mock

import (
	"context"

	"github.com/poiesic/recallit/ai"
)

// Summarizer is a test double for ai.Summarizer.
type Summarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, text string) (string, error)

	callCount int
}

// NewSummarizer creates a mock summarizer with default deterministic behavior.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns a trivially derived summary of the input: the first
// 200 characters prefixed with a markdown heading.
func (m *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}

	return "## Summary\n\n" + ai.TruncateChars(text, 200), nil
}

// CallCount returns the number of times Summarize was called.
func (m *Summarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *Summarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
}
