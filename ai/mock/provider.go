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


package mock

import "github.com/poiesic/recallit/ai"

// Provider is a test double for ai.Provider.
// It aggregates mock embedder, summarizer and generator instances.
type Provider struct {
	embedder   *Embedder
	summarizer *Summarizer
	generator  *Generator
}

// NewProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetEmbedder()/GetSummarizer()/GetGenerator() to access concrete types
// for test assertions.
func NewProvider() ai.Provider {
	return &Provider{
		embedder:   NewEmbedder(),
		summarizer: NewSummarizer(),
		generator:  NewGenerator(),
	}
}

// NewProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewProviderWithServices(embedder *Embedder, summarizer *Summarizer, generator *Generator) ai.Provider {
	return &Provider{
		embedder:   embedder,
		summarizer: summarizer,
		generator:  generator,
	}
}

// Embedder returns the mock embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Summarizer returns the mock summarizer.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// Generator returns the mock generator.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close is a no-op for mock provider.
func (p *Provider) Close() error {
	return nil
}

// GetEmbedder returns the underlying mock embedder for test assertions.
func (p *Provider) GetEmbedder() *Embedder {
	return p.embedder
}

// GetSummarizer returns the underlying mock summarizer for test assertions.
func (p *Provider) GetSummarizer() *Summarizer {
	return p.summarizer
}

// GetGenerator returns the underlying mock generator for test assertions.
func (p *Provider) GetGenerator() *Generator {
	return p.generator
}
