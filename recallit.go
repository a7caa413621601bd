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


package recallit

import (
	"log/slog"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/ai/openai"
	"github.com/poiesic/recallit/answer"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/retrieval"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/poiesic/recallit/transcript"
)

// Service wires the storage backend, repositories, model provider and
// pipelines into one handle. The server and CLI both run on top of it.
type Service struct {
	backend     *badger.Backend
	captureRepo storage.CaptureRepository
	chunkRepo   storage.ChunkRepository
	sessionRepo storage.SessionRepository
	objects     objstore.Store
	provider    ai.Provider
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	objects  objstore.Store
	inMemory bool
}

// WithAIConfig sets the model endpoint configuration used to build the
// default OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready-made provider instead of constructing
// one from the AI config. Used by tests and one-shot CLI runs.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithObjectStore sets the object-storage collaborator for attachments
// and uploads. Without it, upload signing and media resolution are off.
func WithObjectStore(store objstore.Store) ServiceOption {
	return func(o *serviceOptions) {
		o.objects = store
	}
}

// WithInMemoryStorage opens the structured store in memory. Used by
// tests and throwaway runs.
func WithInMemoryStorage() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// NewService opens the structured store at filePath and wires the
// repositories and model provider.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	captureRepo, err := badger.NewCaptureRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		captureRepo.Close()
		backend.Close()
		return nil, err
	}

	sessionRepo, err := badger.NewSessionRepository(backend)
	if err != nil {
		chunkRepo.Close()
		captureRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			sessionRepo.Close()
			chunkRepo.Close()
			captureRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Service{
		backend:     backend,
		captureRepo: captureRepo,
		chunkRepo:   chunkRepo,
		sessionRepo: sessionRepo,
		objects:     options.objects,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the provider, repositories and backend.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if s.objects != nil {
		if err := s.objects.Close(); err != nil {
			s.logger.Error("error closing object store", "err", err)
		}
	}

	if err := s.sessionRepo.Close(); err != nil {
		s.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.captureRepo.Close(); err != nil {
		s.logger.Error("error closing capture repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Service) CaptureRepository() storage.CaptureRepository {
	return s.captureRepo
}

func (s *Service) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

func (s *Service) SessionRepository() storage.SessionRepository {
	return s.sessionRepo
}

func (s *Service) ObjectStore() objstore.Store {
	return s.objects
}

func (s *Service) Provider() ai.Provider {
	return s.provider
}

// NewIngestionPipeline builds a pipeline over this service's
// repositories and provider. The object store and transcript fetcher
// are pre-wired; extra options may override them.
func (s *Service) NewIngestionPipeline(fetcher transcript.Fetcher, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithTranscriptFetcher(fetcher),
		ingestion.WithObjectStore(s.objects),
	}
	return ingestion.NewPipeline(s.captureRepo, s.chunkRepo, s.provider, append(base, opts...)...)
}

// NewContextBuilder builds a retrieval context builder over this
// service's repositories.
func (s *Service) NewContextBuilder(opts ...retrieval.BuilderOption) (*retrieval.Builder, error) {
	base := []retrieval.BuilderOption{
		retrieval.WithSessionRepository(s.sessionRepo),
	}
	if s.objects != nil {
		base = append(base, retrieval.WithObjectStore(s.objects))
	}
	return retrieval.NewBuilder(s.captureRepo, s.chunkRepo, append(base, opts...)...)
}

// NewAnswerCoordinator builds an answer coordinator over the given
// retrieval builder.
func (s *Service) NewAnswerCoordinator(builder *retrieval.Builder, opts ...answer.CoordinatorOption) (*answer.Coordinator, error) {
	return answer.NewCoordinator(s.provider, builder, opts...)
}
