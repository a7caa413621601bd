package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/chunker"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/objstore"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/transcript"
)

// Pipeline orchestrates the background enrichment of captures. It owns
// a worker pool; the request path only calls Enqueue and returns.
type Pipeline struct {
	captures    storage.CaptureRepository
	chunks      storage.ChunkRepository
	summarizer  ai.Summarizer
	embedder    ai.Embedder
	transcripts transcript.Fetcher
	extractor   *TextExtractor
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for background tasks.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithTranscriptFetcher sets the transcript collaborator for video
// captures. Default is transcript.Disabled.
func WithTranscriptFetcher(fetcher transcript.Fetcher) Option {
	return func(p *Pipeline) error {
		if fetcher == nil {
			fetcher = transcript.Disabled{}
		}
		p.transcripts = fetcher
		return nil
	}
}

// WithObjectStore enables text extraction from uploaded documents.
// Without it, resource uploads chunk only their pre-supplied text.
func WithObjectStore(store objstore.Store) Option {
	return func(p *Pipeline) error {
		if store == nil {
			p.extractor = nil
			return nil
		}
		p.extractor = NewTextExtractor(store)
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	captures storage.CaptureRepository,
	chunks storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if captures == nil {
		return nil, ErrCaptureRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		captures:    captures,
		chunks:      chunks,
		summarizer:  provider.Summarizer(),
		embedder:    provider.Embedder(),
		transcripts: transcript.Disabled{},
		pool:        pool,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Enqueue submits a capture for background processing. The capture row
// must already be persisted. Processing errors are logged, never
// surfaced to the caller.
func (p *Pipeline) Enqueue(captureID core.ID) error {
	return p.pool.Submit(func() {
		if err := p.process(context.Background(), captureID); err != nil {
			p.logger.Error("error processing capture", "capture", captureID, "err", err)
		}
	})
}

// Process runs the pipeline for one capture synchronously. Enqueue is
// the normal entry point; this exists for one-shot CLI ingestion.
func (p *Pipeline) Process(ctx context.Context, captureID core.ID) error {
	return p.process(ctx, captureID)
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) scope() storage.Scope {
	return storage.PrivilegedScope()
}

// process walks one capture through normalize, enrich, chunk, embed
// and persist.
func (p *Pipeline) process(ctx context.Context, captureID core.ID) error {
	scope := p.scope()

	capture, err := p.captures.GetCapture(ctx, scope, captureID)
	if err != nil {
		return err
	}

	text, changed := p.normalize(ctx, capture)
	if changed {
		if err := p.captures.UpdateCaptureText(ctx, scope, capture.Id, text); err != nil {
			p.logger.Warn("could not persist normalized text", "capture", capture.Id, "err", err)
		}
	}
	if text == "" {
		p.logger.Debug("capture has no text to process", "capture", capture.Id)
		return nil
	}
	capture.Text = text

	summary := p.enrich(ctx, scope, capture)

	candidates := p.chunkCapture(capture, summary)
	if len(candidates) == 0 {
		return nil
	}

	survivors := p.embedChunks(ctx, capture, candidates)
	if len(survivors) == 0 {
		p.logger.Warn("no chunks survived embedding", "capture", capture.Id)
		return nil
	}

	if _, err := p.chunks.AddChunks(ctx, scope, survivors...); err != nil {
		p.logger.Error("error persisting chunks", "capture", capture.Id, "chunks", len(survivors), "err", err)
		return nil
	}

	p.logger.Info("capture processed", "capture", capture.Id, "chunks", len(survivors))
	return nil
}

// enrich produces and persists the summary. On failure it returns the
// empty string and downstream stages fall back to the raw text.
func (p *Pipeline) enrich(ctx context.Context, scope storage.Scope, capture *core.Capture) string {
	summary, err := p.summarizer.Summarize(ctx, capture.Text)
	if err != nil {
		p.logger.Warn("summarization failed, using raw text", "capture", capture.Id, "err", err)
		return ""
	}
	if summary == "" {
		return ""
	}
	if err := p.captures.UpdateCaptureSummary(ctx, scope, capture.Id, summary); err != nil {
		p.logger.Warn("could not persist summary", "capture", capture.Id, "err", err)
	}
	return summary
}

// chunkCandidate pairs a chunk text with its origin before embedding.
type chunkCandidate struct {
	text   string
	origin core.ChunkOrigin
}

// chunkCapture produces the chunk candidates for a capture. Code
// oriented captures chunk both the raw material and the enrichment
// artifact so retrieval can tell verbatim code from explanation.
func (p *Pipeline) chunkCapture(capture *core.Capture, summary string) []chunkCandidate {
	opts := chunker.Options{FileNameHint: capture.FilePath}

	// Identical text across origins would embed to the same point, so
	// only the first occurrence is kept.
	seen := make(map[core.ID]bool)
	add := func(candidates []chunkCandidate, texts []string, origin core.ChunkOrigin) []chunkCandidate {
		for _, text := range texts {
			contentID := core.IDFromContent(text)
			if seen[contentID] {
				continue
			}
			seen[contentID] = true
			candidates = append(candidates, chunkCandidate{text: text, origin: origin})
		}
		return candidates
	}

	var candidates []chunkCandidate
	if capture.Type.IsCodeOriented() {
		candidates = add(candidates, chunker.Chunk(capture.Text, opts), core.ChunkOriginRaw)
		candidates = add(candidates, chunker.Chunk(summary, opts), core.ChunkOriginExplanation)
		return candidates
	}

	basis := summary
	if strings.TrimSpace(basis) == "" {
		basis = capture.Text
	}
	return add(candidates, chunker.Chunk(basis, opts), core.ChunkOriginRaw)
}

// embedChunks embeds each candidate independently. A failed embedding
// drops that chunk only; surviving chunks keep their original ordinal.
func (p *Pipeline) embedChunks(ctx context.Context, capture *core.Capture, candidates []chunkCandidate) []*core.Chunk {
	var survivors []*core.Chunk
	for ordinal, candidate := range candidates {
		vector, err := p.embedder.EmbedText(ctx, candidate.text)
		if err != nil {
			p.logger.Warn("chunk embedding failed, omitting chunk",
				"capture", capture.Id, "ordinal", ordinal, "err", err)
			continue
		}
		survivors = append(survivors, &core.Chunk{
			CaptureId: capture.Id,
			ProjectId: capture.ProjectId,
			Ordinal:   ordinal,
			Text:      candidate.text,
			Vector:    vector,
			Origin:    candidate.origin,
		})
	}
	return survivors
}
