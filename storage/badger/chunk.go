package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// AddChunks stores a batch of chunks in a single transaction, so a
// failure on any chunk leaves none of them persisted.
func (r *ChunkRepository) AddChunks(ctx context.Context, scope storage.Scope, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Text == "" {
				return fmt.Errorf("%w: chunk text", core.ErrEmptyText)
			}
			if chunk.CaptureId == 0 {
				return fmt.Errorf("%w: chunk capture reference", storage.ErrInvalidQuery)
			}

			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			chunk.Id = id
			chunk.CreatedAt = time.Now().UTC()

			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			indexKey := makeChunkCaptureKey(chunk.CaptureId, chunk.Ordinal, chunk.Id)
			if err := tx.Set(indexKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunksByCapture returns a capture's chunks ordered by ordinal.
func (r *ChunkRepository) GetChunksByCapture(ctx context.Context, scope storage.Scope, captureID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		parent, err := readCapture(tx, scope, captureID)
		if err != nil {
			return err
		}
		if parent == nil {
			return storage.ErrNotFound
		}

		ids, err := collectIndexIDs(tx, makePartialChunkCaptureKey(captureID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var chunk *core.Chunk
			if err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	return results, err
}

// DeleteChunksByCapture removes all chunks derived from a capture.
func (r *ChunkRepository) DeleteChunksByCapture(ctx context.Context, scope storage.Scope, captureID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		parent, err := readCapture(tx, scope, captureID)
		if err != nil {
			return err
		}
		if parent == nil {
			return storage.ErrNotFound
		}

		if err := deleteChunksForCapture(tx, captureID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSimilar delegates to the backend scan. Scoping happens when the
// parent captures are resolved through the capture repository.
func (r *ChunkRepository) FindSimilar(ctx context.Context, scope storage.Scope, projectID core.ID, vector []float32, limit int) ([]core.SimilarityMatch, error) {
	return r.backend.FindSimilarChunks(ctx, projectID, vector, limit)
}

// deleteChunksForCapture removes the chunk records and index entries of
// a capture within an open write transaction.
func deleteChunksForCapture(tx *badger.Txn, captureID core.ID) error {
	partial := makePartialChunkCaptureKey(captureID)

	type entry struct {
		indexKey []byte
		chunkID  core.ID
	}
	var entries []entry

	opts := badger.DefaultIteratorOptions
	opts.Prefix = partial
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			iter.Close()
			return err
		}
		entries = append(entries, entry{indexKey: iter.Item().KeyCopy(nil), chunkID: id})
	}
	iter.Close()

	for _, e := range entries {
		if err := tx.Delete(makeChunkKey(e.chunkID)); err != nil {
			return err
		}
		if err := tx.Delete(e.indexKey); err != nil {
			return err
		}
	}
	return nil
}
