package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// CaptureRepository implements storage.CaptureRepository for BadgerDB.
type CaptureRepository struct {
	backend   *Backend
	idSeq     *badger.Sequence
	attachSeq *badger.Sequence
}

var _ storage.CaptureRepository = (*CaptureRepository)(nil)

// NewCaptureRepository creates a new CaptureRepository.
func NewCaptureRepository(backend *Backend) (storage.CaptureRepository, error) {
	idSeq, err := backend.GetSequence(captureIDSeq)
	if err != nil {
		return nil, err
	}

	attachSeq, err := backend.GetSequence(attachmentIDSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	return &CaptureRepository{
		backend:   backend,
		idSeq:     idSeq,
		attachSeq: attachSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *CaptureRepository) Close() error {
	err := r.idSeq.Release()
	if aerr := r.attachSeq.Release(); err == nil {
		err = aerr
	}
	return err
}

// AddCapture stores a new capture.
func (r *CaptureRepository) AddCapture(ctx context.Context, scope storage.Scope, capture *core.Capture) (*core.Capture, error) {
	if !scope.Privileged() {
		capture.OwnerId = scope.UserId
	}
	if capture.OwnerId == 0 {
		return nil, fmt.Errorf("%w: owner is required", core.ErrInvalidCapture)
	}
	if err := core.ValidateCapture(capture); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		capture.Id = id
		capture.CreatedAt = time.Now().UTC()
		capture.UpdatedAt = capture.CreatedAt

		if err := tx.Set(makeCaptureKey(capture.Id), storage.MarshalCapture(capture)); err != nil {
			return err
		}

		projectKey := makeCaptureProjectKey(capture.ProjectId, capture.CreatedAt, capture.Id)
		if err := tx.Set(projectKey, storage.MarshalID(capture.Id)); err != nil {
			return err
		}

		if capture.SessionId != 0 {
			sessionKey := makeCaptureSessionKey(capture.SessionId, capture.CreatedAt, capture.Id)
			if err := tx.Set(sessionKey, storage.MarshalID(capture.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return capture, nil
}

// GetCapture retrieves a single capture by ID.
func (r *CaptureRepository) GetCapture(ctx context.Context, scope storage.Scope, id core.ID) (*core.Capture, error) {
	var result *core.Capture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCapture(tx, scope, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCaptures retrieves multiple captures by their IDs, skipping
// missing and out-of-scope records.
func (r *CaptureRepository) GetCaptures(ctx context.Context, scope storage.Scope, ids ...core.ID) ([]*core.Capture, error) {
	var result []*core.Capture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			capture, err := readCapture(tx, scope, id)
			if err != nil {
				return err
			}
			if capture != nil {
				result = append(result, capture)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListCapturesByProject returns the captures of a project, newest first.
func (r *CaptureRepository) ListCapturesByProject(ctx context.Context, scope storage.Scope, projectID core.ID) ([]*core.Capture, error) {
	captures, err := r.listByIndex(scope, makePartialCaptureProjectKey(projectID))
	if err != nil {
		return nil, err
	}
	slices.Reverse(captures)
	return captures, nil
}

// ListCapturesBySession returns the captures of a session, oldest first.
func (r *CaptureRepository) ListCapturesBySession(ctx context.Context, scope storage.Scope, sessionID core.ID) ([]*core.Capture, error) {
	return r.listByIndex(scope, makePartialCaptureSessionKey(sessionID))
}

// UpdateCaptureText replaces the capture's normalized text.
func (r *CaptureRepository) UpdateCaptureText(ctx context.Context, scope storage.Scope, id core.ID, text string) error {
	return r.updateCapture(scope, id, func(capture *core.Capture) {
		capture.Text = text
	})
}

// UpdateCaptureSummary replaces the capture's summary.
func (r *CaptureRepository) UpdateCaptureSummary(ctx context.Context, scope storage.Scope, id core.ID, summary string) error {
	return r.updateCapture(scope, id, func(capture *core.Capture) {
		capture.Summary = summary
	})
}

// DeleteCapture removes a capture with its attachments and chunks.
func (r *CaptureRepository) DeleteCapture(ctx context.Context, scope storage.Scope, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		capture, err := readCapture(tx, scope, id)
		if err != nil {
			return err
		}
		if capture == nil {
			return storage.ErrNotFound
		}

		// Attachments
		attachmentIDs, err := collectIndexIDs(tx, makePartialAttachmentCaptureKey(id))
		if err != nil {
			return err
		}
		for _, attachmentID := range attachmentIDs {
			if err := tx.Delete(makeAttachmentKey(attachmentID)); err != nil {
				return err
			}
			if err := tx.Delete(makeAttachmentCaptureKey(id, attachmentID)); err != nil {
				return err
			}
		}

		// Derived chunks
		if err := deleteChunksForCapture(tx, id); err != nil {
			return err
		}

		// Indexes, then the primary record
		projectKey := makeCaptureProjectKey(capture.ProjectId, capture.CreatedAt, capture.Id)
		if err := tx.Delete(projectKey); err != nil {
			return err
		}
		if capture.SessionId != 0 {
			sessionKey := makeCaptureSessionKey(capture.SessionId, capture.CreatedAt, capture.Id)
			if err := tx.Delete(sessionKey); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeCaptureKey(id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// AddAttachments stores attachments for an existing capture.
func (r *CaptureRepository) AddAttachments(ctx context.Context, scope storage.Scope, attachments ...*core.Attachment) ([]*core.Attachment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, attachment := range attachments {
			if err := core.ValidateAttachment(attachment); err != nil {
				return err
			}

			parent, err := readCapture(tx, scope, attachment.CaptureId)
			if err != nil {
				return err
			}
			if parent == nil {
				return storage.ErrNotFound
			}

			id, err := nextID(r.attachSeq)
			if err != nil {
				return err
			}
			attachment.Id = id
			attachment.CreatedAt = time.Now().UTC()

			if err := tx.Set(makeAttachmentKey(attachment.Id), storage.MarshalAttachment(attachment)); err != nil {
				return err
			}
			indexKey := makeAttachmentCaptureKey(attachment.CaptureId, attachment.Id)
			if err := tx.Set(indexKey, storage.MarshalID(attachment.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// ListAttachments returns a capture's attachments, oldest first.
func (r *CaptureRepository) ListAttachments(ctx context.Context, scope storage.Scope, captureID core.ID) ([]*core.Attachment, error) {
	var results []*core.Attachment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		parent, err := readCapture(tx, scope, captureID)
		if err != nil {
			return err
		}
		if parent == nil {
			return storage.ErrNotFound
		}

		ids, err := collectIndexIDs(tx, makePartialAttachmentCaptureKey(captureID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			item, err := tx.Get(makeAttachmentKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var attachment *core.Attachment
			if err := item.Value(func(val []byte) error {
				var err error
				attachment, err = storage.UnmarshalAttachment(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, attachment)
		}
		return nil
	}, false)
	return results, err
}

// readCapture reads a capture inside a transaction. Returns nil when
// the record is missing or outside the scope.
func readCapture(tx *badger.Txn, scope storage.Scope, id core.ID) (*core.Capture, error) {
	item, err := tx.Get(makeCaptureKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var capture *core.Capture
	if err := item.Value(func(val []byte) error {
		var err error
		capture, err = storage.UnmarshalCapture(val)
		return err
	}); err != nil {
		return nil, err
	}
	if capture != nil && !scope.CanAccess(capture.OwnerId) {
		return nil, nil
	}
	return capture, nil
}

func (r *CaptureRepository) updateCapture(scope storage.Scope, id core.ID, mutate func(*core.Capture)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		capture, err := readCapture(tx, scope, id)
		if err != nil {
			return err
		}
		if capture == nil {
			return storage.ErrNotFound
		}

		mutate(capture)
		capture.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeCaptureKey(id), storage.MarshalCapture(capture)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// listByIndex scans a composite index and resolves the referenced
// captures in index order, dropping out-of-scope records.
func (r *CaptureRepository) listByIndex(scope storage.Scope, partial []byte) ([]*core.Capture, error) {
	var results []*core.Capture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := collectIndexIDs(tx, partial)
		if err != nil {
			return err
		}
		for _, id := range ids {
			capture, err := readCapture(tx, scope, id)
			if err != nil {
				return err
			}
			if capture != nil {
				results = append(results, capture)
			}
		}
		return nil
	}, false)
	return results, err
}

// collectIndexIDs gathers the IDs stored under a partial index key.
func collectIndexIDs(tx *badger.Txn, partial []byte) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = partial
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
