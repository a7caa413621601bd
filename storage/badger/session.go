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

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (storage.SessionRepository, error) {
	idSeq, err := backend.GetSequence(sessionIDSeq)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SessionRepository) Close() error {
	return r.idSeq.Release()
}

// StartSession stores a new open session.
func (r *SessionRepository) StartSession(ctx context.Context, scope storage.Scope, session *core.Session) (*core.Session, error) {
	if !scope.Privileged() {
		session.OwnerId = scope.UserId
	}
	if session.OwnerId == 0 {
		return nil, fmt.Errorf("%w: owner is required", core.ErrInvalidSession)
	}
	if err := core.ValidateSession(session); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		session.Id = id

		now := time.Now().UTC()
		if session.StartedAt.IsZero() {
			session.StartedAt = now
		}
		session.LastActiveAt = session.StartedAt
		session.EndedAt = time.Time{}

		if err := tx.Set(makeSessionKey(session.Id), storage.MarshalSession(session)); err != nil {
			return err
		}
		projectKey := makeSessionProjectKey(session.ProjectId, session.StartedAt, session.Id)
		if err := tx.Set(projectKey, storage.MarshalID(session.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, scope storage.Scope, id core.ID) (*core.Session, error) {
	var result *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSession(tx, scope, id)
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

// ListSessionsByProject returns a project's sessions, newest first.
func (r *SessionRepository) ListSessionsByProject(ctx context.Context, scope storage.Scope, projectID core.ID) ([]*core.Session, error) {
	var results []*core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := collectIndexIDs(tx, makePartialSessionProjectKey(projectID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			session, err := readSession(tx, scope, id)
			if err != nil {
				return err
			}
			if session != nil {
				results = append(results, session)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	slices.Reverse(results)
	return results, nil
}

// TouchSession updates the last-activity timestamp and active file.
func (r *SessionRepository) TouchSession(ctx context.Context, scope storage.Scope, id core.ID, activeFile string) error {
	return r.updateSession(scope, id, func(session *core.Session) {
		session.LastActiveAt = time.Now().UTC()
		if activeFile != "" {
			session.ActiveFile = activeFile
		}
	})
}

// EndSession marks the session ended at the given time.
func (r *SessionRepository) EndSession(ctx context.Context, scope storage.Scope, id core.ID, endedAt time.Time) (*core.Session, error) {
	var result *core.Session
	err := r.updateSession(scope, id, func(session *core.Session) {
		session.EndedAt = endedAt.UTC()
		if session.EndedAt.After(session.LastActiveAt) {
			session.LastActiveAt = session.EndedAt
		}
		result = session
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetDebrief stores the generated debrief, overwriting any previous one.
func (r *SessionRepository) SetDebrief(ctx context.Context, scope storage.Scope, id core.ID, debrief string) error {
	return r.updateSession(scope, id, func(session *core.Session) {
		session.Debrief = debrief
	})
}

// readSession reads a session inside a transaction. Returns nil when
// the record is missing or outside the scope.
func readSession(tx *badger.Txn, scope storage.Scope, id core.ID) (*core.Session, error) {
	item, err := tx.Get(makeSessionKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session *core.Session
	if err := item.Value(func(val []byte) error {
		var err error
		session, err = storage.UnmarshalSession(val)
		return err
	}); err != nil {
		return nil, err
	}
	if session != nil && !scope.CanAccess(session.OwnerId) {
		return nil, nil
	}
	return session, nil
}

func (r *SessionRepository) updateSession(scope storage.Scope, id core.ID, mutate func(*core.Session)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := readSession(tx, scope, id)
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrNotFound
		}

		mutate(session)

		if err := tx.Set(makeSessionKey(id), storage.MarshalSession(session)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
