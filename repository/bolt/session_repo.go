package bolt

import (
	"context"
	"encoding/json"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/internal/infrastructure/localstore"
	"github.com/biofolio/backend/repository"
)

// KeySession is the persisted key holding the serialized current session.
const KeySession = "session"

type sessionRepository struct {
	store *localstore.Store
}

// NewSessionRepository creates a Bolt-backed session repository.
func NewSessionRepository(store *localstore.Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	raw, err := r.store.Get(localstore.BucketApp, KeySession)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt session blob", err)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.Put(localstore.BucketApp, KeySession, payload)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(localstore.BucketApp, KeySession)
}
