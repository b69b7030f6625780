package repository

import (
	"context"

	"github.com/biofolio/backend/domain"
)

// SessionRepository persists the single current session. Get returns
// domain.ErrSessionNotFound when no session is stored; Clear is idempotent.
type SessionRepository interface {
	Get(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
