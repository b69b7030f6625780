package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/repository"
)

type sessionRepository struct {
	client *redislib.Client
	key    string
}

// NewSessionRepository creates a Redis-backed session repository. The service
// tracks a single current session, so everything lives under one fixed key
// with no TTL; the session only goes away on explicit logout.
func NewSessionRepository(client *redislib.Client) repository.SessionRepository {
	return &sessionRepository{
		client: client,
		key:    "session:current",
	}
}

func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, 0).Err()
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
