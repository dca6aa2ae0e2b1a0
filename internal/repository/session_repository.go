package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionRevokedPrefix = "session:revoked:"

// SessionRepository tracks revoked session tokens. Tokens are stateless JWTs;
// logout records the token id here until the token's natural expiry.
type SessionRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository instantiates the Redis-backed store.
func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	return r.client.Set(ctx, sessionRevokedPrefix+tokenID, "1", ttl).Err()
}

func (r *sessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, sessionRevokedPrefix+tokenID).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, err
}
