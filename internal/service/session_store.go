package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenKind separates access and refresh token ids in the store.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access_token"
	TokenKindRefresh TokenKind = "refresh_token"
)

// SessionStore tracks which issued tokens are still live. A token whose id is
// missing from the store has been revoked or has expired.
type SessionStore interface {
	Store(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(kind TokenKind, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID.String(), tokenID)
}

func (s *redisSessionStore) Store(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(kind, userID, tokenID), "valid", ttl).Err()
}

func (s *redisSessionStore) Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(kind, userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKey(kind, userID, tokenID)).Err()
}
