// File: services/command/sessionStore.go
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"transitops/models"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists confirmation sessions. CompareAndSwapStatus must be
// atomic: of N concurrent swaps from the same expected status, exactly one
// succeeds.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConfirmationSession, error)
	Set(ctx context.Context, session *models.ConfirmationSession, ttl time.Duration) error
	CompareAndSwapStatus(ctx context.Context, sessionID, from, to string) (*models.ConfirmationSession, bool, error)
	SetOwnerIndex(ctx context.Context, operatorID, sessionID string, ttl time.Duration) error
	GetOwnerIndex(ctx context.Context, operatorID string) (string, error)
	DelOwnerIndex(ctx context.Context, operatorID string) error
}

// RedisSessionStore implements SessionStore on Redis. Sessions are kept
// twice as long as their logical TTL so a late confirm still gets a precise
// "expired" answer instead of a generic not-found.
type RedisSessionStore struct {
	Client *redis.Client
}

func sessionKey(id string) string { return "confirm:sess:" + id }
func ownerKey(opID string) string { return "confirm:owner:" + opID }

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.ConfirmationSession, error) {
	raw, err := s.Client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrNothingToConfirm
	}
	if err != nil {
		return nil, fmt.Errorf("session read failed: %w", err)
	}
	var session models.ConfirmationSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session *models.ConfirmationSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.Client.Set(ctx, sessionKey(session.SessionID), raw, 2*ttl).Err(); err != nil {
		return fmt.Errorf("session write failed: %w", err)
	}
	return nil
}

// CompareAndSwapStatus transitions the session's status under a WATCH so
// concurrent confirms race on the same key and only one transaction commits.
func (s *RedisSessionStore) CompareAndSwapStatus(ctx context.Context, sessionID, from, to string) (*models.ConfirmationSession, bool, error) {
	key := sessionKey(sessionID)
	var session models.ConfirmationSession
	swapped := false

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNothingToConfirm
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return fmt.Errorf("failed to decode session: %w", err)
		}
		if session.Status != from {
			return nil
		}

		session.Status = to
		updated, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		swapped = true
		return nil
	}

	for i := 0; i < 5; i++ {
		err := s.Client.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			swapped = false
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return &session, swapped, nil
	}
	return nil, false, fmt.Errorf("session %s: too much contention", sessionID)
}

func (s *RedisSessionStore) SetOwnerIndex(ctx context.Context, operatorID, sessionID string, ttl time.Duration) error {
	return s.Client.Set(ctx, ownerKey(operatorID), sessionID, ttl).Err()
}

func (s *RedisSessionStore) GetOwnerIndex(ctx context.Context, operatorID string) (string, error) {
	id, err := s.Client.Get(ctx, ownerKey(operatorID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (s *RedisSessionStore) DelOwnerIndex(ctx context.Context, operatorID string) error {
	return s.Client.Del(ctx, ownerKey(operatorID)).Err()
}
