package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cat-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 32

// SessionStore keeps game sessions in Redis as JSON documents.
// Every write refreshes the key TTL, so abandoned games expire on their own
// and sessions survive restarts and are visible to every instance.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.GameState, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameState{}, fmt.Errorf("get session: %w", err)
	}
	var state domain.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.GameState{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return state, nil
}

func (s *SessionStore) Set(ctx context.Context, state domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Update applies fn under WATCH on the session key and retries when another
// writer changes the key before EXEC.
func (s *SessionStore) Update(ctx context.Context, sessionID string, fn func(*domain.GameState) error) (domain.GameState, error) {
	key := s.key(sessionID)
	var updated domain.GameState

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		var state domain.GameState
		if err := json.Unmarshal(raw, &state); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if err := fn(&state); err != nil {
			return err
		}
		next, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = state
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.GameState{}, err
		}
		return updated, nil
	}
	return domain.GameState{}, fmt.Errorf("update session %s: too much contention", sessionID)
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return "trivia:session:" + sessionID
}
