package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/redis/go-redis/v9"
)

var _ SessionStore = &SessionRedis{}

// SessionRedis stores sessions as JSON documents with a TTL refreshed on every write
type SessionRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSessionRedis(client *redis.Client, prefix string, ttl time.Duration) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *SessionRedis) key(id string) string {
	return r.prefix + id
}

func (r *SessionRedis) Get(ctx context.Context, id string) (entity.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Session{}, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	if err != nil {
		return entity.Session{}, fmt.Errorf("load session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return entity.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	return session, nil
}

func (r *SessionRedis) Set(ctx context.Context, session entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
