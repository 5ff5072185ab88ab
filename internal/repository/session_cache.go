package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/survey-assistant/internal/entity"
	"github.com/patrickmn/go-cache"
)

var _ SessionStore = &SessionCache{}

// SessionCache is an in-process SessionStore with sliding expiration
type SessionCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionCache(ttl, cleanupInterval time.Duration) *SessionCache {
	return &SessionCache{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (r *SessionCache) Get(_ context.Context, id string) (entity.Session, error) {
	item, ok := r.cache.Get(id)
	if !ok {
		return entity.Session{}, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}

	session, ok := item.(entity.Session)
	if !ok {
		return entity.Session{}, fmt.Errorf("unexpected cached type %T for session %s", item, id)
	}

	return session.Clone(), nil
}

func (r *SessionCache) Set(_ context.Context, session entity.Session) error {
	r.cache.Set(session.ID, session.Clone(), r.ttl)
	return nil
}

func (r *SessionCache) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

// Count returns the number of unexpired sessions
func (r *SessionCache) Count() int {
	return r.cache.ItemCount()
}
