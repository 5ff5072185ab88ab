package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStorage keeps chat sessions in memory; idle mappings expire after ttl
type CacheStorage struct {
	cache *cache.Cache
}

func NewCacheStorage(ttl, cleanupInterval time.Duration) *CacheStorage {
	return &CacheStorage{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *CacheStorage) Get(_ context.Context, userID int64) (*ChatSession, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrChatNotFound, userID)
	}
	session := v.(ChatSession)
	return &session, nil
}

func (s *CacheStorage) Set(_ context.Context, session *ChatSession) error {
	s.cache.SetDefault(key(session.UserID), *session)
	return nil
}

func (s *CacheStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}
