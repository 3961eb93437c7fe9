// Package memcache provides a small TTL key/value store used for reset
// tokens and cached provider lookups.
package memcache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Consume returns the value and deletes the key (single use).
	Consume(ctx context.Context, key string) (string, error)
}

type entry struct {
	value     string
	expiresAt time.Time
}

type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		return "", ErrMiss
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.evictExpiredLocked()
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return "", ErrMiss
	}
	delete(s.data, key)
	if s.now().After(e.expiresAt) {
		return "", ErrMiss
	}
	return e.value, nil
}

func (s *InMemoryStore) evictExpiredLocked() {
	if len(s.data) < 1024 {
		return
	}
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}
