package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/audioforge/studio/internal/domain"
)

// StatusStore keeps short-lived generation status records.
type StatusStore interface {
	Put(ctx context.Context, status domain.GenerationStatus) error
	Get(ctx context.Context, audioID string) (*domain.GenerationStatus, error)
}

const statusKeyPrefix = "generation:"

type redisStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatusStore stores status records as JSON values expiring after ttl.
func NewRedisStatusStore(client *redis.Client, ttl time.Duration) StatusStore {
	return &redisStatusStore{client: client, ttl: ttl}
}

func (s *redisStatusStore) Put(ctx context.Context, status domain.GenerationStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	return s.client.Set(ctx, statusKeyPrefix+status.AudioID, raw, s.ttl).Err()
}

func (s *redisStatusStore) Get(ctx context.Context, audioID string) (*domain.GenerationStatus, error) {
	raw, err := s.client.Get(ctx, statusKeyPrefix+audioID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var status domain.GenerationStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

type memoryStatusEntry struct {
	status    domain.GenerationStatus
	expiresAt time.Time
}

type memoryStatusStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryStatusEntry
	now     func() time.Time
}

// NewMemoryStatusStore is the fallback used when Redis is not configured.
func NewMemoryStatusStore(ttl time.Duration) StatusStore {
	return &memoryStatusStore{ttl: ttl, entries: make(map[string]memoryStatusEntry), now: time.Now}
}

func (s *memoryStatusStore) Put(_ context.Context, status domain.GenerationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.entries[status.AudioID] = memoryStatusEntry{status: status, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *memoryStatusStore) Get(_ context.Context, audioID string) (*domain.GenerationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[audioID]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrNotFound
	}
	status := entry.status
	return &status, nil
}
