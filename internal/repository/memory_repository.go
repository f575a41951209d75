package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/audioforge/studio/internal/domain"
)

// MemoryStore keeps users and history in process memory. It backs the
// "memory" store driver used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	emails  map[string]string
	history map[string]domain.HistoryItem
	order   map[string]uint64
	seq     uint64
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		emails:  make(map[string]string),
		history: make(map[string]domain.HistoryItem),
		order:   make(map[string]uint64),
		now:     time.Now,
	}
}

// Users returns a UserRepository view of the store.
func (m *MemoryStore) Users() UserRepository {
	return memoryUsers{m}
}

// History returns a HistoryRepository view of the store.
func (m *MemoryStore) History() HistoryRepository {
	return memoryHistory{m}
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, taken := r.m.emails[user.Email]; taken {
		return ErrDuplicate
	}
	now := r.m.now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.m.users[user.ID] = *user
	r.m.emails[user.Email] = user.ID
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.m.mu.RLock()
	id, ok := r.m.emails[email]
	r.m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

type memoryHistory struct{ m *MemoryStore }

func (r memoryHistory) Create(_ context.Context, item *domain.HistoryItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := r.m.now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.m.history[item.ID] = *item
	r.m.seq++
	r.m.order[item.ID] = r.m.seq
	return nil
}

func (r memoryHistory) ListByUserAndService(_ context.Context, userID string, service domain.ServiceType) ([]domain.HistoryItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	result := make([]domain.HistoryItem, 0)
	for _, item := range r.m.history {
		if item.UserID == userID && item.Service == service {
			result = append(result, item)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return r.m.order[result[i].ID] > r.m.order[result[j].ID]
	})
	return result, nil
}

func (r memoryHistory) GetByID(_ context.Context, userID, id string) (*domain.HistoryItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	item, ok := r.m.history[id]
	if !ok || item.UserID != userID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r memoryHistory) Delete(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	item, ok := r.m.history[id]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(r.m.history, id)
	delete(r.m.order, id)
	return nil
}
