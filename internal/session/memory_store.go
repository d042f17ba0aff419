package session

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	identity  Identity
	expiresAt time.Time
}

// MemoryStore is a bounded in-process store for single-node deployments.
// The least recently used session is evicted once the cache is full.
type MemoryStore struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, memoryEntry]
	byUser map[uint]map[string]struct{}
	now    func() time.Time
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	s := &MemoryStore{
		byUser: make(map[uint]map[string]struct{}),
		now:    time.Now,
	}

	// Runs inside Add/Remove, so s.mu is already held
	cache, err := lru.NewWithEvict[string, memoryEntry](size, s.unindex)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

func (s *MemoryStore) unindex(token string, entry memoryEntry) {
	tokens := s.byUser[entry.identity.ID]
	delete(tokens, token)
	if len(tokens) == 0 {
		delete(s.byUser, entry.identity.ID)
	}
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache.Get(token)
	if !ok {
		return nil, ErrNoSession
	}
	if !s.now().Before(entry.expiresAt) {
		s.cache.Remove(token)
		return nil, ErrNoSession
	}

	identity := entry.identity
	return &identity, nil
}

func (s *MemoryStore) Set(_ context.Context, token string, identity Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(token, memoryEntry{identity: identity, expiresAt: s.now().Add(ttl)})

	tokens, ok := s.byUser[identity.ID]
	if !ok {
		tokens = make(map[string]struct{})
		s.byUser[identity.ID] = tokens
	}
	tokens[token] = struct{}{}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(token)
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, token string, _ uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache.Peek(token)
	if !ok || !s.now().Before(entry.expiresAt) {
		return ErrNoSession
	}
	entry.expiresAt = s.now().Add(ttl)
	s.cache.Add(token, entry)
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token := range s.byUser[userID] {
		s.cache.Remove(token)
	}
	delete(s.byUser, userID)
	return nil
}
