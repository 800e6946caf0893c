package dialog

import (
	"context"
	"sync"
	"time"

	"todo-list.com/todo-list/internal/wizard"
)

type memoryEntry struct {
	conv      wizard.Conversation
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries older than the ttl are
// treated as absent.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, handle int64) (*wizard.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[handle]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && !s.now().Before(entry.expiresAt) {
		delete(s.entries, handle)
		return nil, nil
	}

	conv := entry.conv
	return &conv, nil
}

func (s *MemoryStore) Save(_ context.Context, conv wizard.Conversation) error {
	if conv.Handle == 0 {
		return ErrInvalidHandle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[conv.Handle] = memoryEntry{conv: conv, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, handle int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, handle)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for handle, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, handle)
			removed++
		}
	}
	return removed
}
