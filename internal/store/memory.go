package store

import (
	"errors"
	"sync"
	"time"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
)

var (
	// ErrNotFound is returned when no reference is stored for a conversation.
	ErrNotFound = errors.New("no reference for conversation")
)

// storedReference pairs a conversation reference with the time it was last
// refreshed.
type storedReference struct {
	ref     activity.ConversationReference
	savedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory store of conversation
// references, keyed by conversation ID. The latest reference for a
// conversation wins.
type MemoryStore struct {
	mu sync.RWMutex

	// key: conversation ID, value: latest reference
	data map[string]storedReference

	// optional max age for references
	maxAge time.Duration
}

// NewMemoryStore creates a new MemoryStore. If maxAge is <= 0, references
// never expire.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]storedReference),
		maxAge: maxAge,
	}
}

// Save records ref as the latest reference for its conversation. References
// without a conversation ID are not addressable and are dropped.
func (s *MemoryStore) Save(ref activity.ConversationReference) {
	if ref.Conversation.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[ref.Conversation.ID] = storedReference{ref: ref, savedAt: time.Now()}
}

// Get returns the stored reference for a conversation.
func (s *MemoryStore) Get(conversationID string) (activity.ConversationReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.data[conversationID]
	if !ok || s.expired(sr, time.Now()) {
		return activity.ConversationReference{}, ErrNotFound
	}
	return sr.ref, nil
}

// List returns every stored reference that is within the age limit, in no
// particular order.
func (s *MemoryStore) List() []activity.ConversationReference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	refs := make([]activity.ConversationReference, 0, len(s.data))
	for _, sr := range s.data {
		if s.expired(sr, now) {
			continue
		}
		refs = append(refs, sr.ref)
	}
	return refs
}

// Prune drops references older than the age limit and reports how many were
// removed.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, sr := range s.data {
		if s.expired(sr, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored references, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

func (s *MemoryStore) expired(sr storedReference, now time.Time) bool {
	return s.maxAge > 0 && sr.savedAt.Before(now.Add(-s.maxAge))
}
