package nonce

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Safe for concurrent use. Tokens are
// only valid within the issuing process, which is exactly the self-call
// case for single-instance hosts.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time // key: action + "\x00" + token → expiry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]time.Time)}
}

func memoryKey(action, token string) string {
	// NUL separator: action strings are caller-controlled and may contain
	// any printable delimiter.
	return action + "\x00" + token
}

// Save records the token. Expired entries are swept opportunistically so
// the map does not grow without bound under steady issuance.
func (m *MemoryStore) Save(_ context.Context, action, token string, ttl time.Duration) error {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, exp := range m.tokens {
		if now.After(exp) {
			delete(m.tokens, k)
		}
	}
	m.tokens[memoryKey(action, token)] = now.Add(ttl)
	return nil
}

// Consume removes the token and reports whether it was live.
func (m *MemoryStore) Consume(_ context.Context, action, token string) (bool, error) {
	key := memoryKey(action, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.tokens[key]
	if !ok {
		return false, nil
	}
	delete(m.tokens, key)
	if time.Now().After(exp) {
		return false, nil
	}
	return true, nil
}
