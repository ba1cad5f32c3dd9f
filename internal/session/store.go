package session

import (
	"context"
	"encoding/json"
	"sync"
)

// Session keys. AuthToken and AdminSessionName are written only by the admin
// login handler; SecuritySession is owned by the guard-station integration
// and read here at most.
const (
	KeyAuthToken        = "authToken"
	KeyAdminSessionName = "adminSessionName"
	KeySecuritySession  = "securitySession"
)

// FallbackOperatorName is used when no operator identity can be resolved.
const FallbackOperatorName = "Security Officer"

// Store is a string key-value session store. Get returns "" with a nil
// error for missing keys. Single-writer, multiple-reader: only the admin
// gate writes, every workflow instance reads.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps session values in process. Suitable for single-box
// kiosks and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// ResolveOperator returns the display name attached to every mutation the
// current operator performs. Fallback chain: the admin session name, then
// the name inside the securitySession JSON blob (parse failures silently
// ignored), then FallbackOperatorName.
func ResolveOperator(ctx context.Context, store Store) string {
	if name, err := store.Get(ctx, KeyAdminSessionName); err == nil && name != "" {
		return name
	}
	if blob, err := store.Get(ctx, KeySecuritySession); err == nil && blob != "" {
		var sess struct {
			Name string `json:"name"`
		}
		if json.Unmarshal([]byte(blob), &sess) == nil && sess.Name != "" {
			return sess.Name
		}
	}
	return FallbackOperatorName
}
