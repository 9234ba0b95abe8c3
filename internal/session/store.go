// Package session owns the logged-in user.
//
// A [Store] persists one user per scope (the terminal counterpart of a browser tab).
// [Manager] is the single owner of the store: it reads it once at startup and is the
// only writer, through [Manager.Login] and [Manager.Logout]. Sessions never expire.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desertthunder/promo/internal/models"
)

// UserKey is the storage key holding the JSON-encoded user.
const UserKey = "user"

// Store persists the active user.
type Store interface {
	// Load returns the saved user, or nil when the store is empty.
	Load() (*models.User, error)
	Save(user *models.User) error
	Clear() error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return decodeUser(string(s.data))
}

func (s *MemoryStore) Save(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// KeyValue is scoped string storage, implemented by repositories.StorageRepository.
type KeyValue interface {
	Get(scope, key string) (string, bool, error)
	Set(scope, key, value string) error
	Delete(scope, key string) error
}

// KVStore persists the session as JSON under [UserKey] in one scope of a [KeyValue].
type KVStore struct {
	kv    KeyValue
	scope string
}

// NewKVStore binds a store to scope.
func NewKVStore(kv KeyValue, scope string) *KVStore {
	return &KVStore{kv: kv, scope: scope}
}

// Scope returns the storage scope this store reads and writes.
func (s *KVStore) Scope() string {
	return s.scope
}

func (s *KVStore) Load() (*models.User, error) {
	value, ok, err := s.kv.Get(s.scope, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return decodeUser(value)
}

func (s *KVStore) Save(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Set(s.scope, UserKey, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *KVStore) Clear() error {
	if err := s.kv.Delete(s.scope, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func decodeUser(value string) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("corrupt session: %w", err)
	}
	return &user, nil
}
