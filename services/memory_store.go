package services

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps objects in process memory. It backs uploads when no S3
// bucket is configured and doubles as the store in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	body        []byte
	contentType string
}

// NewMemoryStore creates an empty store whose URLs are baseURL + "/" + key
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
	}
}

func (m *MemoryStore) PutObject(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{body: append([]byte(nil), body...), contentType: contentType}
	return nil
}

func (m *MemoryStore) GetObject(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", newError(KindNotFound, "file not found: %s", key)
	}
	return append([]byte(nil), obj.body...), obj.contentType, nil
}

func (m *MemoryStore) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if !m.Exists(key) {
		return "", fmt.Errorf("file not found in memory store: %s", key)
	}
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key has been stored
func (m *MemoryStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns every stored key (for testing assertions)
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
