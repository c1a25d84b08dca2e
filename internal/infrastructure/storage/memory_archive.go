package storage

import (
	"context"
	"fmt"
	"sync"

	importapp "github.com/stockledger/backend/internal/application/import"
)

var _ importapp.UploadArchive = (*MemoryArchive)(nil)

// MemoryArchive keeps uploads in process memory, for tests that need to
// inspect what an import stored.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive creates an empty MemoryArchive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// Archive stores a copy of data
func (m *MemoryArchive) Archive(_ context.Context, kind importapp.Kind, registerID uint64, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("%s/%d/%s", kind, registerID, sanitizeFilename(filename))
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf
	return key, nil
}

// Get returns an archived upload
func (m *MemoryArchive) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len returns the number of archived uploads
func (m *MemoryArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
