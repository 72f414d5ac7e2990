// ABOUTME: In-memory Store implementation for tests and the memory driver
// ABOUTME: Keeps serialized JSON per key so reads never alias caller values

package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store and AuditStore.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	data   map[string][]byte // keyed by prefix+key
	audit  []AuditEntry

	// FailSave, when set, is returned by every Save. Tests use it to
	// simulate a write failure.
	FailSave error
}

// NewMemoryStore creates a new MemoryStore. An empty prefix uses DefaultPrefix.
func NewMemoryStore(prefix string) *MemoryStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &MemoryStore{
		prefix: prefix,
		data:   make(map[string][]byte),
	}
}

// Save serializes value and stores a copy of the bytes.
func (m *MemoryStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return storeErr("encoding", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return storeErr("writing", key, m.FailSave)
	}
	m.data[m.prefix+key] = data
	return nil
}

// Load decodes the stored bytes for key into out.
func (m *MemoryStore) Load(ctx context.Context, key string, out any) (bool, error) {
	m.mu.RLock()
	data, ok := m.data[m.prefix+key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, storeErr("decoding", key, err)
	}
	return true, nil
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.prefix+key)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// Raw returns the stored text for key, and whether it exists.
func (m *MemoryStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[m.prefix+key]
	return string(data), ok
}

// SetRaw stores text verbatim under key.
func (m *MemoryStore) SetRaw(key, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.prefix+key] = []byte(raw)
}

// AppendAuditLog records e in memory.
func (m *MemoryStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	e.stamp()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, *e)
	return nil
}

// ListAuditLog returns matching entries newest first.
func (m *MemoryStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	limit := auditLimit(f.Limit)

	m.mu.RLock()
	entries := make([]AuditEntry, 0, len(m.audit))
	for _, e := range m.audit {
		if f.matches(e) {
			entries = append(entries, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Ensure MemoryStore implements Store and AuditStore.
var (
	_ Store      = (*MemoryStore)(nil)
	_ AuditStore = (*MemoryStore)(nil)
)
