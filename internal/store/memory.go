package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a map-backed Store. It backs unit tests and the
// DATABASE_URL-less dev mode; behavior matches Postgres including
// snapshot fanout after every write.
type Memory struct {
	*notifier
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		notifier: newNotifier(),
		data:     make(map[string]map[string]json.RawMessage),
	}
}

func (m *Memory) Save(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]json.RawMessage)
	}
	m.data[collection][id] = raw
	snap := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.notify(collection, snap)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	raw, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s/%s: document not found", collection, id)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	m.data[collection][id] = merged
	snap := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.notify(collection, snap)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	delete(m.data[collection], id)
	snap := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.notify(collection, snap)
	return nil
}

func (m *Memory) Load(ctx context.Context, collection string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(collection), nil
}

func (m *Memory) snapshotLocked(collection string) Snapshot {
	snap := make(Snapshot, len(m.data[collection]))
	for id, raw := range m.data[collection] {
		snap[id] = raw
	}
	return snap
}
