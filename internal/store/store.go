// Package store is the document persistence boundary: flat key-value
// documents grouped into collections, with change notification that
// delivers the full collection snapshot to every subscriber after any
// write. Conflict policy is last-write-wins per document; there is no
// merge of concurrent edits.
package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Collection names used by the application.
const (
	CollectionTables   = "tables"
	CollectionMenu     = "menu"
	CollectionStaff    = "staff"
	CollectionOrders   = "orders"
	CollectionSettings = "settings"
)

// SettingsDocID is the fixed id of the singleton settings document.
const SettingsDocID = "store_config"

// Snapshot is the complete current state of one collection, keyed by
// document id. It replaces any previously held copy; subscribers
// re-render from it rather than merging field-by-field.
type Snapshot map[string]json.RawMessage

// SubscribeFunc receives the full snapshot of a collection after
// every change to it.
type SubscribeFunc func(collection string, snap Snapshot)

// Store persists documents and fans out snapshots on change.
type Store interface {
	// Save writes the full document, replacing any existing one.
	Save(ctx context.Context, collection, id string, doc any) error
	// Update merges partial fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document. Deleting a missing document is a no-op.
	Delete(ctx context.Context, collection, id string) error
	// Load returns the current snapshot of a collection.
	Load(ctx context.Context, collection string) (Snapshot, error)
	// Subscribe registers fn for a collection's snapshots. The
	// returned function unsubscribes.
	Subscribe(collection string, fn SubscribeFunc) (unsubscribe func())
}

// Decode unmarshals one document out of a snapshot into v. Missing
// documents return false with no error.
func Decode(snap Snapshot, id string, v any) (bool, error) {
	raw, ok := snap[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// DecodeAll unmarshals every document of a snapshot.
func DecodeAll[T any](snap Snapshot) ([]T, error) {
	out := make([]T, 0, len(snap))
	for _, raw := range snap {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// notifier is the shared subscriber registry. Both store
// implementations embed it; fanout is synchronous so tests observe
// snapshots deterministically.
type notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]SubscribeFunc
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]SubscribeFunc)}
}

func (n *notifier) Subscribe(collection string, fn SubscribeFunc) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs[collection] == nil {
		n.subs[collection] = make(map[int]SubscribeFunc)
	}
	id := n.nextID
	n.nextID++
	n.subs[collection][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[collection], id)
	}
}

func (n *notifier) notify(collection string, snap Snapshot) {
	n.mu.RLock()
	fns := make([]SubscribeFunc, 0, len(n.subs[collection]))
	for _, fn := range n.subs[collection] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(collection, snap)
	}
}
