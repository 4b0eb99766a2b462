package store

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
)

// Memory is a DocumentStore kept in process. Documents are stored in their
// JSON form so callers never share maps with the store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	raw, ok := m.data[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeJSON(raw)
}

func (m *Memory) Query(_ context.Context, collection, field string, value any) ([]Document, error) {
	want, err := normalize(value)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0)
	for _, id := range m.sortedIDs(collection) {
		doc, err := decodeJSON(m.data[collection][id])
		if err != nil {
			return nil, err
		}
		if got, ok := doc[field]; ok && reflect.DeepEqual(got, want) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *Memory) All(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0, len(m.data[collection]))
	for _, id := range m.sortedIDs(collection) {
		doc, err := decodeJSON(m.data[collection][id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory) Count(ctx context.Context, collection, field string, value any) (int, error) {
	docs, err := m.Query(ctx, collection, field, value)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	raw, err := json.Marshal(withID(doc, id))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(collection)[id] = raw
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, partial Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	doc, err := decodeJSON(raw)
	if err != nil {
		return err
	}
	patch, err := Encode(partial)
	if err != nil {
		return err
	}
	for k, v := range patch {
		doc[k] = v
	}
	doc[IDField] = id

	raw, err = json.Marshal(doc)
	if err != nil {
		return err
	}
	m.data[collection][id] = raw
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[collection], id)
	return nil
}

func (m *Memory) CreateIfAbsent(_ context.Context, collection, id string, doc Document) (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw, ok := m.data[collection][id]; ok {
		existing, err := decodeJSON(raw)
		return existing, false, err
	}

	raw, err := json.Marshal(withID(doc, id))
	if err != nil {
		return nil, false, err
	}
	m.bucket(collection)[id] = raw

	created, err := decodeJSON(raw)
	return created, true, err
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }

// bucket must be called with mu held for writing.
func (m *Memory) bucket(collection string) map[string][]byte {
	b, ok := m.data[collection]
	if !ok {
		b = make(map[string][]byte)
		m.data[collection] = b
	}
	return b
}

func (m *Memory) sortedIDs(collection string) []string {
	ids := make([]string, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// normalize gives value the shape it would have after a JSON round trip.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
