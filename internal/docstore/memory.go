package docstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Memory is the prototype variant of the store: everything lives in process
// memory and ids are generated locally from a timestamp. The postgres store
// is the authoritative one; this variant survives for development and tests.
type Memory struct {
	mu     sync.Mutex
	data   map[string]map[string]map[string]any
	subs   map[*Subscription]bool
	lastID int64
}

func NewMemory() *Memory {
	return &Memory{
		data: map[string]map[string]map[string]any{},
		subs: map[*Subscription]bool{},
	}
}

func (m *Memory) nextID() string {
	id := time.Now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return strconv.FormatInt(id, 10)
}

func (m *Memory) collection(name string) map[string]map[string]any {
	col, ok := m.data[name]
	if !ok {
		col = map[string]map[string]any{}
		m.data[name] = col
	}
	return col
}

func (m *Memory) CreateDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.collection(collection)[id] = cloneFields(fields)
	m.broadcastLocked(collection)
	return id, nil
}

func (m *Memory) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collection(collection)[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		doc[key] = value
	}
	m.broadcastLocked(collection)
	return nil
}

func (m *Memory) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.collection(collection)
	doc, ok := col[id]
	if !ok {
		doc = map[string]any{}
		col[id] = doc
	}
	for key, value := range fields {
		doc[key] = value
	}
	m.broadcastLocked(collection)
	return nil
}

func (m *Memory) DeleteDocument(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collection(collection), id)
	m.broadcastLocked(collection)
	return nil
}

func (m *Memory) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collection(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: cloneFields(doc)}, nil
}

func (m *Memory) SubscribeToQuery(ctx context.Context, collection, orderField string) (*Subscription, error) {
	sub := newSubscription(collection, orderField, m.unsubscribe)
	m.mu.Lock()
	m.subs[sub] = true
	sub.push(m.snapshotLocked(collection, orderField))
	m.mu.Unlock()
	return sub, nil
}

func (m *Memory) unsubscribe(sub *Subscription) {
	m.mu.Lock()
	delete(m.subs, sub)
	m.mu.Unlock()
}

func (m *Memory) broadcastLocked(collection string) {
	for sub := range m.subs {
		if sub.collection != collection {
			continue
		}
		sub.push(m.snapshotLocked(collection, sub.orderField))
	}
}

func (m *Memory) snapshotLocked(collection, orderField string) Snapshot {
	col := m.collection(collection)
	docs := make([]Document, 0, len(col))
	for id, fields := range col {
		docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool {
		a := fieldString(docs[i].Fields, orderField)
		b := fieldString(docs[j].Fields, orderField)
		if a != b {
			return a < b
		}
		return docs[i].ID < docs[j].ID
	})
	return Snapshot{Docs: docs}
}

func fieldString(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}
