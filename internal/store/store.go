// Package store keeps the in-memory list of student records synchronized
// with the document store's "students" collection through a single live
// subscription. The local list is never mutated optimistically: a write
// becomes visible only when the subscription redelivers the snapshot that
// contains it, and the latest delivered snapshot always wins.
package store

import (
	"context"
	"fmt"
	"sync"

	"simahasiswa-backend-go/internal/docstore"
	"simahasiswa-backend-go/internal/models"
	"simahasiswa-backend-go/internal/notify"
)

// Collection is the name of the backing collection.
const Collection = "students"

// OrderField keeps snapshots sorted by student name.
const OrderField = "nama"

// RecordInput is a student record on the way in, before the store assigns
// an id.
type RecordInput struct {
	Nama    string `json:"nama"`
	NIM     string `json:"nim"`
	Jurusan string `json:"jurusan"`
}

// RecordStore owns the live snapshot. Mutators write through to the document
// store and surface failures as non-blocking notifications; no error ever
// reaches the caller.
type RecordStore struct {
	docs     docstore.Store
	notifier notify.Notifier
	sub      *docstore.Subscription

	mu      sync.Mutex
	records []models.StudentRecord
	loaded  bool

	watchMu  sync.Mutex
	watchers map[chan []models.StudentRecord]bool
}

// New subscribes to the students collection and starts consuming snapshots.
// Each store instance holds exactly one subscription for its lifetime;
// Close releases it.
func New(ctx context.Context, docs docstore.Store, notifier notify.Notifier) (*RecordStore, error) {
	sub, err := docs.SubscribeToQuery(ctx, Collection, OrderField)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", Collection, err)
	}
	s := &RecordStore{
		docs:     docs,
		notifier: notifier,
		sub:      sub,
		watchers: map[chan []models.StudentRecord]bool{},
	}
	go s.consume()
	return s, nil
}

func (s *RecordStore) consume() {
	for snap := range s.sub.Updates() {
		if snap.Err != nil {
			// No automatic retry; the collaborator owns reconnection.
			s.notifier.Error("Gagal mengambil data mahasiswa")
			s.mu.Lock()
			s.loaded = true
			s.mu.Unlock()
			continue
		}
		records := make([]models.StudentRecord, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			records = append(records, recordFrom(doc))
		}
		s.mu.Lock()
		s.records = records
		s.loaded = true
		s.mu.Unlock()
		s.fanOut(records)
	}
}

// Create appends a record through the external store. The new record shows
// up locally only once the subscription delivers it, id assigned.
func (s *RecordStore) Create(ctx context.Context, input RecordInput) {
	_, err := s.docs.CreateDocument(ctx, Collection, fieldsFrom(input))
	if err != nil {
		s.notifier.Error("Gagal menyimpan data mahasiswa")
		return
	}
	s.notifier.Success("Data mahasiswa berhasil disimpan!")
}

// Update replaces every field except the id.
func (s *RecordStore) Update(ctx context.Context, id string, input RecordInput) {
	err := s.docs.UpdateDocument(ctx, Collection, id, fieldsFrom(input))
	if err != nil {
		s.notifier.Error("Gagal memperbarui data mahasiswa")
		return
	}
	s.notifier.Success("Data mahasiswa berhasil diperbarui!")
}

// Delete removes a record. An id the collaborator does not know is its call
// to make; locally it simply results in an unchanged snapshot.
func (s *RecordStore) Delete(ctx context.Context, id string) {
	err := s.docs.DeleteDocument(ctx, Collection, id)
	if err != nil {
		s.notifier.Error("Gagal menghapus data mahasiswa")
		return
	}
	s.notifier.Success("Data mahasiswa berhasil dihapus!")
}

// Snapshot returns a copy of the latest delivered record list.
func (s *RecordStore) Snapshot() []models.StudentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StudentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Loaded reports whether at least one snapshot has been delivered.
func (s *RecordStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Watch hands out a latest-wins stream of record snapshots. The returned
// stop function releases the stream; the channel itself stays open.
func (s *RecordStore) Watch() (<-chan []models.StudentRecord, func()) {
	ch := make(chan []models.StudentRecord, 1)
	s.watchMu.Lock()
	s.watchers[ch] = true
	s.watchMu.Unlock()

	ch <- s.Snapshot()

	stop := func() {
		s.watchMu.Lock()
		delete(s.watchers, ch)
		s.watchMu.Unlock()
	}
	return ch, stop
}

func (s *RecordStore) fanOut(records []models.StudentRecord) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		pushLatest(ch, records)
	}
}

// pushLatest replaces any undelivered snapshot so a slow watcher only ever
// sees the most recent one.
func pushLatest(ch chan []models.StudentRecord, records []models.StudentRecord) {
	for {
		select {
		case ch <- records:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Close cancels the live subscription. The store must not be resubscribed.
func (s *RecordStore) Close() {
	s.sub.Cancel()
}

func fieldsFrom(input RecordInput) map[string]any {
	return map[string]any{
		"nama":    input.Nama,
		"nim":     input.NIM,
		"jurusan": input.Jurusan,
	}
}

func recordFrom(doc docstore.Document) models.StudentRecord {
	return models.StudentRecord{
		ID:      doc.ID,
		Nama:    stringField(doc.Fields, "nama"),
		NIM:     stringField(doc.Fields, "nim"),
		Jurusan: stringField(doc.Fields, "jurusan"),
	}
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return value
}
