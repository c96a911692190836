// Package docstore models the hosted document database the application is
// built against: flat documents grouped into named collections, plus a
// push-style query subscription that redelivers the full ordered snapshot of
// a collection whenever its contents change.
package docstore

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("document not found")

// Document is one record in a collection: an opaque store-assigned id plus
// its flat field set.
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot is one delivery on a subscription: the full ordered contents of
// the collection, or the error that prevented producing it. The latest
// delivered snapshot always supersedes all prior ones.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Store is the document-store collaborator contract.
//
// UpdateDocument merges partial fields into an existing document and fails
// with ErrNotFound when it does not exist. SetDocument merges too, but
// creates the document when absent.
type Store interface {
	CreateDocument(ctx context.Context, collection string, fields map[string]any) (string, error)
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error
	SetDocument(ctx context.Context, collection, id string, fields map[string]any) error
	DeleteDocument(ctx context.Context, collection, id string) error
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	SubscribeToQuery(ctx context.Context, collection, orderField string) (*Subscription, error)
}

// Subscription is a cancellable handle on a live query. The consumer owns
// cancellation; the store stops delivering once Cancel returns.
type Subscription struct {
	collection string
	orderField string
	ch         chan Snapshot
	cancel     func(*Subscription)
	once       sync.Once
}

func newSubscription(collection, orderField string, cancel func(*Subscription)) *Subscription {
	return &Subscription{
		collection: collection,
		orderField: orderField,
		ch:         make(chan Snapshot, 1),
		cancel:     cancel,
	}
}

// Updates yields snapshots, latest-wins: a slow consumer only ever observes
// the most recent delivery. The channel is closed by Cancel.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel(s)
		close(s.ch)
	})
}

// push replaces any undelivered snapshot with the new one.
func (s *Subscription) push(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
