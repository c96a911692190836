package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"simahasiswa-backend-go/internal/models"
)

// Postgres keeps documents in a single jsonb-backed table and plays the role
// of the hosted store. Because all writes flow through this process, every
// successful mutation re-queries the affected collection and broadcasts the
// fresh snapshot to subscribers. RunRefresh additionally re-queries on a
// timer so externally written rows eventually show up too.
type Postgres struct {
	db *sqlx.DB

	mu   sync.Mutex
	subs map[*Subscription]bool
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{
		db:   db,
		subs: map[*Subscription]bool{},
	}
}

func (p *Postgres) CreateDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `
INSERT INTO documents (collection, id, fields, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
`, collection, id, raw, now)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	p.broadcast(ctx, collection)
	return id, nil
}

func (p *Postgres) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `
UPDATE documents
SET fields = fields || $3, updated_at = $4
WHERE collection = $1 AND id = $2
`, collection, id, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	p.broadcast(ctx, collection)
	return nil
}

func (p *Postgres) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `
INSERT INTO documents (collection, id, fields, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (collection, id)
DO UPDATE SET fields = documents.fields || EXCLUDED.fields, updated_at = EXCLUDED.updated_at
`, collection, id, raw, now)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	p.broadcast(ctx, collection)
	return nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, collection, id string) error {
	// Deleting an id that was never written is not an error here; the store
	// mirrors the collaborator's own semantics and simply affects no row.
	_, err := p.db.ExecContext(ctx, `
DELETE FROM documents WHERE collection = $1 AND id = $2
`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	p.broadcast(ctx, collection)
	return nil
}

func (p *Postgres) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	row := models.DocumentRow{}
	err := p.db.GetContext(ctx, &row, `
SELECT collection, id, fields, created_at, updated_at
FROM documents
WHERE collection = $1 AND id = $2
`, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(row.Fields, &fields); err != nil {
		return nil, err
	}
	return &Document{ID: row.ID, Fields: fields}, nil
}

func (p *Postgres) SubscribeToQuery(ctx context.Context, collection, orderField string) (*Subscription, error) {
	sub := newSubscription(collection, orderField, p.unsubscribe)
	snap := p.querySnapshot(ctx, collection, orderField)
	p.mu.Lock()
	p.subs[sub] = true
	sub.push(snap)
	p.mu.Unlock()
	return sub, nil
}

func (p *Postgres) unsubscribe(sub *Subscription) {
	p.mu.Lock()
	delete(p.subs, sub)
	p.mu.Unlock()
}

// RunRefresh periodically redelivers snapshots for all live subscriptions.
// With interval <= 0 the loop is disabled and deliveries happen only on
// writes made through this store.
func (p *Postgres) RunRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.refreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Postgres) refreshAll(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.subs {
		sub.push(p.querySnapshot(ctx, sub.collection, sub.orderField))
	}
}

func (p *Postgres) broadcast(ctx context.Context, collection string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.subs {
		if sub.collection != collection {
			continue
		}
		sub.push(p.querySnapshot(ctx, collection, sub.orderField))
	}
}

func (p *Postgres) querySnapshot(ctx context.Context, collection, orderField string) Snapshot {
	rows := []models.DocumentRow{}
	err := p.db.SelectContext(ctx, &rows, `
SELECT collection, id, fields, created_at, updated_at
FROM documents
WHERE collection = $1
ORDER BY fields->>$2 NULLS LAST, id
`, collection, orderField)
	if err != nil {
		return Snapshot{Err: fmt.Errorf("query snapshot: %w", err)}
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		fields := map[string]any{}
		if err := json.Unmarshal(row.Fields, &fields); err != nil {
			log.Printf("document %s/%s: bad fields: %v", collection, row.ID, err)
			continue
		}
		docs = append(docs, Document{ID: row.ID, Fields: fields})
	}
	return Snapshot{Docs: docs}
}
