package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents in a single jsonb table (see migrations).
// Writes are upserts, so the last writer wins per document. After a
// successful write the collection snapshot is re-read and fanned out
// to local subscribers.
type Postgres struct {
	*notifier
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{notifier: newNotifier(), pool: pool}
}

func (p *Postgres) Save(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	const q = `
		INSERT INTO documents (collection, id, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = now()
	`
	if _, err := p.pool.Exec(ctx, q, collection, id, raw); err != nil {
		return fmt.Errorf("save %s/%s: %w", collection, id, err)
	}

	return p.broadcast(ctx, collection)
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	const q = `
		UPDATE documents
		SET doc = doc || $3, updated_at = now()
		WHERE collection = $1 AND id = $2
	`
	tag, err := p.pool.Exec(ctx, q, collection, id, raw)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s/%s: document not found", collection, id)
	}

	return p.broadcast(ctx, collection)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := p.pool.Exec(ctx, q, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return p.broadcast(ctx, collection)
}

func (p *Postgres) Load(ctx context.Context, collection string) (Snapshot, error) {
	const q = `SELECT id, doc FROM documents WHERE collection = $1`
	rows, err := p.pool.Query(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	snap := make(Snapshot)
	for rows.Next() {
		var id string
		var doc json.RawMessage
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		snap[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return snap, nil
}

// Get reads a single document, pgx.ErrNoRows when absent. Handlers
// use it for point lookups without paying for a full snapshot.
func (p *Postgres) Get(ctx context.Context, collection, id string, v any) error {
	const q = `SELECT doc FROM documents WHERE collection = $1 AND id = $2`
	var doc json.RawMessage
	if err := p.pool.QueryRow(ctx, q, collection, id).Scan(&doc); err != nil {
		if err == pgx.ErrNoRows {
			return err
		}
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.Unmarshal(doc, v)
}

func (p *Postgres) broadcast(ctx context.Context, collection string) error {
	snap, err := p.Load(ctx, collection)
	if err != nil {
		return err
	}
	p.notify(collection, snap)
	return nil
}
