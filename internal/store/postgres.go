package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING GIN (body jsonb_path_ops);`

// Postgres stores every collection in a single jsonb table keyed by
// (collection, id).
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps pool. Call Migrate once before use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the documents table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeJSON(body)
}

func (p *Postgres) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	rows, err := p.pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY id`,
		collection, string(filter),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return collectDocuments(rows)
}

func (p *Postgres) All(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return collectDocuments(rows)
}

func (p *Postgres) Count(ctx context.Context, collection, field string, value any) (int, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	var n int
	err = p.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE collection = $1 AND body @> $2::jsonb`,
		collection, string(filter),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, doc Document) error {
	body, err := json.Marshal(withID(doc, id))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		collection, id, string(body),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection, id string, partial Document) error {
	patch, err := json.Marshal(withID(partial, id))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE documents SET body = body || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, string(patch),
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) CreateIfAbsent(ctx context.Context, collection, id string, doc Document) (Document, bool, error) {
	body, err := json.Marshal(withID(doc, id))
	if err != nil {
		return nil, false, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}

	var (
		stored  []byte
		created bool
	)
	err = p.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO documents (collection, id, body)
		   VALUES ($1, $2, $3::jsonb)
		   ON CONFLICT (collection, id) DO NOTHING
		   RETURNING body
		 )
		 SELECT body, true FROM ins
		 UNION ALL
		 SELECT body, false FROM documents
		 WHERE collection = $1 AND id = $2 AND NOT EXISTS (SELECT 1 FROM ins)`,
		collection, id, string(body),
	).Scan(&stored, &created)

	// A concurrent insert that committed after this statement's snapshot
	// conflicts without being visible to the fallback SELECT.
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := p.Get(ctx, collection, id)
		return existing, false, getErr
	}
	if err != nil {
		return nil, false, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}

	out, err := decodeJSON(stored)
	return out, created, err
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Close releases the pool.
func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decodeJSON(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
