package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-orders/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDocumentKey = "default"

// PostgresSnapshotter keeps the document as one jsonb row in store_documents.
type PostgresSnapshotter struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresSnapshotter(pool *pgxpool.Pool) *PostgresSnapshotter {
	return &PostgresSnapshotter{pool: pool, key: defaultDocumentKey}
}

func (p *PostgresSnapshotter) Load(ctx context.Context) (domain.Document, error) {
	const q = `SELECT body FROM store_documents WHERE key = $1`
	var raw []byte
	if err := p.pool.QueryRow(ctx, q, p.key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, ErrNoSnapshot
		}
		return domain.Document{}, fmt.Errorf("select document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		aside, qerr := p.quarantine(ctx)
		if qerr != nil {
			return domain.Document{}, fmt.Errorf("decode document: %w (copy aside: %v)", err, qerr)
		}
		return domain.Document{}, fmt.Errorf("%w: decode document: %v (copied to key %s)", ErrSnapshotQuarantined, err, aside)
	}
	return doc, nil
}

// quarantine copies the current row under a timestamped key so a later Save cannot lose it.
func (p *PostgresSnapshotter) quarantine(ctx context.Context) (string, error) {
	const q = `
INSERT INTO store_documents (key, body, updated_at)
SELECT $2, body, now() FROM store_documents WHERE key = $1
`
	aside := fmt.Sprintf("%s.corrupt-%d", p.key, time.Now().UnixMilli())
	if _, err := p.pool.Exec(ctx, q, p.key, aside); err != nil {
		return "", err
	}
	return aside, nil
}

func (p *PostgresSnapshotter) Save(ctx context.Context, doc domain.Document) error {
	const q = `
INSERT INTO store_documents (key, body, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE
SET body = EXCLUDED.body,
    updated_at = EXCLUDED.updated_at
`
	raw, err := Encode(doc)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, q, p.key, string(raw)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Ping reports whether the backing database is reachable.
func (p *PostgresSnapshotter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
