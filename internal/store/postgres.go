package store

import (
	"context"
	"database/sql"
	"errors"

	"interior-design-backend/internal/database"
)

// PostgresStore keeps records in the kv_records table.
type PostgresStore struct {
	queries *database.Queries
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{queries: database.NewQueries(db)}
}

func (p *PostgresStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	rec, err := p.queries.GetRecord(ctx, namespace, key)
	if errors.Is(err, database.ErrNoRecord) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (p *PostgresStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	return p.queries.UpsertRecord(ctx, namespace, key, value)
}

func (p *PostgresStore) Clear(ctx context.Context, namespace, key string) error {
	return p.queries.DeleteRecord(ctx, namespace, key)
}
