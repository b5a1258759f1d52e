package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Record is one row of kv_records. Value holds a whole JSON document.
type Record struct {
	Namespace string    `json:"namespace"`
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNoRecord is returned by GetRecord when the row does not exist.
var ErrNoRecord = errors.New("record not found")

type Queries struct {
	db *sql.DB
}

func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) GetRecord(ctx context.Context, namespace, key string) (*Record, error) {
	var rec Record
	err := q.db.QueryRowContext(ctx, `
		SELECT namespace, key, value, updated_at
		FROM kv_records
		WHERE namespace = $1 AND key = $2
	`, namespace, key).Scan(&rec.Namespace, &rec.Key, &rec.Value, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

func (q *Queries) UpsertRecord(ctx context.Context, namespace, key string, value []byte) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO kv_records (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (q *Queries) DeleteRecord(ctx context.Context, namespace, key string) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM kv_records
		WHERE namespace = $1 AND key = $2
	`, namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}
