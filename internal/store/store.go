// Package store persists per-user snapshots as whole JSON documents in a key/value store.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// KV stores opaque values under (namespace, key). Namespaces are user ids.
type KV interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Clear(ctx context.Context, namespace, key string) error
}
