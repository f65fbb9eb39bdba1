// Package metadata implements the client's durable key/value store. The
// session layer keeps the bearer token and the cached user snapshot here.
package metadata

import (
	"context"
)

// Repository is a key/value store. Get returns (nil, nil) for a missing key
// and Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn atomically: either every write made through r is
	// persisted or none is. fn must only use the repository it is given.
	Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
