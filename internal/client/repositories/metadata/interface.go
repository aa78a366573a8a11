// Package metadata stores small opaque values in the local database, grouped
// by namespace. The session, the keychain, device enrolment and settings
// each live in their own namespace.
package metadata

import "context"

// Repository is a key/value store scoped to a single namespace.
type Repository interface {
	// Get returns common.ErrorNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
	// List returns every key of the namespace.
	List(ctx context.Context) (map[string][]byte, error)
	// Clear removes the whole namespace.
	Clear(ctx context.Context) error
}
