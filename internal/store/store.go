// Package store provides document collections over MongoDB, PostgreSQL JSONB tables or process memory.
package store

import (
	"context"
	"errors"
)

const (
	UsersCollection           = "users"
	PartsCollection           = "inventory"
	OrdersCollection          = "orders"
	AppointmentsCollection    = "appointments"
	ServicePackagesCollection = "service_packages"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Query selects documents of a collection.
//
// Filter keys are top-level document fields compared by equality. Exists lists fields (dot paths allowed)
// that must be present and non-null. OrderBy names a timestamp field (dot paths allowed); documents
// without it sort last.
type Query struct {
	Filter  map[string]any
	Exists  []string
	OrderBy string
	Desc    bool
}

// Collection is a set of documents of type T keyed by a string id.
//
// Field names used in filters, updates and ordering are the camelCase names shared by the json and bson
// tags of T. Update applies set and unset to a single document atomically and returns the result.
type Collection[T any] interface {
	Insert(ctx context.Context, id string, doc *T) error
	Get(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, q Query) ([]T, error)
	Update(ctx context.Context, id string, set map[string]any, unset ...string) (*T, error)
	Replace(ctx context.Context, id string, doc *T) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter map[string]any) (int64, error)
}
