package store

import "context"

// Entity is what an AggregateStore can hold. Clone must return a deep
// enough copy that mutating it never affects the original.
type Entity[T any] interface {
	Key() string
	Clone() T
}

// BackingStore is the authoritative keyed storage for one aggregate type.
// Get reports a missing id as (zero, false, nil). Add fails with
// shared.ErrDuplicateKey when the id exists; Update is an upsert; Remove of
// an absent id is a no-op.
type BackingStore[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Remove(ctx context.Context, id string) error
}

// Reader is the read side shared by AggregateStore and the views handed
// out by Read and Write.
type Reader[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	GetAll(ctx context.Context) ([]T, error)
}
