package domain

import "context"

// NullifierRepository is the abstraction for any kind of database intended
// to persist consumed Nullifiers and the list of processors allowed to
// consume them.
type NullifierRepository interface {
	// AddNullifier stores the given nullifier. It fails with
	// ErrNullifierAlreadyUsed if already stored.
	AddNullifier(ctx context.Context, nullifier *Nullifier) error
	// GetNullifier returns the nullifier with the given hash.
	GetNullifier(ctx context.Context, hash string) (*Nullifier, error)
	// IsNullified returns whether the given hash has been consumed.
	IsNullified(ctx context.Context, hash string) (bool, error)
	// AddWriter adds the given processor id to the allowed writers.
	AddWriter(ctx context.Context, writer string) error
	// RemoveWriter ...
	RemoveWriter(ctx context.Context, writer string) error
	// GetWriters returns the allowed writers.
	GetWriters(ctx context.Context) ([]string, error)
	// SeedWriter adds the writer unless it was ever seeded before, even if
	// removed since. It returns whether the writer was added.
	SeedWriter(ctx context.Context, writer string) (bool, error)
}
