package domain

import "context"

// IntentRepository is the abstraction for any kind of database intended to
// persist Intents.
type IntentRepository interface {
	// AddIntent adds the given intent to the repository. It fails if an
	// intent with the same id already exists.
	AddIntent(ctx context.Context, intent *Intent) error
	// GetIntent returns the intent with the given id.
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// GetAllIntents returns all the intents sorted by creation time.
	GetAllIntents(ctx context.Context) ([]*Intent, error)
	// GetIntentsForDeposit returns the intents drawing against a deposit.
	GetIntentsForDeposit(ctx context.Context, depositID uint64) ([]*Intent, error)
	// GetIntentsForTaker returns the intents signalled by a taker.
	GetIntentsForTaker(ctx context.Context, taker string) ([]*Intent, error)
	// GetOpenIntentsExpiredAt returns the open intents whose expiration time
	// is before now.
	GetOpenIntentsExpiredAt(ctx context.Context, now int64) ([]*Intent, error)
	// CountIntents returns the number of intents ever signalled.
	CountIntents(ctx context.Context) (uint64, error)
	// UpdateIntent allows to commit multiple changes to the same intent in a
	// transactional way.
	UpdateIntent(
		ctx context.Context,
		id string,
		updateFn func(i *Intent) (*Intent, error),
	) error
}
