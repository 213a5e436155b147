package domain

import "context"

// EventRepository is the abstraction for any kind of database intended to
// persist the append-only ledger of Events.
type EventRepository interface {
	// AddEvents appends the given events, assigning them increasing sequence
	// numbers, and returns them updated.
	AddEvents(ctx context.Context, events ...Event) ([]Event, error)
	// GetEvents returns the events matching the given filter, sorted by
	// sequence.
	GetEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	// LastSequence returns the sequence of the last appended event.
	LastSequence(ctx context.Context) (uint64, error)
}
