package pubsub

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type trackerKey struct{}

type tracker struct {
	lock   sync.Mutex
	events []domain.Event
}

// WithEventTracker returns a context collecting the events stored through
// TrackEvents, and a func returning them in sequence order.
func WithEventTracker(
	ctx context.Context,
) (context.Context, func() []domain.Event) {
	t := &tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t.sorted
}

// TrackEvents records events stored within a tracked context. It's a no-op
// otherwise.
func TrackEvents(ctx context.Context, events ...domain.Event) {
	t, ok := ctx.Value(trackerKey{}).(*tracker)
	if !ok || len(events) <= 0 {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.events = append(t.events, events...)
}

func (t *tracker) sorted() []domain.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	events := append([]domain.Event{}, t.events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Sequence < events[j].Sequence
	})
	return events
}
