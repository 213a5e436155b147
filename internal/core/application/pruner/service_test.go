package pruner_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/application/pruner"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

const caller = "0x00000000000000000000000000000000000000f1"

type intentPruner struct {
	lock    sync.Mutex
	expired map[string]bool
	pruned  []string
}

func newIntentPruner(ids ...string) *intentPruner {
	expired := make(map[string]bool)
	for _, id := range ids {
		expired[id] = true
	}
	return &intentPruner{expired: expired}
}

func (p *intentPruner) ListExpiredIntents(
	context.Context,
) ([]*domain.Intent, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	list := make([]*domain.Intent, 0, len(p.expired))
	for id := range p.expired {
		list = append(list, &domain.Intent{ID: id})
	}
	return list, nil
}

func (p *intentPruner) PruneExpiredIntent(
	_ context.Context, c, id string,
) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if c != caller {
		return domain.ErrUnauthorized
	}
	if id == "settled" {
		return domain.ErrIntentNotOpen
	}
	delete(p.expired, id)
	p.pruned = append(p.pruned, id)
	return nil
}

func (p *intentPruner) prunedCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.pruned)
}

func TestNewService(t *testing.T) {
	tests := []struct {
		name            string
		escrow          pruner.IntentPruner
		interval        time.Duration
		prunesPerSecond int
	}{
		{"missing escrow", nil, time.Second, 10},
		{"invalid interval", newIntentPruner(), 0, 10},
		{"invalid rate", newIntentPruner(), time.Second, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, err := pruner.NewService(
				tt.escrow, caller, tt.interval, tt.prunesPerSecond,
			)
			require.Error(t, err)
			require.Nil(t, svc)
		})
	}
}

func TestSweep(t *testing.T) {
	escrow := newIntentPruner("a", "b", "settled")
	svc, err := pruner.NewService(escrow, caller, time.Minute, 100)
	require.NoError(t, err)

	count, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.ElementsMatch(t, []string{"a", "b"}, escrow.pruned)

	count, err = svc.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSweepCancelled(t *testing.T) {
	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	svc, err := pruner.NewService(newIntentPruner(ids...), caller, time.Minute, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	count, err := svc.Sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, count)
}

func TestStartStop(t *testing.T) {
	escrow := newIntentPruner("a", "b")
	svc, err := pruner.NewService(escrow, caller, 10*time.Millisecond, 100)
	require.NoError(t, err)

	svc.Start()
	svc.Start()
	require.True(t, svc.IsRunning())

	require.Eventually(t, func() bool {
		return escrow.prunedCount() == 2
	}, time.Second, 10*time.Millisecond)

	svc.Stop()
	require.False(t, svc.IsRunning())
	svc.Stop()
}
