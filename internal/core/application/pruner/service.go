// Package pruner periodically expires the open intents past their
// expiration time, releasing the liquidity they reserve.
package pruner

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"go.uber.org/ratelimit"
)

// IntentPruner is the subset of the escrow used by the pruner.
type IntentPruner interface {
	ListExpiredIntents(ctx context.Context) ([]*domain.Intent, error)
	PruneExpiredIntent(ctx context.Context, caller, id string) error
}

type Service struct {
	escrow   IntentPruner
	caller   string
	interval time.Duration
	limiter  ratelimit.Limiter

	lock    *sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewService returns a pruner sweeping every interval on behalf of caller,
// expiring at most prunesPerSecond intents per second so that a large sweep
// doesn't starve the other writers.
func NewService(
	escrow IntentPruner, caller string,
	interval time.Duration, prunesPerSecond int,
) (*Service, error) {
	if escrow == nil {
		return nil, fmt.Errorf("missing escrow service")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if prunesPerSecond <= 0 {
		return nil, fmt.Errorf("prunes per second must be positive")
	}

	return &Service{
		escrow:   escrow,
		caller:   caller,
		interval: interval,
		limiter:  ratelimit.New(prunesPerSecond),
		lock:     &sync.Mutex{},
	}, nil
}

func (s *Service) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	log.Infof("intent pruner started with interval %s", s.interval)
}

func (s *Service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	log.Info("intent pruner stopped")
}

func (s *Service) IsRunning() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.running
}

// Sweep expires the intents currently past their expiration time and
// returns how many were pruned.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	intents, err := s.escrow.ListExpiredIntents(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, intent := range intents {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		s.limiter.Take()

		if err := s.escrow.PruneExpiredIntent(ctx, s.caller, intent.ID); err != nil {
			// The intent might have been settled or cancelled in the meantime.
			log.WithError(err).Debugf("skipping prune of intent %s", intent.ID)
			continue
		}
		count++
	}
	return count, nil
}

func (s *Service) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("failed to prune expired intents")
				continue
			}
			if count > 0 {
				log.Debugf("pruned %d expired intents", count)
			}
		}
	}
}
