// Package escrow implements the deposit pool and the intent ledger, the
// settlement of intents by proof of payment included.
package escrow

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/application/pubsub"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type service struct {
	repoManager   ports.RepoManager
	processors    ProcessorRegistry
	pubsub        EventPublisher
	clock         ports.Clock
	escrowAddress string

	// Serializes every mutating operation of the daemon.
	lock *sync.Mutex

	paramsLock *sync.RWMutex
	params     domain.Params
}

func NewService(
	repoManager ports.RepoManager, processors ProcessorRegistry,
	pubsub EventPublisher, clock ports.Clock, lock *sync.Mutex,
	escrowAddress string, params domain.Params,
) (*service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if processors == nil {
		return nil, fmt.Errorf("missing processor registry")
	}
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if lock == nil {
		return nil, fmt.Errorf("missing lock")
	}
	if !domain.IsValidAddress(escrowAddress) {
		return nil, fmt.Errorf("invalid escrow address")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &service{
		repoManager:   repoManager,
		processors:    processors,
		pubsub:        pubsub,
		clock:         clock,
		escrowAddress: domain.NormalizeAddress(escrowAddress),
		lock:          lock,
		paramsLock:    &sync.RWMutex{},
		params:        params,
	}, nil
}

func (s *service) EscrowAddress() string {
	return s.escrowAddress
}

func (s *service) Params() domain.Params {
	s.paramsLock.RLock()
	defer s.paramsLock.RUnlock()
	return s.params
}

func (s *service) SetParams(params domain.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.paramsLock.Lock()
	defer s.paramsLock.Unlock()
	s.params = params
	log.Debugf("escrow params updated: %+v", params)
	return nil
}

func (s *service) GetBalances(
	ctx context.Context, owner string,
) ([]*domain.Balance, error) {
	return s.repoManager.BalanceRepository().GetBalancesForOwner(ctx, owner)
}

func (s *service) ListEvents(
	ctx context.Context, filter domain.EventFilter,
) ([]domain.Event, error) {
	return s.repoManager.EventRepository().GetEvents(ctx, filter)
}

func (s *service) now() int64 {
	return s.clock.Now().Unix()
}

// runTransaction runs the handler as the only writer, inside a transaction
// over all the repositories. The events returned by the handler are
// appended to the ledger in the same transaction. Once committed, these and
// any other event stored meanwhile, like consumed nullifiers, are handed to
// the publishers.
func (s *service) runTransaction(
	ctx context.Context,
	handler func(ctx context.Context) ([]domain.Event, error),
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var stored func() []domain.Event
	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			ctx, stored = pubsub.WithEventTracker(ctx)
			events, err := handler(ctx)
			if err != nil {
				return nil, err
			}
			if len(events) <= 0 {
				return nil, nil
			}
			events, err = s.repoManager.EventRepository().AddEvents(ctx, events...)
			if err != nil {
				return nil, err
			}
			pubsub.TrackEvents(ctx, events...)
			return nil, nil
		},
	); err != nil {
		return err
	}

	s.pubsub.PublishEvents(stored()...)
	return nil
}
