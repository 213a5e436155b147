// Package admin implements the operations reserved to the owner of the
// daemon: escrow params, processor settings, nullifier writers and the
// development faucet.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// ParamsStore holds the escrow params.
type ParamsStore interface {
	Params() domain.Params
	SetParams(params domain.Params) error
}

// ProcessorRegistry gives access to the settings of the processors.
type ProcessorRegistry interface {
	Admins(id string) ([]ports.ProcessorAdmin, error)
	KeyHashAdapters(id string) ([]ports.KeyHashAdapter, error)
	IDs() []string
}

// NullifierWriters manages the processors allowed to consume nullifiers.
type NullifierWriters interface {
	AddWriter(ctx context.Context, writer string) error
	RemoveWriter(ctx context.Context, writer string) error
	Writers(ctx context.Context) ([]string, error)
}

// EventPublisher is notified of the events of every committed operation.
type EventPublisher interface {
	PublishEvents(events ...domain.Event)
}

// ProcessorInfo are the current settings of a processor.
type ProcessorInfo struct {
	ID              string
	KeyHashes       []string
	SenderAddress   string
	TimestampBuffer int64
}

type service struct {
	owner       string
	params      ParamsStore
	processors  ProcessorRegistry
	writers     NullifierWriters
	repoManager ports.RepoManager
	pubsub      EventPublisher
	clock       ports.Clock
	lock        *sync.Mutex
}

func NewService(
	owner string, params ParamsStore, processors ProcessorRegistry,
	writers NullifierWriters, repoManager ports.RepoManager,
	pubsub EventPublisher, clock ports.Clock, lock *sync.Mutex,
) (*service, error) {
	if !domain.IsValidAddress(owner) {
		return nil, fmt.Errorf("invalid owner address")
	}
	if params == nil {
		return nil, fmt.Errorf("missing params store")
	}
	if processors == nil {
		return nil, fmt.Errorf("missing processor registry")
	}
	if writers == nil {
		return nil, fmt.Errorf("missing nullifier writers")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
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

	return &service{
		owner:       domain.NormalizeAddress(owner),
		params:      params,
		processors:  processors,
		writers:     writers,
		repoManager: repoManager,
		pubsub:      pubsub,
		clock:       clock,
		lock:        lock,
	}, nil
}

func (s *service) Owner() string {
	return s.owner
}

func (s *service) IsOwner(caller string) bool {
	return domain.SameAddress(caller, s.owner)
}

func (s *service) GetParams(_ context.Context) domain.Params {
	return s.params.Params()
}

// UpdateParams applies the given changes to a copy of the current params
// and stores it, if valid.
func (s *service) UpdateParams(
	_ context.Context, caller string, updateFn func(p *domain.Params),
) (domain.Params, error) {
	if !s.IsOwner(caller) {
		return domain.Params{}, domain.ErrUnauthorized
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	params := s.params.Params()
	updateFn(&params)
	if err := s.params.SetParams(params); err != nil {
		return domain.Params{}, err
	}
	return params, nil
}

// Fund credits amount of token to the given address. It stands for the
// token transfers that happen outside of the escrow.
func (s *service) Fund(
	ctx context.Context, caller, to, token string, amount uint64,
) (*domain.Balance, error) {
	if !s.IsOwner(caller) {
		return nil, domain.ErrUnauthorized
	}
	if !domain.IsValidAddress(to) || !domain.IsValidAddress(token) {
		return nil, domain.ErrAccountInvalidAddress
	}
	if amount == 0 {
		return nil, domain.ErrDepositInvalidAmount
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var balance *domain.Balance
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.repoManager.BalanceRepository().UpdateBalance(
				ctx, to, token, func(b *domain.Balance) (*domain.Balance, error) {
					b.Credit(amount)
					balance = b
					return b, nil
				},
			); err != nil {
				return nil, err
			}

			event := domain.NewEvent(domain.EventBalanceFunded, s.clock.Now().Unix())
			event.Account = domain.NormalizeAddress(to)
			event.Amount = amount
			event.Data["token"] = domain.NormalizeAddress(token)
			return s.repoManager.EventRepository().AddEvents(ctx, event)
		},
	)
	if err != nil {
		return nil, err
	}

	if events, ok := res.([]domain.Event); ok {
		s.pubsub.PublishEvents(events...)
	}
	log.Debugf("funded %s with %d of %s", to, amount, token)
	return balance, nil
}

func (s *service) ListProcessors(_ context.Context) ([]ProcessorInfo, error) {
	ids := s.processors.IDs()
	list := make([]ProcessorInfo, 0, len(ids))
	for _, id := range ids {
		info, err := s.processorInfo(id)
		if err != nil {
			return nil, err
		}
		list = append(list, *info)
	}
	return list, nil
}

func (s *service) AddKeyHash(
	_ context.Context, caller, processorID, keyHash string,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}
	adapters, err := s.processors.KeyHashAdapters(processorID)
	if err != nil {
		return err
	}
	for _, a := range adapters {
		if err := a.AddKeyHash(keyHash); err != nil {
			return err
		}
	}
	log.Debugf("added key hash %s to processor %s", keyHash, processorID)
	return nil
}

func (s *service) RemoveKeyHash(
	_ context.Context, caller, processorID, keyHash string,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}
	adapters, err := s.processors.KeyHashAdapters(processorID)
	if err != nil {
		return err
	}
	for _, a := range adapters {
		if err := a.RemoveKeyHash(keyHash); err != nil {
			return err
		}
	}
	log.Debugf("removed key hash %s from processor %s", keyHash, processorID)
	return nil
}

func (s *service) SetSenderAddress(
	_ context.Context, caller, processorID, sender string,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}
	admins, err := s.processors.Admins(processorID)
	if err != nil {
		return err
	}
	for _, a := range admins {
		if err := a.SetSenderAddress(sender); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) SetTimestampBuffer(
	_ context.Context, caller, processorID string, buffer int64,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}
	admins, err := s.processors.Admins(processorID)
	if err != nil {
		return err
	}
	for _, a := range admins {
		if err := a.SetTimestampBuffer(buffer); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) AddNullifierWriter(
	ctx context.Context, caller, writer string,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	return s.writers.AddWriter(ctx, writer)
}

func (s *service) RemoveNullifierWriter(
	ctx context.Context, caller, writer string,
) error {
	if !s.IsOwner(caller) {
		return domain.ErrUnauthorized
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	return s.writers.RemoveWriter(ctx, writer)
}

func (s *service) ListNullifierWriters(ctx context.Context) ([]string, error) {
	return s.writers.Writers(ctx)
}

func (s *service) processorInfo(id string) (*ProcessorInfo, error) {
	admins, err := s.processors.Admins(id)
	if err != nil && !errors.Is(err, domain.ErrUnknownVerifier) {
		return nil, err
	}
	// Processors without an admin surface have no settings to show.
	if len(admins) <= 0 {
		return &ProcessorInfo{ID: id}, nil
	}

	a := admins[0]
	return &ProcessorInfo{
		ID:              id,
		KeyHashes:       a.KeyHashAdapter().KeyHashes(),
		SenderAddress:   a.SenderAddress(),
		TimestampBuffer: a.TimestampBuffer(),
	}, nil
}
