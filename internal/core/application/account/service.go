// Package account implements the registry binding addresses to the hashed
// payment handles they proved to own, along with the deny and allow lists
// depositors keep on takers.
package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/application/pubsub"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

const (
	listDeny  = "denylist"
	listAllow = "allowlist"

	actionAdd     = "add"
	actionRemove  = "remove"
	actionEnable  = "enable"
	actionDisable = "disable"
)

// ProcessorRegistry resolves registration processors by verifier id.
type ProcessorRegistry interface {
	RegistrationProcessor(id string) (ports.RegistrationProcessor, error)
}

// EventPublisher is notified of the events of every committed operation.
type EventPublisher interface {
	PublishEvents(events ...domain.Event)
}

type service struct {
	repoManager ports.RepoManager
	processors  ProcessorRegistry
	pubsub      EventPublisher
	clock       ports.Clock
	lock        *sync.Mutex
}

func NewService(
	repoManager ports.RepoManager, processors ProcessorRegistry,
	pubsub EventPublisher, clock ports.Clock, lock *sync.Mutex,
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
	return &service{repoManager, processors, pubsub, clock, lock}, nil
}

// Register binds the caller to the id hash proven by the bundle. A caller
// already registered is bound to the new id hash, while an id hash bound
// to another address can't be registered again.
func (s *service) Register(
	ctx context.Context, caller, verifier string, bundle ports.ProofBundle,
) (*domain.Account, error) {
	if !domain.IsValidAddress(caller) {
		return nil, domain.ErrAccountInvalidAddress
	}
	processor, err := s.processors.RegistrationProcessor(verifier)
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		facts, err := processor.ProcessProof(ctx, bundle)
		if err != nil {
			return nil, err
		}

		repo := s.repoManager.AccountRepository()
		bound, err := repo.GetAccountByIDHash(ctx, facts.IDHash)
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		if bound != nil && !domain.SameAddress(bound.Address, caller) {
			return nil, domain.ErrAlreadyRegistered
		}

		now := s.clock.Now().Unix()
		existing, err := repo.GetAccount(ctx, caller)
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		if existing == nil {
			a, err := domain.NewAccount(caller, facts.IDHash, verifier, now)
			if err != nil {
				return nil, err
			}
			if err := repo.AddAccount(ctx, a); err != nil {
				return nil, err
			}
			account = a
		} else {
			if err := repo.UpdateAccount(
				ctx, caller, func(a *domain.Account) (*domain.Account, error) {
					if err := a.Rebind(facts.IDHash, verifier, now); err != nil {
						return nil, err
					}
					account = a
					return a, nil
				},
			); err != nil {
				return nil, err
			}
		}

		event := domain.NewEvent(domain.EventAccountRegistered, now)
		event.Account = account.Address
		event.Data["id_hash"] = account.IDHash
		event.Data["verifier"] = verifier
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}

	log.Debugf("account %s registered through %s", account.Address, verifier)
	return account, nil
}

func (s *service) AddToDenylist(
	ctx context.Context, caller, idHash string,
) (*domain.Account, error) {
	return s.updateList(ctx, caller, listDeny, actionAdd, idHash,
		func(a *domain.Account) error {
			_, err := a.Deny(idHash)
			return err
		},
	)
}

func (s *service) RemoveFromDenylist(
	ctx context.Context, caller, idHash string,
) (*domain.Account, error) {
	return s.updateList(ctx, caller, listDeny, actionRemove, idHash,
		func(a *domain.Account) error {
			a.Undeny(idHash)
			return nil
		},
	)
}

func (s *service) AddToAllowlist(
	ctx context.Context, caller, idHash string,
) (*domain.Account, error) {
	return s.updateList(ctx, caller, listAllow, actionAdd, idHash,
		func(a *domain.Account) error {
			_, err := a.Allow(idHash)
			return err
		},
	)
}

func (s *service) RemoveFromAllowlist(
	ctx context.Context, caller, idHash string,
) (*domain.Account, error) {
	return s.updateList(ctx, caller, listAllow, actionRemove, idHash,
		func(a *domain.Account) error {
			a.Disallow(idHash)
			return nil
		},
	)
}

func (s *service) SetAllowlistEnabled(
	ctx context.Context, caller string, enabled bool,
) (*domain.Account, error) {
	action := actionDisable
	if enabled {
		action = actionEnable
	}
	return s.updateList(ctx, caller, listAllow, action, "",
		func(a *domain.Account) error {
			a.SetAllowlistEnabled(enabled)
			return nil
		},
	)
}

func (s *service) GetAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	return s.repoManager.AccountRepository().GetAccount(ctx, address)
}

func (s *service) GetAccountByIDHash(
	ctx context.Context, idHash string,
) (*domain.Account, error) {
	return s.repoManager.AccountRepository().GetAccountByIDHash(
		ctx, domain.NormalizeHash(idHash),
	)
}

func (s *service) updateList(
	ctx context.Context, caller, list, action, idHash string,
	updateFn func(a *domain.Account) error,
) (*domain.Account, error) {
	var account *domain.Account
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.repoManager.AccountRepository().UpdateAccount(
			ctx, caller, func(a *domain.Account) (*domain.Account, error) {
				if err := updateFn(a); err != nil {
					return nil, err
				}
				account = a
				return a, nil
			},
		); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, domain.ErrAccountNotRegistered
			}
			return nil, err
		}

		event := domain.NewEvent(domain.EventListUpdated, s.clock.Now().Unix())
		event.Account = account.Address
		event.Data["list"] = list
		event.Data["action"] = action
		if idHash != "" {
			event.Data["id_hash"] = domain.NormalizeHash(idHash)
		}
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}
	return account, nil
}

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

	// Registrations also consume a nullifier, whose event is stored by
	// the registry.
	s.pubsub.PublishEvents(stored()...)
	return nil
}
