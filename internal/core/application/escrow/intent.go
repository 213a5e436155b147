package escrow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// SignalIntent reserves amount of the deposit's liquidity for the caller,
// to be paid off-chain through the given verifier and sent to recipient
// once settled. Expired intents of the deposit are reclaimed beforehand.
func (s *service) SignalIntent(
	ctx context.Context, caller string, depositID, amount uint64,
	recipient, verifier string,
) (*domain.Intent, error) {
	if recipient == "" {
		recipient = caller
	}

	var intent *domain.Intent
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		taker, err := s.getRegisteredAccount(ctx, caller)
		if err != nil {
			return nil, err
		}

		depositRepo := s.repoManager.DepositRepository()
		deposit, err := depositRepo.GetDeposit(ctx, depositID)
		if err != nil {
			return nil, err
		}
		if !deposit.IsActive() {
			return nil, domain.ErrDepositNotActive
		}
		if !deposit.AcceptsVerifier(verifier) {
			return nil, domain.ErrVerifierNotAccepted
		}
		processor, err := s.processors.PaymentProcessor(verifier)
		if err != nil {
			return nil, err
		}

		depositor, err := s.getRegisteredAccount(ctx, deposit.Depositor)
		if err != nil {
			return nil, err
		}
		if err := depositor.CanOpenIntentWith(taker.IDHash); err != nil {
			return nil, err
		}

		params := s.Params()
		if amount < params.MinIntentAmount {
			return nil, domain.ErrBelowMinimum
		}
		if params.MaxIntentAmount > 0 && amount > params.MaxIntentAmount {
			return nil, domain.ErrAboveMaximum
		}
		if taker.HasOpenIntent() {
			return nil, domain.ErrDuplicateIntent
		}

		now := s.now()
		if err := taker.CheckCooldown(
			verifier, now, params.CooldownPeriod,
		); err != nil {
			return nil, err
		}

		events, err := s.reclaimExpiredIntents(ctx, caller, deposit, now)
		if err != nil {
			return nil, err
		}

		rate, ok := deposit.ConversionRate(processor.Currency())
		if !ok {
			return nil, domain.ErrDepositMissingConversionRate
		}

		intentRepo := s.repoManager.IntentRepository()
		nonce, err := intentRepo.CountIntents(ctx)
		if err != nil {
			return nil, err
		}
		i, err := domain.NewIntent(
			depositID, caller, recipient, amount, verifier, processor.Currency(),
			rate, nonce, now, now+params.IntentExpirationPeriod,
		)
		if err != nil {
			return nil, err
		}

		if err := depositRepo.UpdateDeposit(
			ctx, depositID, func(d *domain.Deposit) (*domain.Deposit, error) {
				if err := d.Lock(i.ID, i.Amount); err != nil {
					return nil, err
				}
				return d, nil
			},
		); err != nil {
			return nil, err
		}
		if err := intentRepo.AddIntent(ctx, i); err != nil {
			return nil, err
		}
		if err := s.repoManager.AccountRepository().UpdateAccount(
			ctx, caller, func(a *domain.Account) (*domain.Account, error) {
				if err := a.OpenIntent(i.ID); err != nil {
					return nil, err
				}
				return a, nil
			},
		); err != nil {
			return nil, err
		}

		intent = i
		event := intentEvent(domain.EventIntentSignalled, i, caller, now)
		event.Data["recipient"] = i.Recipient
		event.Data["fiat_amount"] = fmt.Sprint(i.FiatAmountExpected)
		event.Data["currency"] = i.Currency
		event.Data["rate"] = i.ConversionRate.String()
		return append(events, event), nil
	}); err != nil {
		return nil, err
	}

	log.Debugf(
		"intent %s signalled by %s on deposit %d", intent.ID, caller, depositID,
	)
	return intent, nil
}

// CancelIntent releases an open intent of the caller.
func (s *service) CancelIntent(
	ctx context.Context, caller, id string,
) (*domain.Intent, error) {
	id = domain.NormalizeHash(id)

	var intent *domain.Intent
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		intentRepo := s.repoManager.IntentRepository()
		i, err := intentRepo.GetIntent(ctx, id)
		if err != nil {
			return nil, err
		}
		if !domain.SameAddress(i.Taker, caller) {
			return nil, domain.ErrUnauthorized
		}

		now := s.now()
		if err := intentRepo.UpdateIntent(
			ctx, id, func(i *domain.Intent) (*domain.Intent, error) {
				if err := i.Cancel(now); err != nil {
					return nil, err
				}
				intent = i
				return i, nil
			},
		); err != nil {
			return nil, err
		}

		events, err := s.unlockIntent(ctx, intent, now)
		if err != nil {
			return nil, err
		}
		event := intentEvent(domain.EventIntentCancelled, intent, caller, now)
		return append([]domain.Event{event}, events...), nil
	}); err != nil {
		return nil, err
	}

	log.Debugf("intent %s cancelled", id)
	return intent, nil
}

// PruneExpiredIntent expires an open intent past its expiration time. It
// can be called by anyone and doesn't affect the cooldown of the taker.
func (s *service) PruneExpiredIntent(
	ctx context.Context, caller, id string,
) error {
	id = domain.NormalizeHash(id)
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		return s.expireIntent(ctx, caller, id, s.now())
	}); err != nil {
		return err
	}

	log.Debugf("intent %s expired", id)
	return nil
}

// PruneExpiredIntents expires every open intent past its expiration time
// and returns their ids.
func (s *service) PruneExpiredIntents(
	ctx context.Context, caller string,
) ([]string, error) {
	ids := make([]string, 0)
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		now := s.now()
		intents, err := s.repoManager.IntentRepository().
			GetOpenIntentsExpiredAt(ctx, now)
		if err != nil {
			return nil, err
		}

		events := make([]domain.Event, 0)
		for _, i := range intents {
			e, err := s.expireIntent(ctx, caller, i.ID, now)
			if err != nil {
				return nil, err
			}
			events = append(events, e...)
			ids = append(ids, i.ID)
		}
		return events, nil
	}); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		log.Debugf("pruned %d expired intents", len(ids))
	}
	return ids, nil
}

// ListExpiredIntents returns the open intents past their expiration time.
func (s *service) ListExpiredIntents(
	ctx context.Context,
) ([]*domain.Intent, error) {
	return s.repoManager.IntentRepository().GetOpenIntentsExpiredAt(ctx, s.now())
}

func (s *service) GetIntent(
	ctx context.Context, id string,
) (*domain.Intent, error) {
	return s.repoManager.IntentRepository().GetIntent(
		ctx, domain.NormalizeHash(id),
	)
}

// ListIntents returns the intents of the given deposit or taker, or all of
// them if none is specified.
func (s *service) ListIntents(
	ctx context.Context, depositID uint64, taker string, page *domain.Page,
) ([]*domain.Intent, error) {
	repo := s.repoManager.IntentRepository()

	var intents []*domain.Intent
	var err error
	switch {
	case depositID > 0:
		intents, err = repo.GetIntentsForDeposit(ctx, depositID)
		if err == nil && taker != "" {
			filtered := make([]*domain.Intent, 0, len(intents))
			for _, i := range intents {
				if domain.SameAddress(i.Taker, taker) {
					filtered = append(filtered, i)
				}
			}
			intents = filtered
		}
	case taker != "":
		intents, err = repo.GetIntentsForTaker(ctx, taker)
	default:
		intents, err = repo.GetAllIntents(ctx)
	}
	if err != nil {
		return nil, err
	}

	if page != nil {
		from, to := page.Bounds(len(intents))
		intents = intents[from:to]
	}
	return intents, nil
}
