package escrow

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// CreateDeposit moves amount of token from the caller's balance into the
// escrow and advertises it for sale at the given rates, through the given
// verifiers.
func (s *service) CreateDeposit(
	ctx context.Context, caller, token string, amount uint64,
	rates map[string]decimal.Decimal, verifiers []string,
) (*domain.Deposit, error) {
	params := s.Params()
	if amount < params.MinDepositAmount {
		return nil, domain.ErrDepositBelowMinimum
	}

	verifierCurrencies := make(map[string]string, len(verifiers))
	for _, id := range verifiers {
		processor, err := s.processors.PaymentProcessor(id)
		if err != nil {
			return nil, err
		}
		verifierCurrencies[id] = processor.Currency()
	}

	var deposit *domain.Deposit
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if _, err := s.getRegisteredAccount(ctx, caller); err != nil {
			return nil, err
		}

		depositRepo := s.repoManager.DepositRepository()
		if params.MaxDepositsPerAccount > 0 {
			deposits, err := depositRepo.GetDepositsForDepositor(ctx, caller)
			if err != nil {
				return nil, err
			}
			active := 0
			for _, d := range deposits {
				if d.IsActive() {
					active++
				}
			}
			if active >= params.MaxDepositsPerAccount {
				return nil, domain.ErrMaxDepositsReached
			}
		}

		count, err := depositRepo.CountDeposits(ctx)
		if err != nil {
			return nil, err
		}
		now := s.now()
		d, err := domain.NewDeposit(
			count+1, caller, token, amount, rates, verifierCurrencies,
			params.MaxIntentsPerDeposit, now,
		)
		if err != nil {
			return nil, err
		}

		if err := s.transfer(
			ctx, d.Depositor, s.escrowAddress, d.Token, amount,
		); err != nil {
			return nil, err
		}
		if err := depositRepo.AddDeposit(ctx, d); err != nil {
			return nil, err
		}

		deposit = d
		event := depositEvent(domain.EventDepositCreated, d, d.Depositor, amount, now)
		for currency, rate := range d.ConversionRates {
			event.Data["rate_"+currency] = rate.String()
		}
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}

	log.Debugf("created deposit %d for %s", deposit.ID, deposit.Depositor)
	return deposit, nil
}

// IncreaseDeposit adds amount to an active deposit of the caller.
func (s *service) IncreaseDeposit(
	ctx context.Context, caller string, id, amount uint64,
) (*domain.Deposit, error) {
	var deposit *domain.Deposit
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		depositRepo := s.repoManager.DepositRepository()
		d, err := depositRepo.GetDeposit(ctx, id)
		if err != nil {
			return nil, err
		}
		if !domain.SameAddress(d.Depositor, caller) {
			return nil, domain.ErrUnauthorized
		}

		if err := depositRepo.UpdateDeposit(
			ctx, id, func(d *domain.Deposit) (*domain.Deposit, error) {
				if err := d.Increase(amount); err != nil {
					return nil, err
				}
				deposit = d
				return d, nil
			},
		); err != nil {
			return nil, err
		}
		if err := s.transfer(
			ctx, deposit.Depositor, s.escrowAddress, deposit.Token, amount,
		); err != nil {
			return nil, err
		}

		return []domain.Event{depositEvent(
			domain.EventDepositIncreased, deposit, deposit.Depositor, amount, s.now(),
		)}, nil
	}); err != nil {
		return nil, err
	}
	return deposit, nil
}

// WithdrawDeposit reclaims the expired intents of the caller's deposit and
// pays its available liquidity back to the caller. Unless allowPending is
// set, the deposit must have no open intents left. Otherwise these keep
// their reservation and are refunded to the depositor when they are
// cancelled or expire.
func (s *service) WithdrawDeposit(
	ctx context.Context, caller string, id uint64, allowPending bool,
) (uint64, error) {
	var withdrawn uint64
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		depositRepo := s.repoManager.DepositRepository()
		d, err := depositRepo.GetDeposit(ctx, id)
		if err != nil {
			return nil, err
		}
		if !domain.SameAddress(d.Depositor, caller) {
			return nil, domain.ErrUnauthorized
		}
		if !d.IsActive() {
			return nil, domain.ErrDepositNotActive
		}

		now := s.now()
		events, err := s.reclaimExpiredIntents(ctx, caller, d, now)
		if err != nil {
			return nil, err
		}

		var deposit *domain.Deposit
		if err := depositRepo.UpdateDeposit(
			ctx, id, func(d *domain.Deposit) (*domain.Deposit, error) {
				if d.HasOpenIntents() && !allowPending {
					return nil, domain.ErrHasOpenIntents
				}
				amount, err := d.Withdraw(now)
				if err != nil {
					return nil, err
				}
				deposit, withdrawn = d, amount
				return d, nil
			},
		); err != nil {
			return nil, err
		}

		if err := s.transfer(
			ctx, s.escrowAddress, deposit.Depositor, deposit.Token, withdrawn,
		); err != nil {
			return nil, err
		}

		events = append(events, depositEvent(
			domain.EventDepositWithdrawn, deposit, deposit.Depositor, withdrawn, now,
		))
		if deposit.IsClosed() {
			events = append(events, depositEvent(
				domain.EventDepositClosed, deposit, deposit.Depositor, 0, now,
			))
		}
		return events, nil
	}); err != nil {
		return 0, err
	}

	log.Debugf("withdrawn %d from deposit %d", withdrawn, id)
	return withdrawn, nil
}

// SetConversionRate updates the rate of a currency of the caller's deposit.
// A zero rate stops accepting the currency, unless an accepted verifier
// settles in it.
func (s *service) SetConversionRate(
	ctx context.Context, caller string, id uint64,
	currency string, rate decimal.Decimal,
) (*domain.Deposit, error) {
	var deposit *domain.Deposit
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		depositRepo := s.repoManager.DepositRepository()
		d, err := depositRepo.GetDeposit(ctx, id)
		if err != nil {
			return nil, err
		}
		if !domain.SameAddress(d.Depositor, caller) {
			return nil, domain.ErrUnauthorized
		}
		if rate.IsZero() {
			for _, verifier := range d.Verifiers {
				processor, err := s.processors.PaymentProcessor(verifier)
				if err != nil {
					continue
				}
				if processor.Currency() == currency {
					return nil, domain.ErrDepositMissingConversionRate
				}
			}
		}

		if err := depositRepo.UpdateDeposit(
			ctx, id, func(d *domain.Deposit) (*domain.Deposit, error) {
				if err := d.SetConversionRate(currency, rate); err != nil {
					return nil, err
				}
				deposit = d
				return d, nil
			},
		); err != nil {
			return nil, err
		}

		event := depositEvent(
			domain.EventConversionRateUpdated, deposit, caller, 0, s.now(),
		)
		event.Data["currency"] = currency
		event.Data["rate"] = rate.String()
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}
	return deposit, nil
}

func (s *service) GetDeposit(
	ctx context.Context, id uint64,
) (*DepositInfo, error) {
	d, err := s.repoManager.DepositRepository().GetDeposit(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.depositInfo(ctx, d)
}

// GetAvailableLiquidity returns the amount of the deposit that a new intent
// could reserve at this moment.
func (s *service) GetAvailableLiquidity(
	ctx context.Context, id uint64,
) (uint64, error) {
	info, err := s.GetDeposit(ctx, id)
	if err != nil {
		return 0, err
	}
	return info.AvailableLiquidity, nil
}

// ListDeposits returns the deposits of the given depositor, or all of them
// if not specified.
func (s *service) ListDeposits(
	ctx context.Context, depositor string, page *domain.Page,
) ([]*DepositInfo, error) {
	repo := s.repoManager.DepositRepository()

	var deposits []*domain.Deposit
	var err error
	if depositor != "" {
		deposits, err = repo.GetDepositsForDepositor(ctx, depositor)
	} else {
		deposits, err = repo.GetAllDeposits(ctx)
	}
	if err != nil {
		return nil, err
	}

	if page != nil {
		from, to := page.Bounds(len(deposits))
		deposits = deposits[from:to]
	}

	list := make([]*DepositInfo, 0, len(deposits))
	for _, d := range deposits {
		info, err := s.depositInfo(ctx, d)
		if err != nil {
			return nil, err
		}
		list = append(list, info)
	}
	return list, nil
}

// depositInfo reports the liquidity of an active deposit. Available
// liquidity subtracts every open intent, expired ones included, until they
// are pruned. Reclaimable is the share of it locked by expired intents.
func (s *service) depositInfo(
	ctx context.Context, d *domain.Deposit,
) (*DepositInfo, error) {
	info := &DepositInfo{Deposit: d}
	if !d.IsActive() {
		return info, nil
	}
	info.AvailableLiquidity = d.AvailableLiquidity()
	if !d.HasOpenIntents() {
		return info, nil
	}

	intents, err := s.repoManager.IntentRepository().GetIntentsForDeposit(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, i := range intents {
		if i.IsOpen() && i.IsExpired(now) {
			info.ReclaimableLiquidity += i.Amount
		}
	}
	return info, nil
}

// reclaimExpiredIntents expires the open intents of the deposit past their
// expiration time.
func (s *service) reclaimExpiredIntents(
	ctx context.Context, caller string, d *domain.Deposit, now int64,
) ([]domain.Event, error) {
	events := make([]domain.Event, 0)
	if !d.HasOpenIntents() {
		return events, nil
	}

	intentRepo := s.repoManager.IntentRepository()
	for _, id := range append([]string{}, d.IntentIDs...) {
		intent, err := intentRepo.GetIntent(ctx, id)
		if err != nil {
			return nil, err
		}
		if !intent.IsOpen() || !intent.IsExpired(now) {
			continue
		}
		e, err := s.expireIntent(ctx, caller, id, now)
		if err != nil {
			return nil, err
		}
		events = append(events, e...)
	}
	return events, nil
}
