package escrow

import (
	"context"
	"errors"
	"strconv"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// transfer moves amount of token between two balances.
func (s *service) transfer(
	ctx context.Context, from, to, token string, amount uint64,
) error {
	if amount == 0 {
		return nil
	}

	repo := s.repoManager.BalanceRepository()
	if err := repo.UpdateBalance(
		ctx, from, token, func(b *domain.Balance) (*domain.Balance, error) {
			if err := b.Debit(amount); err != nil {
				return nil, err
			}
			return b, nil
		},
	); err != nil {
		return err
	}
	return repo.UpdateBalance(
		ctx, to, token, func(b *domain.Balance) (*domain.Balance, error) {
			b.Credit(amount)
			return b, nil
		},
	)
}

// getRegisteredAccount maps a missing account to ErrAccountNotRegistered.
func (s *service) getRegisteredAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	if !domain.IsValidAddress(address) {
		return nil, domain.ErrAccountInvalidAddress
	}
	account, err := s.repoManager.AccountRepository().GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotRegistered
		}
		return nil, err
	}
	return account, nil
}

// expireIntent brings an open intent past its expiration time to the Expired
// status and releases its reservation.
func (s *service) expireIntent(
	ctx context.Context, caller, intentID string, now int64,
) ([]domain.Event, error) {
	var intent *domain.Intent
	if err := s.repoManager.IntentRepository().UpdateIntent(
		ctx, intentID, func(i *domain.Intent) (*domain.Intent, error) {
			if err := i.Expire(now); err != nil {
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
	event := intentEvent(domain.EventIntentExpired, intent, caller, now)
	return append([]domain.Event{event}, events...), nil
}

// unlockIntent releases the reservation of a cancelled or expired intent
// and frees its taker. If the deposit has been withdrawn meanwhile the
// released amount goes back to the depositor.
func (s *service) unlockIntent(
	ctx context.Context, intent *domain.Intent, now int64,
) ([]domain.Event, error) {
	var deposit *domain.Deposit
	var refund uint64
	if err := s.repoManager.DepositRepository().UpdateDeposit(
		ctx, intent.DepositID, func(d *domain.Deposit) (*domain.Deposit, error) {
			amount, err := d.Unlock(intent.ID, intent.Amount, now)
			if err != nil {
				return nil, err
			}
			deposit, refund = d, amount
			return d, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.closeAccountIntent(ctx, intent); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0)
	if refund > 0 {
		if err := s.transfer(
			ctx, s.escrowAddress, deposit.Depositor, deposit.Token, refund,
		); err != nil {
			return nil, err
		}
		events = append(events, depositEvent(
			domain.EventDepositWithdrawn, deposit, deposit.Depositor, refund, now,
		))
	}
	if deposit.IsClosed() {
		events = append(events, depositEvent(
			domain.EventDepositClosed, deposit, deposit.Depositor, 0, now,
		))
	}
	return events, nil
}

func (s *service) closeAccountIntent(
	ctx context.Context, intent *domain.Intent,
) error {
	return s.repoManager.AccountRepository().UpdateAccount(
		ctx, intent.Taker, func(a *domain.Account) (*domain.Account, error) {
			a.CloseIntent(intent.ID)
			return a, nil
		},
	)
}

func depositEvent(
	eventType domain.EventType, d *domain.Deposit, caller string,
	amount uint64, now int64,
) domain.Event {
	event := domain.NewEvent(eventType, now)
	event.DepositID = d.ID
	event.Account = caller
	event.Amount = amount
	event.Data["token"] = d.Token
	event.Data["remaining_amount"] = strconv.FormatUint(d.RemainingAmount, 10)
	return event
}

func intentEvent(
	eventType domain.EventType, i *domain.Intent, caller string, now int64,
) domain.Event {
	event := domain.NewEvent(eventType, now)
	event.DepositID = i.DepositID
	event.IntentID = i.ID
	event.Account = caller
	event.Amount = i.Amount
	event.Data["taker"] = i.Taker
	event.Data["verifier"] = i.Verifier
	return event
}
