package escrow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/pkg/mathutil"
)

// FulfillIntent settles an open intent with the proof of its fiat payment.
// Anyone can submit the proof, the tokens always go to the intent's
// recipient. The proof's nullifier is consumed in the same transaction
// that settles the intent, so a rejected proof can be submitted again.
func (s *service) FulfillIntent(
	ctx context.Context, caller, id string, bundle ports.ProofBundle,
) (*domain.Intent, error) {
	id = domain.NormalizeHash(id)

	var intent *domain.Intent
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		i, err := s.repoManager.IntentRepository().GetIntent(ctx, id)
		if err != nil {
			return nil, err
		}
		if !i.IsOpen() {
			return nil, domain.ErrIntentNotOpen
		}
		now := s.now()
		if i.IsExpired(now) {
			return nil, domain.ErrIntentExpired
		}

		processor, err := s.processors.PaymentProcessor(i.Verifier)
		if err != nil {
			return nil, err
		}
		facts, err := processor.ProcessProof(ctx, bundle)
		if err != nil {
			return nil, err
		}
		if err := s.checkSettlementFacts(ctx, i, facts); err != nil {
			return nil, err
		}

		events, err := s.settleIntent(
			ctx, caller, id, now, func(i *domain.Intent, fee uint64) error {
				return i.Fulfill(now, facts.Nullifier, fee)
			},
		)
		if err != nil {
			return nil, err
		}
		intent = events.intent

		event := intentEvent(domain.EventIntentFulfilled, intent, caller, now)
		event.Data["nullifier"] = facts.Nullifier
		event.Data["fiat_amount"] = fmt.Sprint(facts.Amount)
		event.Data["fee"] = fmt.Sprint(intent.Fee)
		return append([]domain.Event{event}, events.list...), nil
	}); err != nil {
		return nil, err
	}

	log.Debugf("intent %s fulfilled", id)
	return intent, nil
}

// ReleaseFundsToTaker lets the depositor settle an open intent of one of
// its deposits without any proof, once paid through other means.
func (s *service) ReleaseFundsToTaker(
	ctx context.Context, caller, id string,
) (*domain.Intent, error) {
	id = domain.NormalizeHash(id)

	var intent *domain.Intent
	if err := s.runTransaction(ctx, func(ctx context.Context) ([]domain.Event, error) {
		i, err := s.repoManager.IntentRepository().GetIntent(ctx, id)
		if err != nil {
			return nil, err
		}
		deposit, err := s.repoManager.DepositRepository().GetDeposit(ctx, i.DepositID)
		if err != nil {
			return nil, err
		}
		if !domain.SameAddress(deposit.Depositor, caller) {
			return nil, domain.ErrUnauthorized
		}

		now := s.now()
		events, err := s.settleIntent(
			ctx, caller, id, now, func(i *domain.Intent, fee uint64) error {
				return i.Release(now, fee)
			},
		)
		if err != nil {
			return nil, err
		}
		intent = events.intent

		event := intentEvent(domain.EventIntentReleased, intent, caller, now)
		event.Data["fee"] = fmt.Sprint(intent.Fee)
		return append([]domain.Event{event}, events.list...), nil
	}); err != nil {
		return nil, err
	}

	log.Debugf("intent %s released by depositor", id)
	return intent, nil
}

// checkSettlementFacts matches the facts proven by a payment against the
// intent they are meant to settle.
func (s *service) checkSettlementFacts(
	ctx context.Context, intent *domain.Intent, facts *domain.SettlementFacts,
) error {
	if domain.NormalizeHash(facts.IntentHash) != intent.ID {
		return domain.ErrIntentHashMismatch
	}
	if facts.Timestamp < intent.CreatedAt {
		return domain.ErrPaymentBeforeIntent
	}

	deposit, err := s.repoManager.DepositRepository().GetDeposit(
		ctx, intent.DepositID,
	)
	if err != nil {
		return err
	}
	depositor, err := s.getRegisteredAccount(ctx, deposit.Depositor)
	if err != nil {
		return err
	}
	if domain.NormalizeHash(facts.PayeeIDHash) != depositor.IDHash {
		return domain.ErrPayeeMismatch
	}

	taker, err := s.getRegisteredAccount(ctx, intent.Taker)
	if err != nil {
		return err
	}
	if domain.NormalizeHash(facts.PayerIDHash) != taker.IDHash {
		return domain.ErrPayerMismatch
	}

	if facts.Amount < intent.FiatAmountExpected {
		return fmt.Errorf(
			"%w: expected %d, got %d",
			domain.ErrInsufficientPayment, intent.FiatAmountExpected, facts.Amount,
		)
	}
	return nil
}

type settlementEvents struct {
	intent *domain.Intent
	list   []domain.Event
}

// settleIntent closes the intent with the given transition, consumes its
// reservation and pays it out to the recipient, less the protocol fee.
func (s *service) settleIntent(
	ctx context.Context, caller, id string, now int64,
	transition func(i *domain.Intent, fee uint64) error,
) (*settlementEvents, error) {
	params := s.Params()

	var intent *domain.Intent
	var toRecipient, fee uint64
	if err := s.repoManager.IntentRepository().UpdateIntent(
		ctx, id, func(i *domain.Intent) (*domain.Intent, error) {
			toRecipient, fee = mathutil.LessFee(
				i.Amount, uint64(params.SustainabilityFee),
			)
			if err := transition(i, fee); err != nil {
				return nil, err
			}
			intent = i
			return i, nil
		},
	); err != nil {
		return nil, err
	}

	var deposit *domain.Deposit
	if err := s.repoManager.DepositRepository().UpdateDeposit(
		ctx, intent.DepositID, func(d *domain.Deposit) (*domain.Deposit, error) {
			if err := d.Settle(intent.ID, intent.Amount, now); err != nil {
				return nil, err
			}
			deposit = d
			return d, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.repoManager.AccountRepository().UpdateAccount(
		ctx, intent.Taker, func(a *domain.Account) (*domain.Account, error) {
			a.CloseIntent(intent.ID)
			a.RecordSettlement(intent.Verifier, now)
			return a, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.transfer(
		ctx, s.escrowAddress, intent.Recipient, deposit.Token, toRecipient,
	); err != nil {
		return nil, err
	}
	if fee > 0 {
		if err := s.transfer(
			ctx, s.escrowAddress, params.FeeRecipient, deposit.Token, fee,
		); err != nil {
			return nil, err
		}
	}

	events := make([]domain.Event, 0)
	if deposit.IsClosed() {
		events = append(events, depositEvent(
			domain.EventDepositClosed, deposit, caller, 0, now,
		))
	}
	return &settlementEvents{intent, events}, nil
}
