package domain

import (
	"github.com/shopspring/decimal"
	"github.com/zkramp/ramp-daemon/pkg/mathutil"
)

// IntentStatus represents the different statuses an intent can assume.
// Open is the only non terminal one.
type IntentStatus int

const (
	IntentStatusOpen IntentStatus = iota
	IntentStatusFulfilled
	IntentStatusCancelled
	IntentStatusExpired
)

func (s IntentStatus) String() string {
	switch s {
	case IntentStatusOpen:
		return "OPEN"
	case IntentStatusFulfilled:
		return "FULFILLED"
	case IntentStatusCancelled:
		return "CANCELLED"
	case IntentStatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// SettlementKind tells how a fulfilled intent was settled.
type SettlementKind int

const (
	SettlementNone SettlementKind = iota
	SettlementProof
	SettlementRelease
)

// Intent is a time-bounded reservation of a deposit's liquidity by a taker.
type Intent struct {
	ID        string
	DepositID uint64
	Taker     string
	// Payout address, might differ from the taker.
	Recipient string
	Amount    uint64
	Verifier  string
	Currency  string
	// Rate in force when the intent was signalled.
	ConversionRate     decimal.Decimal
	FiatAmountExpected uint64
	Nonce              uint64
	CreatedAt          int64
	ExpiresAt          int64
	Status             IntentStatus
	ClosedAt           int64
	Fee                uint64
	Nullifier          string
	SettledBy          SettlementKind
}

// NewIntent returns an open intent for the given deposit. The expected fiat
// amount is the token amount converted at the given rate, rounded up.
func NewIntent(
	depositID uint64, taker, recipient string, amount uint64,
	verifier, currency string, rate decimal.Decimal,
	nonce uint64, createdAt, expiresAt int64,
) (*Intent, error) {
	if !IsValidAddress(taker) {
		return nil, ErrIntentInvalidTaker
	}
	if !IsValidAddress(recipient) {
		return nil, ErrIntentInvalidRecipient
	}
	if amount == 0 {
		return nil, ErrIntentInvalidAmount
	}
	if !rate.IsPositive() {
		return nil, ErrDepositInvalidConversionRate
	}
	if expiresAt <= createdAt {
		return nil, ErrIntentInvalidExpiry
	}

	fiatAmount, err := mathutil.MulRateCeil(amount, rate)
	if err != nil {
		return nil, ErrIntentInvalidAmount
	}

	return &Intent{
		ID:                 MakeIntentID(depositID, taker, nonce),
		DepositID:          depositID,
		Taker:              NormalizeAddress(taker),
		Recipient:          NormalizeAddress(recipient),
		Amount:             amount,
		Verifier:           verifier,
		Currency:           currency,
		ConversionRate:     rate,
		FiatAmountExpected: fiatAmount,
		Nonce:              nonce,
		CreatedAt:          createdAt,
		ExpiresAt:          expiresAt,
		Status:             IntentStatusOpen,
	}, nil
}

// IsOpen ...
func (i *Intent) IsOpen() bool {
	return i.Status == IntentStatusOpen
}

// IsExpired returns whether the intent is in Expired status or, if still
// open, whether its expiration time has passed.
func (i *Intent) IsExpired(now int64) bool {
	return i.Status == IntentStatusExpired ||
		(i.IsOpen() && now > i.ExpiresAt)
}

// Cancel brings an open intent to the Cancelled status.
func (i *Intent) Cancel(now int64) error {
	if !i.IsOpen() {
		return ErrIntentNotOpen
	}

	i.Status = IntentStatusCancelled
	i.ClosedAt = now
	return nil
}

// Expire brings an open intent to the Expired status, only after its
// expiration time.
func (i *Intent) Expire(now int64) error {
	if !i.IsOpen() {
		return ErrIntentNotOpen
	}
	if now <= i.ExpiresAt {
		return ErrIntentNotExpired
	}

	i.Status = IntentStatusExpired
	i.ClosedAt = now
	return nil
}

// Fulfill brings an open intent to the Fulfilled status by recording the
// nullifier of the proof that settled it and the protocol fee charged.
func (i *Intent) Fulfill(now int64, nullifier string, fee uint64) error {
	if !i.IsOpen() {
		return ErrIntentNotOpen
	}
	if i.IsExpired(now) {
		return ErrIntentExpired
	}
	if !IsValidHash(nullifier) {
		return ErrNullifierInvalid
	}

	i.Status = IntentStatusFulfilled
	i.ClosedAt = now
	i.Nullifier = nullifier
	i.Fee = fee
	i.SettledBy = SettlementProof
	return nil
}

// Release brings an open intent to the Fulfilled status on behalf of the
// depositor, without any proof of payment.
func (i *Intent) Release(now int64, fee uint64) error {
	if !i.IsOpen() {
		return ErrIntentNotOpen
	}

	i.Status = IntentStatusFulfilled
	i.ClosedAt = now
	i.Fee = fee
	i.SettledBy = SettlementRelease
	return nil
}
