package domain

import (
	"github.com/shopspring/decimal"
	"github.com/zkramp/ramp-daemon/pkg/mathutil"
)

// DepositStatus ...
type DepositStatus int

const (
	DepositStatusActive DepositStatus = iota
	DepositStatusWithdrawn
)

func (s DepositStatus) String() string {
	switch s {
	case DepositStatusActive:
		return "ACTIVE"
	case DepositStatusWithdrawn:
		return "WITHDRAWN"
	default:
		return "UNKNOWN"
	}
}

// Deposit is the liquidity advertised by a depositor, willing to sell
// Token for off-chain fiat payments at the given conversion rates.
type Deposit struct {
	ID        uint64
	Depositor string
	Token     string
	// Total amount ever deposited.
	Amount uint64
	// Amount still held by the escrow for this deposit, locked funds included.
	RemainingAmount uint64
	// Sum of the amounts of the open intents.
	LockedAmount    uint64
	WithdrawnAmount uint64
	SettledAmount   uint64
	// Fiat units accepted per token unit, by currency code.
	ConversionRates map[string]decimal.Decimal
	// Ids of the accepted proof processors.
	Verifiers []string
	// Ids of the open intents drawing against the deposit.
	IntentIDs  []string
	MaxIntents int
	Status     DepositStatus
	CreatedAt  int64
	ClosedAt   int64
}

// NewDeposit returns a new active deposit after validating its arguments.
// Every verifier must come with the currency it settles in, so that the
// deposit is guaranteed to carry a rate for each of them.
func NewDeposit(
	id uint64, depositor, token string, amount uint64,
	rates map[string]decimal.Decimal, verifierCurrencies map[string]string,
	maxIntents int, createdAt int64,
) (*Deposit, error) {
	if !IsValidAddress(depositor) {
		return nil, ErrDepositInvalidDepositor
	}
	if !IsValidAddress(token) {
		return nil, ErrDepositInvalidToken
	}
	if amount == 0 {
		return nil, ErrDepositInvalidAmount
	}
	if len(verifierCurrencies) == 0 {
		return nil, ErrDepositMissingVerifiers
	}

	conversionRates := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		if !rate.IsPositive() {
			return nil, ErrDepositInvalidConversionRate
		}
		conversionRates[currency] = rate
	}

	verifiers := make([]string, 0, len(verifierCurrencies))
	for verifier, currency := range verifierCurrencies {
		if _, ok := conversionRates[currency]; !ok {
			return nil, ErrDepositMissingConversionRate
		}
		verifiers = append(verifiers, verifier)
	}
	sortStrings(verifiers)

	return &Deposit{
		ID:              id,
		Depositor:       NormalizeAddress(depositor),
		Token:           NormalizeAddress(token),
		Amount:          amount,
		RemainingAmount: amount,
		ConversionRates: conversionRates,
		Verifiers:       verifiers,
		IntentIDs:       make([]string, 0),
		MaxIntents:      maxIntents,
		Status:          DepositStatusActive,
		CreatedAt:       createdAt,
	}, nil
}

// AvailableLiquidity returns the amount that can still be reserved by new
// intents.
func (d *Deposit) AvailableLiquidity() uint64 {
	if d.LockedAmount > d.RemainingAmount {
		return 0
	}
	return d.RemainingAmount - d.LockedAmount
}

// IsActive returns whether the deposit accepts new intents.
func (d *Deposit) IsActive() bool {
	return d.Status == DepositStatusActive
}

// IsClosed returns whether the deposit is withdrawn and holds no funds.
func (d *Deposit) IsClosed() bool {
	return d.Status == DepositStatusWithdrawn &&
		d.RemainingAmount == 0 && d.LockedAmount == 0
}

// HasOpenIntents ...
func (d *Deposit) HasOpenIntents() bool {
	return len(d.IntentIDs) > 0
}

// AcceptsVerifier returns whether the deposit can be settled through the
// given proof processor.
func (d *Deposit) AcceptsVerifier(verifier string) bool {
	for _, v := range d.Verifiers {
		if v == verifier {
			return true
		}
	}
	return false
}

// ConversionRate returns the rate for the given currency.
func (d *Deposit) ConversionRate(currency string) (decimal.Decimal, bool) {
	rate, ok := d.ConversionRates[currency]
	return rate, ok
}

// Increase adds the given amount to the deposit.
func (d *Deposit) Increase(amount uint64) error {
	if !d.IsActive() {
		return ErrDepositNotActive
	}
	if amount == 0 {
		return ErrDepositInvalidAmount
	}

	total, err := mathutil.AddUint64(d.Amount, amount)
	if err != nil {
		return ErrDepositInvalidAmount
	}

	d.Amount = total
	d.RemainingAmount += amount
	return nil
}

// SetConversionRate updates the rate for the given currency. A zero rate
// removes the currency from those accepted.
func (d *Deposit) SetConversionRate(currency string, rate decimal.Decimal) error {
	if !d.IsActive() {
		return ErrDepositNotActive
	}
	if rate.IsNegative() {
		return ErrDepositInvalidConversionRate
	}
	if rate.IsZero() {
		delete(d.ConversionRates, currency)
		return nil
	}

	if d.ConversionRates == nil {
		d.ConversionRates = make(map[string]decimal.Decimal)
	}
	d.ConversionRates[currency] = rate
	return nil
}

// Lock reserves the given amount for the intent.
func (d *Deposit) Lock(intentID string, amount uint64) error {
	if !d.IsActive() {
		return ErrDepositNotActive
	}
	if amount == 0 {
		return ErrIntentInvalidAmount
	}
	if d.MaxIntents > 0 && len(d.IntentIDs) >= d.MaxIntents {
		return ErrMaxIntentsReached
	}
	if amount > d.AvailableLiquidity() {
		return ErrInsufficientLiquidity
	}

	d.LockedAmount += amount
	d.IntentIDs = append(d.IntentIDs, intentID)
	return nil
}

// Unlock releases the reservation of a cancelled or expired intent.
// If the deposit has been withdrawn meanwhile, the released amount is
// returned to the depositor and the returned refund is greater than zero.
func (d *Deposit) Unlock(intentID string, amount uint64, now int64) (uint64, error) {
	if err := d.removeIntent(intentID, amount); err != nil {
		return 0, err
	}

	d.LockedAmount -= amount
	if d.IsActive() {
		return 0, nil
	}

	d.RemainingAmount -= amount
	d.WithdrawnAmount += amount
	d.closeIfEmpty(now)
	return amount, nil
}

// Settle permanently consumes the reservation of a fulfilled intent.
func (d *Deposit) Settle(intentID string, amount uint64, now int64) error {
	if err := d.removeIntent(intentID, amount); err != nil {
		return err
	}

	d.LockedAmount -= amount
	d.RemainingAmount -= amount
	d.SettledAmount += amount
	d.closeIfEmpty(now)
	return nil
}

// Withdraw pays the available liquidity out to the depositor and stops the
// deposit from accepting new intents. Reservations of still open intents are
// kept in place.
func (d *Deposit) Withdraw(now int64) (uint64, error) {
	if !d.IsActive() {
		return 0, ErrDepositNotActive
	}

	amount := d.AvailableLiquidity()
	d.RemainingAmount -= amount
	d.WithdrawnAmount += amount
	d.Status = DepositStatusWithdrawn
	d.closeIfEmpty(now)
	return amount, nil
}

func (d *Deposit) removeIntent(intentID string, amount uint64) error {
	index := -1
	for i, id := range d.IntentIDs {
		if id == intentID {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrDepositUnknownIntent
	}
	if amount > d.LockedAmount {
		return ErrDepositUnknownIntent
	}

	d.IntentIDs = append(d.IntentIDs[:index], d.IntentIDs[index+1:]...)
	return nil
}

func (d *Deposit) closeIfEmpty(now int64) {
	if d.IsClosed() && d.ClosedAt == 0 {
		d.ClosedAt = now
	}
}
