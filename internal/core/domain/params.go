package domain

import "fmt"

// Params are the owner tunable settings of the escrow. Durations are in
// seconds, zero maximums mean no limit.
type Params struct {
	IntentExpirationPeriod int64
	CooldownPeriod         int64
	MinDepositAmount       uint64
	MinIntentAmount        uint64
	MaxIntentAmount        uint64
	MaxIntentsPerDeposit   int
	MaxDepositsPerAccount  int
	// Protocol fee charged on settlements, in basis points.
	SustainabilityFee uint32
	FeeRecipient      string
}

// Validate ...
func (p Params) Validate() error {
	if p.IntentExpirationPeriod <= 0 {
		return fmt.Errorf("%w: intent expiration period must be positive", ErrInvalidParams)
	}
	if p.CooldownPeriod < 0 {
		return fmt.Errorf("%w: cooldown period must not be negative", ErrInvalidParams)
	}
	if p.MaxIntentAmount > 0 && p.MaxIntentAmount < p.MinIntentAmount {
		return fmt.Errorf("%w: max intent amount is below minimum", ErrInvalidParams)
	}
	if p.MaxIntentsPerDeposit < 0 || p.MaxDepositsPerAccount < 0 {
		return fmt.Errorf("%w: max counts must not be negative", ErrInvalidParams)
	}
	if p.SustainabilityFee > MaxSustainabilityFee {
		return fmt.Errorf(
			"%w: sustainability fee must not exceed %d basis points",
			ErrInvalidParams, MaxSustainabilityFee,
		)
	}
	if p.SustainabilityFee > 0 && !IsValidAddress(p.FeeRecipient) {
		return fmt.Errorf("%w: missing fee recipient", ErrInvalidParams)
	}
	if p.FeeRecipient != "" && !IsValidAddress(p.FeeRecipient) {
		return fmt.Errorf("%w: invalid fee recipient", ErrInvalidParams)
	}
	return nil
}
