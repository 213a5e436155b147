package domain

// Balance is the amount of a token held by an owner.
type Balance struct {
	Owner  string
	Token  string
	Amount uint64
}

// Key ...
func (b Balance) Key() string {
	return BalanceKey(b.Owner, b.Token)
}

// BalanceKey returns the key identifying the balance of owner for token.
func BalanceKey(owner, token string) string {
	return NormalizeAddress(owner) + ":" + NormalizeAddress(token)
}

// Credit ...
func (b *Balance) Credit(amount uint64) {
	b.Amount += amount
}

// Debit ...
func (b *Balance) Debit(amount uint64) error {
	if amount > b.Amount {
		return ErrInsufficientBalance
	}
	b.Amount -= amount
	return nil
}
