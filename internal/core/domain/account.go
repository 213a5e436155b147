package domain

// Account binds an address to the hash of an off-chain payment handle,
// proven once through a registration proof.
type Account struct {
	Address string
	IDHash  string
	// Registration processor that bound the id hash.
	Verifier string
	// Id hashes of the takers denied by this account as depositor.
	Denylist []string
	// Id hashes of the takers allowed by this account as depositor, enforced
	// only if AllowlistEnabled.
	Allowlist        []string
	AllowlistEnabled bool
	// Open intent held by this account as taker, if any.
	OpenIntentID string
	// Unix time of the last settled intent, by verifier.
	LastSettlement map[string]int64
	RegisteredAt   int64
}

// NewAccount returns a new account for the given address and id hash.
func NewAccount(
	address, idHash, verifier string, registeredAt int64,
) (*Account, error) {
	if !IsValidAddress(address) {
		return nil, ErrAccountInvalidAddress
	}
	idHash = NormalizeHash(idHash)
	if !IsValidHash(idHash) {
		return nil, ErrAccountInvalidIDHash
	}

	return &Account{
		Address:        NormalizeAddress(address),
		IDHash:         idHash,
		Verifier:       verifier,
		Denylist:       make([]string, 0),
		Allowlist:      make([]string, 0),
		LastSettlement: make(map[string]int64),
		RegisteredAt:   registeredAt,
	}, nil
}

// Rebind changes the id hash of the account after a new registration.
// Settled intents are not affected, while deny and allow lists are kept.
func (a *Account) Rebind(idHash, verifier string, registeredAt int64) error {
	idHash = NormalizeHash(idHash)
	if !IsValidHash(idHash) {
		return ErrAccountInvalidIDHash
	}

	a.IDHash = idHash
	a.Verifier = verifier
	a.RegisteredAt = registeredAt
	return nil
}

// Deny adds the given id hash to the denylist.
func (a *Account) Deny(idHash string) (bool, error) {
	idHash = NormalizeHash(idHash)
	if !IsValidHash(idHash) {
		return false, ErrAccountInvalidIDHash
	}
	if containsString(a.Denylist, idHash) {
		return false, nil
	}
	a.Denylist = append(a.Denylist, idHash)
	return true, nil
}

// Undeny removes the given id hash from the denylist.
func (a *Account) Undeny(idHash string) bool {
	idHash = NormalizeHash(idHash)
	if !containsString(a.Denylist, idHash) {
		return false
	}
	a.Denylist = removeString(a.Denylist, idHash)
	return true
}

// Allow adds the given id hash to the allowlist.
func (a *Account) Allow(idHash string) (bool, error) {
	idHash = NormalizeHash(idHash)
	if !IsValidHash(idHash) {
		return false, ErrAccountInvalidIDHash
	}
	if containsString(a.Allowlist, idHash) {
		return false, nil
	}
	a.Allowlist = append(a.Allowlist, idHash)
	return true, nil
}

// Disallow removes the given id hash from the allowlist.
func (a *Account) Disallow(idHash string) bool {
	idHash = NormalizeHash(idHash)
	if !containsString(a.Allowlist, idHash) {
		return false
	}
	a.Allowlist = removeString(a.Allowlist, idHash)
	return true
}

// SetAllowlistEnabled ...
func (a *Account) SetAllowlistEnabled(enabled bool) {
	a.AllowlistEnabled = enabled
}

// IsDenied ...
func (a *Account) IsDenied(idHash string) bool {
	return containsString(a.Denylist, NormalizeHash(idHash))
}

// IsAllowed returns whether the given id hash passes the allowlist.
func (a *Account) IsAllowed(idHash string) bool {
	if !a.AllowlistEnabled {
		return true
	}
	return containsString(a.Allowlist, NormalizeHash(idHash))
}

// CanOpenIntentWith returns an error if the taker identified by the given id
// hash cannot open intents against this account's deposits.
func (a *Account) CanOpenIntentWith(takerIDHash string) error {
	if a.IsDenied(takerIDHash) {
		return ErrTakerDenied
	}
	if !a.IsAllowed(takerIDHash) {
		return ErrTakerNotAllowed
	}
	return nil
}

// HasOpenIntent ...
func (a *Account) HasOpenIntent() bool {
	return a.OpenIntentID != ""
}

// OpenIntent records the open intent held by the account as taker.
func (a *Account) OpenIntent(intentID string) error {
	if a.HasOpenIntent() {
		return ErrDuplicateIntent
	}
	a.OpenIntentID = intentID
	return nil
}

// CloseIntent clears the open intent, if matching.
func (a *Account) CloseIntent(intentID string) {
	if a.OpenIntentID == intentID {
		a.OpenIntentID = ""
	}
}

// CheckCooldown returns ErrCooldownActive if the account settled an intent
// through the given verifier less than window seconds ago.
func (a *Account) CheckCooldown(verifier string, now, window int64) error {
	last, ok := a.LastSettlement[verifier]
	if !ok || window <= 0 {
		return nil
	}
	if now < last+window {
		return ErrCooldownActive
	}
	return nil
}

// RecordSettlement ...
func (a *Account) RecordSettlement(verifier string, now int64) {
	if a.LastSettlement == nil {
		a.LastSettlement = make(map[string]int64)
	}
	a.LastSettlement[verifier] = now
}
