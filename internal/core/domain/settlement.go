package domain

// SettlementFacts are the values extracted from a verified payment proof.
type SettlementFacts struct {
	// Fiat amount paid, in token precision.
	Amount uint64
	// Unix time of the payment, timestamp buffer included.
	Timestamp   int64
	PayerIDHash string
	PayeeIDHash string
	IntentHash  string
	Nullifier   string
}

// RegistrationFacts are the values extracted from a verified registration
// proof.
type RegistrationFacts struct {
	IDHash    string
	Nullifier string
}
