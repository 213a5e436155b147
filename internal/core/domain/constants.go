package domain

const (
	// BasisPoints is the denominator of fees expressed in basis points.
	BasisPoints = 10000
	// MaxSustainabilityFee is the cap of the protocol fee, 5%.
	MaxSustainabilityFee = 500

	// AmountDecimals is the precision of token amounts and of the fiat
	// amounts extracted from payment proofs.
	AmountDecimals = 6
)
