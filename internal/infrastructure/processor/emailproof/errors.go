package emailproof

import "errors"

var (
	// ErrInvalidLayout is returned when a layout points to signals out of
	// the proof range.
	ErrInvalidLayout = errors.New("invalid signals layout")
	// ErrMissingID ...
	ErrMissingID = errors.New("missing processor id")
	// ErrMissingVerifier is returned when a verifier required by the layout
	// is not given.
	ErrMissingVerifier = errors.New("missing proof verifier")
	// ErrUnexpectedVerifier is returned when a body hash verifier is given
	// for a single proof layout.
	ErrUnexpectedVerifier = errors.New("unexpected body hash verifier")
	// ErrVerifierSignalsMismatch is returned when the verifying key and the
	// layout disagree on the number of public signals.
	ErrVerifierSignalsMismatch = errors.New(
		"verifier and layout number of signals mismatch",
	)
	// ErrMissingKeyHashAdapter ...
	ErrMissingKeyHashAdapter = errors.New("missing key hash adapter")
	// ErrMissingNullifierRegistry ...
	ErrMissingNullifierRegistry = errors.New("missing nullifier registry")
	// ErrMissingCurrency ...
	ErrMissingCurrency = errors.New("missing currency")
	// ErrUnknownRail ...
	ErrUnknownRail = errors.New("unknown payment rail")
)
