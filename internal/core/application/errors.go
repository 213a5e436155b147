package application

import "errors"

var (
	// ErrUnknownDBType ...
	ErrUnknownDBType = errors.New("db type not supported")
	// ErrMissingOwner ...
	ErrMissingOwner = errors.New("missing or invalid owner address")
	// ErrMissingEscrowAddress ...
	ErrMissingEscrowAddress = errors.New("missing or invalid escrow address")
	// ErrMissingRailVerifier is returned when a rail is enabled without the
	// verifying keys of its circuits.
	ErrMissingRailVerifier = errors.New("missing verifier for payment rail")
)
