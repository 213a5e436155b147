package domain

import (
	"errors"
	"fmt"
)

// Deposit errors
var (
	// ErrDepositInvalidDepositor is returned if the depositor is not a valid address.
	ErrDepositInvalidDepositor = errors.New("invalid depositor address")
	// ErrDepositInvalidToken is returned if the deposited token is not a valid address.
	ErrDepositInvalidToken = errors.New("invalid token address")
	// ErrDepositInvalidAmount is returned for zero amounts.
	ErrDepositInvalidAmount = errors.New("deposit amount must be greater than zero")
	// ErrDepositMissingVerifiers ...
	ErrDepositMissingVerifiers = errors.New("deposit must accept at least one verifier")
	// ErrDepositInvalidConversionRate is returned for non-positive rates.
	ErrDepositInvalidConversionRate = errors.New("conversion rate must be greater than zero")
	// ErrDepositMissingConversionRate is returned when an accepted verifier
	// has no conversion rate for its currency.
	ErrDepositMissingConversionRate = errors.New("missing conversion rate for currency")
	// ErrDepositNotActive is returned when operating on a withdrawn deposit.
	ErrDepositNotActive = errors.New("deposit is not active")
	// ErrDepositUnknownIntent ...
	ErrDepositUnknownIntent = errors.New("intent does not belong to deposit")
	// ErrInsufficientLiquidity is returned when the requested amount exceeds
	// the available liquidity of the deposit.
	ErrInsufficientLiquidity = errors.New("insufficient deposit liquidity")
	// ErrMaxIntentsReached is returned when the deposit already reached its
	// cap of concurrent open intents.
	ErrMaxIntentsReached = errors.New("max number of open intents reached for deposit")
	// ErrHasOpenIntents is returned when withdrawing a deposit with still
	// unexpired open intents.
	ErrHasOpenIntents = errors.New("deposit has open intents")
	// ErrDepositBelowMinimum ...
	ErrDepositBelowMinimum = errors.New("deposit amount is below minimum")
	// ErrMaxDepositsReached is returned when the depositor already reached
	// the cap of active deposits.
	ErrMaxDepositsReached = errors.New("max number of active deposits reached")
)

// Intent errors
var (
	// ErrIntentInvalidTaker ...
	ErrIntentInvalidTaker = errors.New("invalid taker address")
	// ErrIntentInvalidRecipient ...
	ErrIntentInvalidRecipient = errors.New("invalid recipient address")
	// ErrIntentInvalidAmount ...
	ErrIntentInvalidAmount = errors.New("intent amount must be greater than zero")
	// ErrIntentInvalidExpiry ...
	ErrIntentInvalidExpiry = errors.New("intent expiry must follow its creation")
	// ErrIntentNotOpen is returned when transitioning an intent already
	// in a terminal status.
	ErrIntentNotOpen = errors.New("intent is not open")
	// ErrIntentNotExpired is returned when pruning an intent before its
	// expiration time.
	ErrIntentNotExpired = errors.New("intent expiration time not reached")
	// ErrIntentExpired is returned when fulfilling an expired intent.
	ErrIntentExpired = errors.New("intent is expired")
	// ErrDuplicateIntent is returned if the taker already holds an open intent.
	ErrDuplicateIntent = errors.New("taker already has an open intent")
	// ErrBelowMinimum ...
	ErrBelowMinimum = errors.New("intent amount is below minimum")
	// ErrAboveMaximum ...
	ErrAboveMaximum = errors.New("intent amount is above maximum")
	// ErrCooldownActive is returned when the taker settled an intent on the
	// same rail within the cooldown window.
	ErrCooldownActive = errors.New("taker cooldown period has not elapsed")
)

// Settlement fact errors. All of them wrap ErrFactMismatch.
var (
	// ErrFactMismatch is the parent of every mismatch between the facts
	// extracted from a proof and the intent they are meant to settle.
	ErrFactMismatch = errors.New("settlement facts do not match intent")
	// ErrIntentHashMismatch ...
	ErrIntentHashMismatch = fmt.Errorf("%w: intent hash", ErrFactMismatch)
	// ErrPaymentBeforeIntent ...
	ErrPaymentBeforeIntent = fmt.Errorf("%w: payment predates intent", ErrFactMismatch)
	// ErrPayeeMismatch ...
	ErrPayeeMismatch = fmt.Errorf("%w: payee id hash is not the depositor's", ErrFactMismatch)
	// ErrPayerMismatch ...
	ErrPayerMismatch = fmt.Errorf("%w: payer id hash is not the taker's", ErrFactMismatch)
	// ErrInsufficientPayment ...
	ErrInsufficientPayment = fmt.Errorf("%w: payment amount too low", ErrFactMismatch)
)

// Proof validity errors. They are fatal to the call and never retried, a
// fresh proof is required.
var (
	// ErrInvalidProof is returned when the main proof doesn't verify.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrInvalidBodyHashProof is returned when the body hash proof doesn't
	// verify.
	ErrInvalidBodyHashProof = errors.New("invalid body hash proof")
	// ErrInvalidIntermediateOrOutputHash is returned when the hash state
	// shared by the main and body hash proofs differs between them.
	ErrInvalidIntermediateOrOutputHash = errors.New("invalid intermediate or output hash")
	// ErrInvalidMailserverKeyHash is returned when the email signer is not
	// trusted for the rail.
	ErrInvalidMailserverKeyHash = errors.New("invalid mailserver key hash")
	// ErrInvalidEmailFromAddress is returned when the email sender is not
	// the one expected for the rail.
	ErrInvalidEmailFromAddress = errors.New("invalid email from address")
	// ErrInvalidSignals is returned for public signal vectors of the wrong
	// length or with fields that can't be decoded.
	ErrInvalidSignals = errors.New("invalid public signals")
)

// Processor errors
var (
	// ErrUnknownVerifier is returned when no processor is registered with
	// the given id.
	ErrUnknownVerifier = errors.New("unknown verifier")
	// ErrVerifierNotAccepted is returned when the deposit doesn't accept
	// settlements through the given verifier.
	ErrVerifierNotAccepted = errors.New("verifier not accepted by deposit")
	// ErrInvalidKeyHash ...
	ErrInvalidKeyHash = errors.New("invalid mailserver key hash format")
	// ErrKeyHashAlreadyAdded ...
	ErrKeyHashAlreadyAdded = errors.New("mailserver key hash already added")
	// ErrKeyHashNotFound ...
	ErrKeyHashNotFound = errors.New("mailserver key hash not found")
	// ErrInvalidSenderAddress is returned when setting an empty email
	// sender address.
	ErrInvalidSenderAddress = errors.New("invalid email sender address")
	// ErrInvalidTimestampBuffer ...
	ErrInvalidTimestampBuffer = errors.New("timestamp buffer must not be negative")
)

// Account errors
var (
	// ErrAccountInvalidAddress ...
	ErrAccountInvalidAddress = errors.New("invalid account address")
	// ErrAccountInvalidIDHash ...
	ErrAccountInvalidIDHash = errors.New("invalid account id hash")
	// ErrAccountNotRegistered ...
	ErrAccountNotRegistered = errors.New("account is not registered")
	// ErrAlreadyRegistered is returned when the id hash is bound to another
	// address.
	ErrAlreadyRegistered = errors.New("account id already registered")
	// ErrTakerDenied is returned when the depositor denied the taker.
	ErrTakerDenied = errors.New("taker is denied by depositor")
	// ErrTakerNotAllowed is returned when the depositor enabled the
	// allowlist and the taker is not in it.
	ErrTakerNotAllowed = errors.New("taker is not allowlisted by depositor")
)

// Nullifier errors
var (
	// ErrNullifierAlreadyUsed is returned when registering a nullifier twice.
	ErrNullifierAlreadyUsed = errors.New("nullifier has already been used")
	// ErrNullifierInvalid ...
	ErrNullifierInvalid = errors.New("invalid nullifier")
	// ErrNullifierWriterNotAllowed is returned when a non allowlisted writer
	// tries to add a nullifier.
	ErrNullifierWriterNotAllowed = errors.New("caller is not a nullifier writer")
)

// Authorization errors
var (
	// ErrUnauthorized is returned when the caller is not allowed to perform
	// the operation.
	ErrUnauthorized = errors.New("caller is not authorized")
)

// Params errors
var (
	// ErrInvalidParams ...
	ErrInvalidParams = errors.New("invalid escrow params")
)

// Balance errors
var (
	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Repository errors
var (
	// ErrDepositNotFound ...
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrIntentNotFound ...
	ErrIntentNotFound = errors.New("intent not found")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrNullifierNotFound ...
	ErrNullifierNotFound = errors.New("nullifier not found")
	// ErrDepositAlreadyExists ...
	ErrDepositAlreadyExists = errors.New("deposit already exists")
	// ErrIntentAlreadyExists ...
	ErrIntentAlreadyExists = errors.New("intent already exists")
	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = errors.New("account already exists")
)
