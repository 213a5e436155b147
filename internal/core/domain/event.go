package domain

import (
	"github.com/google/uuid"
)

// EventType ...
type EventType string

const (
	EventDepositCreated        EventType = "DEPOSIT_CREATED"
	EventDepositIncreased      EventType = "DEPOSIT_INCREASED"
	EventDepositWithdrawn      EventType = "DEPOSIT_WITHDRAWN"
	EventDepositClosed         EventType = "DEPOSIT_CLOSED"
	EventConversionRateUpdated EventType = "CONVERSION_RATE_UPDATED"
	EventAccountRegistered     EventType = "ACCOUNT_REGISTERED"
	EventListUpdated           EventType = "LIST_UPDATED"
	EventIntentSignalled       EventType = "INTENT_SIGNALLED"
	EventIntentCancelled       EventType = "INTENT_CANCELLED"
	EventIntentExpired         EventType = "INTENT_EXPIRED"
	EventIntentFulfilled       EventType = "INTENT_FULFILLED"
	EventIntentReleased        EventType = "INTENT_RELEASED"
	EventNullifierConsumed     EventType = "NULLIFIER_CONSUMED"
	EventBalanceFunded         EventType = "BALANCE_FUNDED"
)

// Event is an entry of the append-only ledger of the escrow state changes.
// Sequence is assigned by the repository when the event is appended.
type Event struct {
	ID        string
	Sequence  uint64
	Type      EventType
	Timestamp int64
	DepositID uint64
	IntentID  string
	Account   string
	Amount    uint64
	Data      map[string]string
}

// NewEvent ...
func NewEvent(eventType EventType, timestamp int64) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: timestamp,
		Data:      make(map[string]string),
	}
}

// EventFilter restricts the events returned by the repository. Zero values
// match everything.
type EventFilter struct {
	Type      EventType
	DepositID uint64
	IntentID  string
	// Only events with a greater sequence are returned.
	AfterSequence uint64
	Limit         int
}

// Match ...
func (f EventFilter) Match(e Event) bool {
	if f.Type != "" && f.Type != e.Type {
		return false
	}
	if f.DepositID > 0 && f.DepositID != e.DepositID {
		return false
	}
	if f.IntentID != "" && f.IntentID != e.IntentID {
		return false
	}
	return e.Sequence > f.AfterSequence
}
