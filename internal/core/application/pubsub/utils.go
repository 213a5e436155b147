package pubsub

import (
	"time"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func getEventPayload(event domain.Event) eventPayload {
	return eventPayload{
		ID:        event.ID,
		Sequence:  event.Sequence,
		Event:     string(event.Type),
		Timestamp: event.Timestamp,
		Date:      time.Unix(event.Timestamp, 0).UTC().Format(time.RFC3339),
		DepositID: event.DepositID,
		IntentID:  event.IntentID,
		Account:   event.Account,
		Amount:    event.Amount,
		Data:      event.Data,
	}
}
