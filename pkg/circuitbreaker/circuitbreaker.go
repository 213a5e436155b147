package circuitbreaker

import (
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Thresholds shared by the breakers guarding event delivery.
var (
	MinRequestsBeforeTrip = 10
	FailureRatioToTrip    = 0.6
)

// NewCircuitBreaker guards the named event sink. It opens after more than
// MinRequestsBeforeTrip requests with at least FailureRatioToTrip of them
// failing.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MinRequestsBeforeTrip &&
				ratio >= FailureRatioToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			entry := log.WithFields(log.Fields{
				"sink": name, "from": from.String(), "to": to.String(),
			})
			if to == gobreaker.StateOpen {
				entry.Warn("event sink unreachable, dropping deliveries")
				return
			}
			entry.Info("event sink breaker changed state")
		},
	})
}
