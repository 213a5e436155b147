package pubsub

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const queueSize = 1024

// Service forwards the committed ledger events to every configured
// publisher. Publishing is best effort: the ledger in the event repository
// is the source of truth and failures are only logged.
// Events are queued and published in order by a single worker, so that
// slow publishers never hold back the callers.
type Service struct {
	publishers []ports.EventPublisher

	lock   sync.Mutex
	closed bool
	queue  chan []domain.Event
	done   chan struct{}
}

func NewService(publishers ...ports.EventPublisher) *Service {
	list := make([]ports.EventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			list = append(list, p)
		}
	}
	svc := &Service{
		publishers: list,
		queue:      make(chan []domain.Event, queueSize),
		done:       make(chan struct{}),
	}
	go svc.listen()
	return svc
}

func (s *Service) Publishers() []ports.EventPublisher {
	return s.publishers
}

// PublishEvents enqueues the events without blocking. Events are dropped
// with a warning if the queue is full or the service is closed.
func (s *Service) PublishEvents(events ...domain.Event) {
	if len(s.publishers) == 0 || len(events) == 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		log.Warnf("pubsub closed, dropping %d events", len(events))
		return
	}
	select {
	case s.queue <- events:
	default:
		log.Warnf(
			"pubsub queue full, dropping events from sequence %d",
			events[0].Sequence,
		)
	}
}

// Close publishes the queued events, then closes every publisher.
func (s *Service) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.lock.Unlock()

	<-s.done
	for _, p := range s.publishers {
		p.Close()
	}
}

func (s *Service) listen() {
	defer close(s.done)
	for events := range s.queue {
		s.publish(events)
	}
}

// publish sends every event, in order, on the topic named after its type.
func (s *Service) publish(events []domain.Event) {
	for _, event := range events {
		topic := string(event.Type)
		message, err := json.Marshal(getEventPayload(event))
		if err != nil {
			log.WithError(err).Warnf("failed to serialize event %s", event.ID)
			continue
		}

		eg := &errgroup.Group{}
		for _, p := range s.publishers {
			p := p
			eg.Go(func() error {
				return p.Publish(topic, message)
			})
		}
		if err := eg.Wait(); err != nil {
			log.WithError(err).Warnf(
				"failed to publish event %s for topic %s", event.ID, topic,
			)
		}
	}
}

type eventPayload struct {
	ID        string            `json:"id"`
	Sequence  uint64            `json:"sequence"`
	Event     string            `json:"event"`
	Timestamp int64             `json:"timestamp"`
	Date      string            `json:"date"`
	DepositID uint64            `json:"deposit_id,omitempty"`
	IntentID  string            `json:"intent_id,omitempty"`
	Account   string            `json:"account,omitempty"`
	Amount    uint64            `json:"amount,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}
