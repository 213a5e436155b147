// Package natspubsub publishes the events of the escrow on a NATS subject
// per event type.
package natspubsub

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/pkg/circuitbreaker"
)

const (
	// DefaultSubjectPrefix ...
	DefaultSubjectPrefix = "ramp.events"

	connectTimeout = 10 * time.Second
	reconnectWait  = 5 * time.Second
)

type Service struct {
	conn   *nats.Conn
	prefix string
	cb     *gobreaker.CircuitBreaker
}

// NewService connects to the NATS server at url. Events are published on
// subjects made of the given prefix and the lowercase event type.
func NewService(url, prefix string) (*Service, error) {
	if len(url) <= 0 {
		return nil, fmt.Errorf("missing nats url")
	}
	if len(prefix) <= 0 {
		prefix = DefaultSubjectPrefix
	}

	conn, err := nats.Connect(
		url,
		nats.Name("rampd"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	return &Service{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
		cb:     circuitbreaker.NewCircuitBreaker("nats"),
	}, nil
}

func (s *Service) Publish(topic string, message []byte) error {
	subject := Subject(s.prefix, topic)
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.conn.Publish(subject, message)
	})
	return err
}

func (s *Service) Close() {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
}

// Subject returns the subject of the given topic. ports.AnyTopic maps to
// the wildcard matching every event.
func Subject(prefix, topic string) string {
	if topic == ports.AnyTopic {
		return prefix + ".>"
	}
	return prefix + "." + strings.ToLower(topic)
}
