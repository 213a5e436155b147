// Package webhookpubsub publishes the events of the escrow to the http
// endpoints subscribed to their topics.
package webhookpubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout = 15 * time.Second
	tokenTTL       = time.Minute
)

type Service struct {
	store      *store
	httpClient *client
	cb         *gobreaker.CircuitBreaker
}

// NewService returns a webhook publisher storing its subscriptions under
// datadir, or in memory if empty.
func NewService(datadir string, logger badger.Logger) (*Service, error) {
	store, err := newStore(datadir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening webhook db: %w", err)
	}

	return &Service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhook"),
	}, nil
}

// Subscribe registers the endpoint for the events of the given topic, or
// for all of them with ports.AnyTopic.
func (s *Service) Subscribe(topic, endpoint, secret string) (*Subscription, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return nil, err
	}
	if err := s.store.add(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Unsubscribe(id string) error {
	return s.store.remove(id)
}

// ListSubscriptions returns the subscriptions for the given topic, or all
// of them if empty. Secrets are never returned.
func (s *Service) ListSubscriptions(topic string) ([]Subscription, error) {
	subs, err := s.store.list(topic)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].IsSecured() {
			subs[i].Secret = "********"
		}
	}
	return subs, nil
}

// Publish posts the message to every endpoint subscribed to the topic or to
// any topic.
func (s *Service) Publish(topic string, message []byte) error {
	subs, err := s.store.list(topic)
	if err != nil {
		return err
	}
	if topic != ports.AnyTopic {
		anySubs, err := s.store.list(ports.AnyTopic)
		if err != nil {
			return err
		}
		subs = append(subs, anySubs...)
	}

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return s.doRequest(sub, topic, message) })
	}
	return eg.Wait()
}

func (s *Service) Close() {
	//nolint
	s.store.close()
}

func (s *Service) doRequest(sub Subscription, topic string, payload []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		var bearer string
		if sub.IsSecured() {
			now := time.Now()
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject:   sub.ID,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			})
			signed, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			bearer = signed
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := s.httpClient.deliver(
			ctx, sub.Endpoint, topic, bearer, payload,
		); err != nil {
			return nil, fmt.Errorf("webhook %s: %w", sub.ID, err)
		}
		return nil, nil
	})
	return err
}
