package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
)

// Subscription is a webhook invoked with the events of a topic. Secured
// subscriptions are called with a bearer token signed with their secret.
type Subscription struct {
	ID       string `json:"id"`
	Topic    string `json:"topic" badgerhold:"index"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

func NewSubscription(topic, endpoint, secret string) (*Subscription, error) {
	if len(topic) <= 0 {
		return nil, ErrMissingTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	return &Subscription{uuid.New().String(), topic, endpoint, secret}, nil
}

func (s *Subscription) IsSecured() bool {
	return len(s.Secret) > 0
}
