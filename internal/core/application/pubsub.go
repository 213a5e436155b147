package application

import (
	"github.com/zkramp/ramp-daemon/internal/core/application/pubsub"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type PubSubService interface {
	Publishers() []ports.EventPublisher
	PublishEvents(events ...domain.Event)
	Close()
}

func NewPubSubService(publishers ...ports.EventPublisher) PubSubService {
	return pubsub.NewService(publishers...)
}
