package ports

// AnyTopic is the topic of subscribers interested in every event.
const AnyTopic = "*"

// EventPublisher forwards committed ledger events to some external channel.
type EventPublisher interface {
	// Publish publishes the given JSON encoded message for a certain topic.
	Publish(topic string, message []byte) error
	Close()
}
