package webhookpubsub

import "errors"

var (
	// ErrMissingTopic ...
	ErrMissingTopic = errors.New("missing subscription topic")
	// ErrInvalidEndpoint is returned if the webhook endpoint is not an
	// absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid http URL")
	// ErrSubscriptionNotFound ...
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")
)
