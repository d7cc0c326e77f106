package webhookpubsub

import "errors"

var (
	// ErrNullStore specifies that a subscription store is required.
	ErrNullStore = errors.New("subscription store must not be null")
	// ErrInvalidTopic is returned whenever attempting to subscribe to or
	// publish for an unknown topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrSubscriptionNotFound is returned when unsubscribing an id unknown for
	// the given topic.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
