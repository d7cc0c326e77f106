package ports

const (
	// AnyTopic subscribes to every published topic.
	AnyTopic = "*"
	// TopicPaymentSent is published when a sell payment is broadcasted.
	TopicPaymentSent = "sell.payment_sent"
	// TopicOrderUpdated is published whenever an order record changes status.
	TopicOrderUpdated = "sell.order_updated"
	// TopicSellFailed is published on every fatal transition, carrying the
	// originating reason for support diagnosis.
	TopicSellFailed = "sell.failed"
	// TopicSellExpired is published when the payment window of a checkout
	// session elapses.
	TopicSellExpired = "sell.expired"
)

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// SecurePubSub defines the methods of the notification boundary. UI and
// analytics collaborators subscribe to order events without the core
// depending on any rendering technology.
type SecurePubSub interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id for a topic.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the info of all the subscribers for a
	// certain topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish publishes a message for a certain topic. All the subscribers
	// for such topic will receive the message.
	Publish(topic, message string) error
}
