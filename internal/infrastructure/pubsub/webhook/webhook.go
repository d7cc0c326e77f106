package webhookpubsub

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Webhook is a persisted subscription: a POST endpoint to invoke whenever a
// message is published for its topic, optionally signed with its secret.
type Webhook struct {
	ID       string `json:"id"`
	Event    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

func NewWebhook(topic, endpoint, secret string) (*Webhook, error) {
	if _, ok := knownTopics[topic]; !ok {
		return nil, ErrInvalidTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("webhook endpoint must be a valid URI")
	}
	id := uuid.New().String()
	return &Webhook{id, topic, endpoint, secret}, nil
}

func (h *Webhook) Topic() string {
	return h.Event
}

func (h *Webhook) Id() string {
	return h.ID
}

func (h *Webhook) NotifyAt() string {
	return h.Endpoint
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}
