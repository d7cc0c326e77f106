package webhookpubsub

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/timshannon/badgerhold/v4"
	"golang.org/x/sync/errgroup"

	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

const defaultRequestTimeout = 10 * time.Second

var knownTopics = map[string]struct{}{
	ports.AnyTopic:          {},
	ports.TopicPaymentSent:  {},
	ports.TopicOrderUpdated: {},
	ports.TopicSellFailed:   {},
	ports.TopicSellExpired:  {},
}

type webhookService struct {
	store      *badgerhold.Store
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a SecurePubSub that invokes the registered
// webhook endpoints on every published message. Subscriptions are persisted
// in the given store and survive daemon restarts.
func NewWebhookPubSubService(store *badgerhold.Store) (ports.SecurePubSub, error) {
	if store == nil {
		return nil, ErrNullStore
	}

	return &webhookService{
		store:      store,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		cb:         newCircuitBreaker(),
	}, nil
}

func (ws *webhookService) Subscribe(topic, endpoint, secret string) (string, error) {
	hook, err := NewWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	// the id generation is random enough to assume 2 hooks with the same id
	// are the same hook, duplicates are silently skipped
	if err := ws.store.Insert(hook.ID, hook); err != nil {
		if err != badgerhold.ErrKeyExists {
			return "", err
		}
	}
	return hook.ID, nil
}

func (ws *webhookService) Unsubscribe(topic, id string) error {
	if _, ok := knownTopics[topic]; !ok {
		return ErrInvalidTopic
	}

	var hook Webhook
	if err := ws.store.Get(id, &hook); err != nil {
		if err == badgerhold.ErrNotFound {
			return ErrSubscriptionNotFound
		}
		return err
	}
	if topic != ports.AnyTopic && hook.Event != topic {
		return ErrSubscriptionNotFound
	}

	return ws.store.Delete(id, Webhook{})
}

func (ws *webhookService) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	hooks := ws.hooksForTopic(topic)
	subs := make([]ports.Subscription, 0, len(hooks))
	for i := range hooks {
		subs = append(subs, &hooks[i])
	}
	return subs
}

// Publish makes a POST request to every endpoint registered for the topic.
// A circuit breaker maximizes the chances that every webhook gets invoked
// without errors even when some endpoints misbehave.
func (ws *webhookService) Publish(topic, message string) error {
	if _, ok := knownTopics[topic]; !ok {
		return ErrInvalidTopic
	}

	hooks := ws.hooksForTopic(topic)

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(&hook, message) })
	}
	return eg.Wait()
}

// hooksForTopic returns the hooks registered for the given topic, plus those
// subscribed to every topic.
func (ws *webhookService) hooksForTopic(topic string) []Webhook {
	var hooks []Webhook
	query := badgerhold.Where("Event").Eq(topic)
	if topic != ports.AnyTopic {
		query = query.Or(badgerhold.Where("Event").Eq(ports.AnyTopic))
	}
	if err := ws.store.Find(&hooks, query); err != nil {
		log.WithError(err).Warn("pubsub: failed to fetch webhooks from store")
		return nil
	}
	return hooks
}

func (ws *webhookService) doRequest(hook *Webhook, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(
			http.MethodPost, hook.Endpoint, strings.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if hook.IsSecured() {
			token := jwt.New(jwt.SigningMethodHS256)
			tokenString, _ := token.SignedString([]byte(hook.Secret))
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tokenString))
		}

		res, err := ws.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			buf, _ := io.ReadAll(res.Body)
			return nil, fmt.Errorf(
				"endpoint %s replied with status %d: %s",
				hook.Endpoint, res.StatusCode, string(buf),
			)
		}
		return nil, nil
	})

	return err
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "webhook",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
	})
}
