package webhookpubsub

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"

	"github.com/offramp-network/offramp-daemon/internal/core/ports"
	dbbadger "github.com/offramp-network/offramp-daemon/internal/infrastructure/storage/db/badger"
)

func newTestPubSub(t *testing.T) ports.SecurePubSub {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(repoManager.Close)

	svc, err := NewWebhookPubSubService(repoManager.PubSubStore())
	require.NoError(t, err)
	return svc
}

func TestSubscribeAndList(t *testing.T) {
	svc := newTestPubSub(t)

	id, err := svc.Subscribe(
		ports.TopicPaymentSent, "http://localhost:9000/hook", randstr.Hex(20),
	)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	subs := svc.ListSubscriptionsForTopic(ports.TopicPaymentSent)
	require.Len(t, subs, 1)
	require.Equal(t, id, subs[0].Id())
	require.Equal(t, ports.TopicPaymentSent, subs[0].Topic())
	require.True(t, subs[0].IsSecured())

	// hooks for AnyTopic show up for every topic
	otherId, err := svc.Subscribe(ports.AnyTopic, "http://localhost:9000/all", "")
	require.NoError(t, err)

	subs = svc.ListSubscriptionsForTopic(ports.TopicPaymentSent)
	require.Len(t, subs, 2)

	subs = svc.ListSubscriptionsForTopic(ports.TopicSellExpired)
	require.Len(t, subs, 1)
	require.Equal(t, otherId, subs[0].Id())
	require.False(t, subs[0].IsSecured())
}

func TestFailingSubscribe(t *testing.T) {
	svc := newTestPubSub(t)

	_, err := svc.Subscribe("unknown.topic", "http://localhost:9000/hook", "")
	require.ErrorIs(t, err, ErrInvalidTopic)

	_, err = svc.Subscribe(ports.TopicPaymentSent, "not a url", "")
	require.Error(t, err)
}

func TestUnsubscribe(t *testing.T) {
	svc := newTestPubSub(t)

	id, err := svc.Subscribe(
		ports.TopicOrderUpdated, "http://localhost:9000/hook", "",
	)
	require.NoError(t, err)

	err = svc.Unsubscribe(ports.TopicPaymentSent, id)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)

	require.NoError(t, svc.Unsubscribe(ports.TopicOrderUpdated, id))
	require.Empty(t, svc.ListSubscriptionsForTopic(ports.TopicOrderUpdated))

	err = svc.Unsubscribe(ports.TopicOrderUpdated, id)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestPublish(t *testing.T) {
	svc := newTestPubSub(t)

	var invoked int32
	message := `{"externalId":"ext-1","status":"sent"}`

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&invoked, 1)

			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			auth := r.Header.Get("Authorization")
			require.True(t, strings.HasPrefix(auth, "Bearer "))

			buf, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.Equal(t, message, string(buf))
		},
	))
	defer srv.Close()

	_, err := svc.Subscribe(ports.TopicPaymentSent, srv.URL, randstr.Hex(20))
	require.NoError(t, err)

	require.NoError(t, svc.Publish(ports.TopicPaymentSent, message))
	require.Equal(t, int32(1), atomic.LoadInt32(&invoked))

	// no subscriptions for the topic is not an error
	require.NoError(t, svc.Publish(ports.TopicSellExpired, message))
	require.Equal(t, int32(1), atomic.LoadInt32(&invoked))

	require.ErrorIs(t, svc.Publish("unknown.topic", message), ErrInvalidTopic)
}

func TestPublishReportsEndpointFailure(t *testing.T) {
	svc := newTestPubSub(t)

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	))
	defer srv.Close()

	_, err := svc.Subscribe(ports.TopicSellFailed, srv.URL, "")
	require.NoError(t, err)

	require.Error(t, svc.Publish(ports.TopicSellFailed, "{}"))
}
