package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// Service orchestrates off-ramp checkout sessions, at most one active per
// sell order. It ties together the exchange partner, the wallet subsystem,
// the order repository and the notification boundary.
type Service struct {
	wallet      ports.WalletService
	partner     ports.PartnerClient
	pubsub      ports.SecurePubSub
	repoManager ports.RepoManager

	builder       *proposalBuilder
	serviceName   string
	requoteWindow time.Duration
	tickInterval  time.Duration

	mtx      sync.Mutex
	sessions map[string]*Session
}

// Option tweaks optional service parameters.
type Option func(*Service)

// WithRequoteWindow overrides the synthesized payment window used when the
// partner reports no valid quote expiry.
func WithRequoteWindow(window time.Duration) Option {
	return func(s *Service) {
		s.requoteWindow = window
	}
}

// WithTickInterval overrides the countdown tick interval.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.tickInterval = interval
	}
}

func NewService(
	walletSvc ports.WalletService,
	partnerSvc ports.PartnerClient,
	pubsubSvc ports.SecurePubSub,
	repoManager ports.RepoManager,
	serviceName string,
	priorityChains []string,
	opts ...Option,
) (*Service, error) {
	if walletSvc == nil {
		return nil, fmt.Errorf("missing wallet service")
	}
	if partnerSvc == nil {
		return nil, fmt.Errorf("missing partner client")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if len(serviceName) <= 0 {
		return nil, fmt.Errorf("missing service name")
	}

	svc := &Service{
		wallet:        walletSvc,
		partner:       partnerSvc,
		pubsub:        pubsubSvc,
		repoManager:   repoManager,
		builder:       newProposalBuilder(walletSvc, serviceName, priorityChains),
		serviceName:   serviceName,
		requoteWindow: DefaultRequoteWindow,
		tickInterval:  time.Second,
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(svc)
	}

	go svc.expireStaleOrders()
	return svc, nil
}

// StartCheckout pulls the order with the given external id and runs the
// pipeline up to the user-confirmation stage: detail fetch, floating-quote
// refresh, address validation, deadline selection and proposal build. The
// returned session awaits Confirm. Starting a new session for an order tears
// down any previous one.
func (s *Service) StartCheckout(
	ctx context.Context, req CheckoutRequest,
) (*Session, error) {
	if len(req.ExternalId) <= 0 {
		return nil, domain.ErrOrderMissingExternalId
	}
	if req.UseSendMax && req.SendMaxInfo == nil {
		return nil, ErrMissingSendMaxInfo
	}

	order, err := s.repoManager.OrderRepository().GetOrder(ctx, req.ExternalId)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, domain.ErrOrderIsTerminal
	}

	sess := &Session{
		id:         uuid.New().String(),
		externalId: order.ExternalId,
		svc:        s,
		state:      StateInit,
	}
	if req.UseSendMax {
		sess.sendMaxInfo = req.SendMaxInfo
	}

	s.mtx.Lock()
	if prev, ok := s.sessions[order.ExternalId]; ok {
		go prev.Teardown()
	}
	s.sessions[order.ExternalId] = sess
	s.mtx.Unlock()

	log.Debugf(
		"started checkout session %s for order with id %s",
		sess.id, order.ExternalId,
	)

	if err := sess.prepare(ctx, order); err != nil {
		s.removeSession(sess)
		return nil, err
	}
	return sess, nil
}

// ActiveSession returns the in-flight session for an order, if any.
func (s *Service) ActiveSession(externalId string) (*Session, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	sess, ok := s.sessions[externalId]
	return sess, ok
}

func (s *Service) removeSession(sess *Session) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if cur, ok := s.sessions[sess.externalId]; ok && cur == sess {
		delete(s.sessions, sess.externalId)
	}
}

// expireStaleOrders moves to expired all the pending orders whose payment
// deadline elapsed while the daemon was not running.
func (s *Service) expireStaleOrders() {
	ctx := context.Background()
	orders, err := s.repoManager.OrderRepository().GetPendingOrders(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to fetch pending orders")
		return
	}

	now := time.Now().Unix()
	for i := range orders {
		order := orders[i]
		if !order.IsDeadlinePassed(now) {
			continue
		}
		if err := s.repoManager.OrderRepository().UpdateOrder(
			ctx, order.ExternalId, func(o *domain.Order) (*domain.Order, error) {
				if _, err := o.Expire(); err != nil {
					return nil, err
				}
				return o, nil
			},
		); err != nil {
			log.WithError(err).Warnf(
				"failed to expire order with id %s", order.ExternalId,
			)
			continue
		}
		log.Debugf("expired order with id %s", order.ExternalId)
	}
}

type orderEvent struct {
	ExternalId   string `json:"externalId"`
	Service      string `json:"service"`
	Status       string `json:"status"`
	Txid         string `json:"txid,omitempty"`
	Coin         string `json:"coin,omitempty"`
	FiatAmount   string `json:"fiatAmount,omitempty"`
	FiatCurrency string `json:"fiatCurrency,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (s *Service) publish(topic string, event orderEvent) {
	event.Service = s.serviceName
	message, _ := json.Marshal(event)
	if err := s.pubsub.Publish(topic, string(message)); err != nil {
		log.WithError(err).Warnf(
			"pubsub: failed to publish topic %s for order with id %s",
			topic, event.ExternalId,
		)
		return
	}
	log.Debugf(
		"pubsub: published topic %s for order with id %s",
		topic, event.ExternalId,
	)
}
