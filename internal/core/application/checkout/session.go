package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// Session is a single checkout run for one sell order. It exclusively owns
// the in-memory quote and transaction proposal for its whole lifetime,
// progresses strictly sequentially through the pipeline stages, and is
// invalidated the instant its payment countdown expires.
type Session struct {
	id          string
	externalId  string
	svc         *Service
	sendMaxInfo *ports.SendMaxInfo

	mtx              sync.RWMutex
	state            State
	torndown         bool
	walletId         string
	coin             string
	precision        int
	details          *domain.SellTransactionDetails
	proposal         *ports.TransactionProposal
	displayAmount    decimal.Decimal
	displayCurrency  string
	totalExchangeFee decimal.Decimal
	requoteNotice    bool
	deadline         time.Time
	countdown        *countdown
}

// prepare runs Init through AwaitConfirm. Cached order data is never trusted
// for the authoritative address and amounts, they are always re-fetched from
// the partner first.
func (s *Session) prepare(ctx context.Context, order *domain.Order) error {
	s.mtx.Lock()
	s.walletId = order.WalletId
	s.coin = order.CryptoCurrency
	s.displayAmount = order.FiatReceivingAmount
	s.displayCurrency = order.FiatCurrency
	s.mtx.Unlock()

	s.setState(StateQuoteFetch)

	details, err := s.svc.partner.GetSellTransactionDetails(
		ctx, order.TransactionId, order.ExternalId,
	)
	if err != nil {
		log.WithError(err).Debugf(
			"failed to fetch sell transaction details for order with id %s",
			order.ExternalId,
		)
		if !errors.Is(err, domain.ErrPartnerRejected) &&
			!errors.Is(err, domain.ErrPartnerUnavailable) {
			err = domain.ErrPartnerUnavailable
		}
		return s.fail(reasonPartnerDetails, err)
	}

	payoutMethod := order.PaymentMethod

	if details.IsFloating() {
		// floating amounts drift with market price, re-derive them from a
		// fresh quote instead of displaying the values stored at order time
		if len(details.PayoutMethod) > 0 &&
			details.PayoutMethod != order.PaymentMethod {
			log.Debugf(
				"payout method of order with id %s updated from %s to %s",
				order.ExternalId, order.PaymentMethod, details.PayoutMethod,
			)
		}
		if len(details.PayoutMethod) > 0 {
			payoutMethod = details.PayoutMethod
		}

		baseAmount := details.BaseCurrencyAmount
		if baseAmount.LessThanOrEqual(decimal.Zero) {
			baseAmount = order.CryptoAmount
		}
		quoteCurrency := order.FiatCurrency
		if len(quoteCurrency) <= 0 {
			quoteCurrency = DefaultFiatCurrency
		}

		quote, err := s.svc.partner.GetSellQuote(ctx, ports.SellQuoteRequest{
			CurrencyAbbreviation: order.CryptoCurrency,
			QuoteCurrencyCode:    quoteCurrency,
			BaseCurrencyAmount:   baseAmount,
			PayoutMethod:         payoutMethod,
		})
		if err != nil || !quote.HasAmount() {
			// degrade to the previously known values, a refresh failure must
			// not block a still-valid cached quote from being shown
			log.WithError(err).Debugf(
				"floating quote of order with id %s could not be refreshed, "+
					"previously saved values will be displayed", order.ExternalId,
			)
		} else if details.QuoteCurrencyAmount == nil {
			details.QuoteCurrencyAmount = quote.QuoteCurrencyAmount
			if len(quote.QuoteCurrency) > 0 {
				details.QuoteCurrency = quote.QuoteCurrency
			}
			details.FeeAmount = quote.FeeAmount
			details.ExtraFeeAmount = quote.ExtraFeeAmount
		}
	}

	s.setState(StateAddressValidate)

	// security hard stop: funds must never be silently redirected to an
	// address different from the one the order was created against
	if order.ToAddress != details.DepositAddress {
		log.Warnf(
			"destination address of order with id %s does not match the "+
				"deposit address expected by the partner", order.ExternalId,
		)
		return s.fail(reasonAddressMismatch, ErrAddressMismatch)
	}

	displayAmount := order.FiatReceivingAmount
	displayCurrency := order.FiatCurrency
	if details.QuoteCurrencyAmount != nil {
		displayAmount = *details.QuoteCurrencyAmount
	}
	if len(details.QuoteCurrency) > 0 {
		displayCurrency = details.QuoteCurrency
	}

	deadline := s.selectDeadline(details)

	if err := s.svc.repoManager.OrderRepository().UpdateOrder(
		ctx, order.ExternalId, func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Quote(
				displayAmount, displayCurrency, payoutMethod,
			); err != nil {
				return nil, err
			}
			if err := o.SchedulePayment(deadline.Unix()); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf(
			"failed to persist quote of order with id %s", order.ExternalId,
		)
	}

	s.mtx.Lock()
	s.details = details
	s.displayAmount = displayAmount
	s.displayCurrency = displayCurrency
	s.totalExchangeFee = details.TotalFee()
	s.deadline = deadline
	s.mtx.Unlock()

	s.startCountdown(deadline)

	info, err := s.svc.wallet.Account().GetWalletInfo(ctx, order.WalletId)
	if err != nil {
		log.WithError(err).Warnf(
			"failed to fetch wallet info for order with id %s", order.ExternalId,
		)
		return s.fail(reasonCreateTx, fmt.Errorf("%w: %s", ErrProposalBuild, err))
	}

	s.mtx.Lock()
	s.precision = info.GetPrecision()
	s.mtx.Unlock()

	// canonical chain encoding, eg. cashaddr for BCH
	toAddress, err := s.svc.wallet.Account().NormalizeAddress(
		ctx, order.WalletId, order.ToAddress,
	)
	if err != nil {
		return s.fail(reasonCreateTx, fmt.Errorf("%w: %s", ErrProposalBuild, err))
	}
	if toAddress != order.ToAddress {
		log.Debugf(
			"normalized destination address of order with id %s: %s",
			order.ExternalId, toAddress,
		)
	}

	amount := amountToSmallestUnit(order.CryptoAmount, info.GetPrecision())

	s.setState(StateProposalBuild)

	proposal, err := s.svc.builder.build(
		ctx, order, info, toAddress, amount, details.DepositTag, s.sendMaxInfo,
	)
	if err != nil {
		log.WithError(err).Warnf(
			"failed to build transaction proposal for order with id %s",
			order.ExternalId,
		)
		return s.fail(reasonCreateTx, err)
	}

	if s.IsTornDown() {
		return ErrSessionTornDown
	}
	if s.IsExpired() {
		return ErrPaymentExpired
	}

	if err := s.svc.repoManager.OrderRepository().UpdateOrder(
		ctx, order.ExternalId, func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Propose(); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf(
			"failed to persist proposal of order with id %s", order.ExternalId,
		)
	}

	s.mtx.Lock()
	s.proposal = proposal
	s.mtx.Unlock()

	s.setState(StateAwaitConfirm)

	s.svc.publish(ports.TopicOrderUpdated, orderEvent{
		ExternalId:   s.externalId,
		Status:       statusString(domain.OrderStatusCodeProposed),
		Coin:         s.coin,
		FiatAmount:   displayAmount.StringFixed(2),
		FiatCurrency: displayCurrency,
	})
	return nil
}

// selectDeadline derives the payment deadline from the partner details. When
// the partner signals the original quote already expired, a short local
// window is synthesized and the user is asked to accept the re-quote. The
// same fallback applies when no expiry is reported at all.
func (s *Session) selectDeadline(
	details *domain.SellTransactionDetails,
) time.Time {
	if details.QuoteExpiredNoticeAt != nil {
		log.Debugf(
			"original quote of order with id %s expired at %s, the user must "+
				"accept the partner's re-quote", s.externalId,
			details.QuoteExpiredNoticeAt.Format(time.RFC3339),
		)
		s.mtx.Lock()
		s.requoteNotice = true
		s.mtx.Unlock()
		return time.Now().Add(s.svc.requoteWindow)
	}
	if details.QuoteExpiresAt != nil {
		return *details.QuoteExpiresAt
	}

	log.Debugf(
		"no quote expiry present for order with id %s, setting custom "+
			"expiration time", s.externalId,
	)
	return time.Now().Add(s.svc.requoteWindow)
}

// Confirm is the explicit user-confirmation suspension point. It rejects
// confirms arriving after expiry or teardown, then signs and broadcasts the
// built proposal and reconciles the order record with the broadcast outcome.
func (s *Session) Confirm(ctx context.Context) error {
	s.mtx.Lock()
	if s.torndown {
		s.mtx.Unlock()
		return ErrSessionTornDown
	}
	if s.state == StateExpired ||
		(s.countdown != nil && s.countdown.isExpired()) {
		s.state = StateExpired
		s.mtx.Unlock()
		return ErrPaymentExpired
	}
	if s.state != StateAwaitConfirm {
		state := s.state
		s.mtx.Unlock()
		return fmt.Errorf("%w: session is %s", ErrNotAwaitingConfirmation, state)
	}
	s.state = StateSigning
	proposal := s.proposal
	walletId := s.walletId
	s.mtx.Unlock()

	log.Debugf(
		"confirm received for order with id %s, signing payment", s.externalId,
	)

	s.setState(StateBroadcasting)

	txid, err := s.svc.wallet.Transaction().SignAndBroadcast(
		ctx, walletId, proposal,
	)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidPassword) ||
			errors.Is(err, ports.ErrPasswordCanceled) ||
			errors.Is(err, ports.ErrBiometricCheckFailed) {
			// recoverable: reset the confirmation control, the user can retry
			// within the same session as long as the order has not expired
			s.setState(StateAwaitConfirm)
			return fmt.Errorf("%v: %w", ErrSigning, err)
		}

		log.WithError(err).Warnf(
			"failed to broadcast payment for order with id %s", s.externalId,
		)
		s.fail(reasonBroadcast, nil)
		return fmt.Errorf("%w: %s", ErrBroadcast, err)
	}

	// the transaction is on the network at this point: reconcile the order
	// record even if the session was torn down meanwhile, but discard the
	// session-level result
	s.setState(StateReconcile)

	s.mtx.RLock()
	fiatAmount := s.displayAmount
	fiatCurrency := s.displayCurrency
	totalFee := s.totalExchangeFee
	s.mtx.RUnlock()

	if err := s.svc.repoManager.OrderRepository().UpdateOrder(
		context.Background(), s.externalId,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Send(
				txid, fiatAmount, totalFee, time.Now().UnixMilli(),
			); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf(
			"failed to persist broadcast outcome of order with id %s",
			s.externalId,
		)
	}

	log.Debugf(
		"payment for order with id %s broadcasted: %s", s.externalId, txid,
	)

	event := orderEvent{
		ExternalId:   s.externalId,
		Status:       statusString(domain.OrderStatusCodeSent),
		Txid:         txid,
		Coin:         s.coin,
		FiatAmount:   fiatAmount.StringFixed(2),
		FiatCurrency: fiatCurrency,
	}
	s.svc.publish(ports.TopicPaymentSent, event)
	s.svc.publish(ports.TopicOrderUpdated, event)

	s.stopCountdown()

	if s.IsTornDown() {
		return ErrSessionTornDown
	}

	s.setState(StateDone)
	s.svc.removeSession(s)
	return nil
}

// Teardown cancels the countdown and invalidates the session. In-flight
// network calls are allowed to complete but their results are discarded.
// Safe to call multiple times.
func (s *Session) Teardown() {
	s.mtx.Lock()
	if s.torndown {
		s.mtx.Unlock()
		return
	}
	s.torndown = true
	s.mtx.Unlock()

	s.stopCountdown()
	s.svc.removeSession(s)
	log.Debugf(
		"checkout session %s for order with id %s torn down",
		s.id, s.externalId,
	)
}

// fail persists the failure, publishes the failure event with the
// originating reason and returns the classified cause to the caller.
func (s *Session) fail(reason string, cause error) error {
	s.mtx.Lock()
	if s.state.isTerminal() {
		s.mtx.Unlock()
		return cause
	}
	s.state = StateFailed
	s.mtx.Unlock()

	s.stopCountdown()

	if err := s.svc.repoManager.OrderRepository().UpdateOrder(
		context.Background(), s.externalId,
		func(o *domain.Order) (*domain.Order, error) {
			o.Fail(reason)
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf(
			"failed to persist failure of order with id %s", s.externalId,
		)
	}

	s.svc.publish(ports.TopicSellFailed, orderEvent{
		ExternalId: s.externalId,
		Status:     statusString(domain.OrderStatusCodeFailed),
		Coin:       s.coin,
		Reason:     reason,
	})
	s.svc.removeSession(s)
	return cause
}

// setState moves the session forward. Terminal states are never overwritten,
// an expiry fired by the countdown mid-stage must stick.
func (s *Session) setState(state State) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.state.isTerminal() {
		return
	}
	s.state = state
}

func (s *Session) startCountdown(deadline time.Time) {
	s.mtx.Lock()
	// exactly one active tick loop per session
	if s.countdown != nil {
		s.countdown.stop()
	}
	cd := newCountdown(deadline, s.svc.tickInterval, s.handleExpiry)
	s.countdown = cd
	s.mtx.Unlock()

	cd.start()
}

func (s *Session) stopCountdown() {
	s.mtx.RLock()
	cd := s.countdown
	s.mtx.RUnlock()
	if cd != nil {
		cd.stop()
	}
}

// handleExpiry is invoked by the countdown exactly once, when the payment
// window elapses. A signing already in progress is permitted to complete,
// funds are committed by the user at that point.
func (s *Session) handleExpiry() {
	s.mtx.Lock()
	if s.torndown || s.state >= StateSigning {
		s.mtx.Unlock()
		return
	}
	s.state = StateExpired
	s.mtx.Unlock()

	log.Debugf("payment window of order with id %s expired", s.externalId)

	if err := s.svc.repoManager.OrderRepository().UpdateOrder(
		context.Background(), s.externalId,
		func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Expire(); err != nil {
				return nil, err
			}
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf(
			"failed to expire order with id %s", s.externalId,
		)
	}

	s.svc.publish(ports.TopicSellExpired, orderEvent{
		ExternalId: s.externalId,
		Status:     statusString(domain.OrderStatusCodeExpired),
		Coin:       s.coin,
		Reason:     reasonExpired,
	})
	s.svc.removeSession(s)
}

// Id returns the session id.
func (s *Session) Id() string {
	return s.id
}

// ExternalId returns the external id of the order being checked out.
func (s *Session) ExternalId() string {
	return s.externalId
}

// State returns the stage the session is currently in.
func (s *Session) State() State {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.state
}

// IsExpired returns whether the payment window elapsed.
func (s *Session) IsExpired() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.state == StateExpired {
		return true
	}
	return s.countdown != nil && s.countdown.isExpired()
}

// IsTornDown returns whether the session has been torn down.
func (s *Session) IsTornDown() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.torndown
}

// RemainingTime returns the mm:ss display string of the countdown, or the
// terminal Expired display.
func (s *Session) RemainingTime() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.countdown == nil {
		return ""
	}
	return s.countdown.remainingTime()
}

// ExpiresAt returns the payment deadline of the session.
func (s *Session) ExpiresAt() time.Time {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.deadline
}

// RequoteNotice returns whether the partner reported the original quote as
// expired and the user must accept the re-quote to proceed.
func (s *Session) RequoteNotice() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.requoteNotice
}

// Proposal returns the built transaction proposal, nil before ProposalBuild
// completes.
func (s *Session) Proposal() *ports.TransactionProposal {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.proposal
}

// DisplayAmount returns the fiat total to receive and its currency.
func (s *Session) DisplayAmount() (decimal.Decimal, string) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.displayAmount, s.displayCurrency
}

// TotalExchangeFee returns the total fee charged by the exchange partner.
func (s *Session) TotalExchangeFee() decimal.Decimal {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.totalExchangeFee
}

// SendMaxNotice returns the miner fee, in wallet units, deducted from the
// swept total when the session was started with a send-max plan.
func (s *Session) SendMaxNotice() (decimal.Decimal, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.sendMaxInfo == nil {
		return decimal.Zero, false
	}
	fee := decimal.NewFromBigInt(
		new(big.Int).SetUint64(s.sendMaxInfo.Fee), 0,
	).Shift(int32(-s.precision))
	return fee, true
}
