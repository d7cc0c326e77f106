package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the different statuses that a sell order can assume.
type OrderStatus struct {
	Code   int
	Failed bool
}

// Order is the data structure representing a sell order entity. It is keyed
// by the ExternalId assigned by the exchange partner when the order was
// created, which correlates the local record with the partner's one.
type Order struct {
	ExternalId          string
	TransactionId       string
	WalletId            string
	ToAddress           string
	CryptoCurrency      string
	Chain               string
	CryptoAmount        decimal.Decimal
	FiatCurrency        string
	FiatReceivingAmount decimal.Decimal
	PaymentMethod       string
	Status              OrderStatus
	PaymentDeadline     int64
	FailureReason       string
	TxSentId            string
	TxSentOn            int64
	FiatAmount          decimal.Decimal
	TotalFee            decimal.Decimal
	CreationTime        int64
}

// NewOrder returns a sell order in Created status after validating the
// required identifiers.
func NewOrder(
	externalId, transactionId, walletId, toAddress string,
	cryptoCurrency, chain string, cryptoAmount decimal.Decimal,
	fiatCurrency string, fiatReceivingAmount decimal.Decimal,
	paymentMethod string,
) (*Order, error) {
	if len(externalId) <= 0 {
		return nil, ErrOrderMissingExternalId
	}
	if len(transactionId) <= 0 {
		return nil, ErrOrderMissingTransactionId
	}
	if len(walletId) <= 0 {
		return nil, ErrOrderMissingWalletId
	}
	if len(toAddress) <= 0 {
		return nil, ErrOrderMissingAddress
	}
	if cryptoAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrOrderInvalidAmount
	}

	return &Order{
		ExternalId:          externalId,
		TransactionId:       transactionId,
		WalletId:            walletId,
		ToAddress:           toAddress,
		CryptoCurrency:      cryptoCurrency,
		Chain:               chain,
		CryptoAmount:        cryptoAmount,
		FiatCurrency:        fiatCurrency,
		FiatReceivingAmount: fiatReceivingAmount,
		PaymentMethod:       paymentMethod,
		Status:              OrderStatus{Code: OrderStatusCodeCreated},
		CreationTime:        time.Now().Unix(),
	}, nil
}

// Quote brings an order from the Created to the Quoted status, storing the
// authoritative fiat amounts returned by the exchange partner. Floating-flow
// refreshes may call this again before the proposal is built, overwriting the
// displayed amounts with the fresher ones.
func (o *Order) Quote(
	fiatAmount decimal.Decimal, fiatCurrency, payoutMethod string,
) (bool, error) {
	if o.Status.Code >= OrderStatusCodeProposed {
		return true, nil
	}
	if o.IsTerminal() {
		return false, ErrOrderIsTerminal
	}

	if fiatAmount.GreaterThan(decimal.Zero) {
		o.FiatReceivingAmount = fiatAmount
	}
	if len(fiatCurrency) > 0 {
		o.FiatCurrency = fiatCurrency
	}
	if len(payoutMethod) > 0 {
		o.PaymentMethod = payoutMethod
	}
	o.Status.Code = OrderStatusCodeQuoted
	return true, nil
}

// Propose brings an order from the Quoted to the Proposed status once a
// transaction proposal matching the quote has been built.
func (o *Order) Propose() (bool, error) {
	if o.Status.Code >= OrderStatusCodeProposed && !o.IsTerminal() {
		return true, nil
	}
	if o.IsTerminal() {
		return false, ErrOrderIsTerminal
	}
	if o.Status.Code != OrderStatusCodeQuoted {
		return false, ErrOrderMustBeQuoted
	}

	o.Status.Code = OrderStatusCodeProposed
	return true, nil
}

// Send brings an order from the Proposed to the Sent status, overwriting any
// pending estimates with the final broadcast data. Sent is final for this
// pipeline, the record is retained for audit and history.
func (o *Order) Send(
	txid string, fiatAmount, totalFee decimal.Decimal, sentOn int64,
) (bool, error) {
	if o.Status.Code == OrderStatusCodeSent {
		return true, nil
	}
	if o.IsTerminal() {
		return false, ErrOrderIsTerminal
	}
	if o.Status.Code != OrderStatusCodeProposed {
		return false, ErrOrderMustBeProposed
	}
	if len(txid) <= 0 {
		return false, ErrOrderMissingTxid
	}

	o.TxSentId = txid
	o.TxSentOn = sentOn
	if fiatAmount.GreaterThan(decimal.Zero) {
		o.FiatAmount = fiatAmount
	}
	o.TotalFee = totalFee
	o.PaymentDeadline = 0
	o.Status.Code = OrderStatusCodeSent
	return true, nil
}

// SchedulePayment sets the deadline within which the payment must be
// initiated before the quote expires.
func (o *Order) SchedulePayment(deadline int64) error {
	if o.IsTerminal() {
		return ErrOrderIsTerminal
	}
	if deadline <= 0 {
		return ErrOrderInvalidDeadline
	}
	o.PaymentDeadline = deadline
	return nil
}

// Fail marks the order as Failed with the originating reason. Failed is
// terminal, further transitions are rejected.
func (o *Order) Fail(reason string) {
	if o.IsTerminal() {
		return
	}
	o.Status.Code = OrderStatusCodeFailed
	o.Status.Failed = true
	o.FailureReason = reason
}

// Expire brings the order to the Expired status. Expired is terminal, a new
// checkout session must start fresh rather than reusing stale state.
func (o *Order) Expire() (bool, error) {
	if o.Status.Code == OrderStatusCodeExpired {
		return true, nil
	}
	if o.IsTerminal() {
		return false, ErrOrderIsTerminal
	}

	o.Status.Code = OrderStatusCodeExpired
	return true, nil
}

// IsCreated returns whether the order is in Created status.
func (o *Order) IsCreated() bool {
	return o.Status.Code == OrderStatusCodeCreated
}

// IsQuoted returns whether the order is in Quoted status.
func (o *Order) IsQuoted() bool {
	return o.Status.Code == OrderStatusCodeQuoted
}

// IsProposed returns whether the order is in Proposed status.
func (o *Order) IsProposed() bool {
	return o.Status.Code == OrderStatusCodeProposed
}

// IsSent returns whether the order is in Sent status.
func (o *Order) IsSent() bool {
	return o.Status.Code == OrderStatusCodeSent
}

// IsFailed returns whether the order is in Failed status.
func (o *Order) IsFailed() bool {
	return o.Status.Code == OrderStatusCodeFailed
}

// IsExpired returns whether the order is in Expired status.
func (o *Order) IsExpired() bool {
	return o.Status.Code == OrderStatusCodeExpired
}

// IsTerminal returns whether the order reached a final status.
func (o *Order) IsTerminal() bool {
	return o.Status.Code == OrderStatusCodeSent ||
		o.Status.Code == OrderStatusCodeFailed ||
		o.Status.Code == OrderStatusCodeExpired
}

// IsDeadlinePassed returns whether the scheduled payment deadline has passed.
func (o *Order) IsDeadlinePassed(now int64) bool {
	return o.PaymentDeadline > 0 && now > o.PaymentDeadline
}
