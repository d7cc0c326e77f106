package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellTransactionDetails is the validated, explicitly-tagged shape of the
// partner's transaction-detail payload. Optional fields are pointers, the
// parsing layer rejects payloads missing any of the required ones.
type SellTransactionDetails struct {
	TransactionId        string
	ExternalId           string
	Status               string
	Flow                 string
	DepositAddress       string
	DepositTag           string
	BaseCurrencyAmount   decimal.Decimal
	QuoteCurrencyAmount  *decimal.Decimal
	QuoteCurrency        string
	FeeAmount            decimal.Decimal
	ExtraFeeAmount       decimal.Decimal
	PayoutMethod         string
	QuoteExpiresAt       *time.Time
	QuoteExpiredNoticeAt *time.Time
}

// IsFloating returns whether the fiat amounts of the details drift with
// market price and need re-deriving from a fresh quote.
func (d *SellTransactionDetails) IsFloating() bool {
	return d.Flow == FlowFloating
}

// TotalFee returns the total exchange fee charged by the partner.
func (d *SellTransactionDetails) TotalFee() decimal.Decimal {
	return d.FeeAmount.Add(d.ExtraFeeAmount)
}

// SellQuote is the transient value returned by a floating-flow quote refresh.
// QuoteCurrencyAmount may be nil on partial failures, in which case callers
// fall back to the previously known amounts instead of aborting.
type SellQuote struct {
	QuoteCurrencyAmount *decimal.Decimal
	QuoteCurrency       string
	FeeAmount           decimal.Decimal
	ExtraFeeAmount      decimal.Decimal
	PayoutMethod        string
}

// HasAmount returns whether the refreshed amount is actually present.
func (q *SellQuote) HasAmount() bool {
	return q != nil && q.QuoteCurrencyAmount != nil &&
		q.QuoteCurrencyAmount.GreaterThan(decimal.Zero)
}

// TotalFee returns the total exchange fee of the refreshed quote.
func (q *SellQuote) TotalFee() decimal.Decimal {
	return q.FeeAmount.Add(q.ExtraFeeAmount)
}
