package moonpaypartner

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

type sellTransactionResponse struct {
	Id                      string           `json:"id"`
	ExternalTransactionId   string           `json:"externalTransactionId"`
	Status                  string           `json:"status"`
	Flow                    string           `json:"flow"`
	DepositWalletAddress    string           `json:"depositWalletAddress"`
	DepositWalletAddressTag string           `json:"depositWalletAddressTag"`
	BaseCurrencyAmount      decimal.Decimal  `json:"baseCurrencyAmount"`
	QuoteCurrencyAmount     *decimal.Decimal `json:"quoteCurrencyAmount"`
	QuoteCurrencyCode       string           `json:"quoteCurrencyCode"`
	FeeAmount               decimal.Decimal  `json:"feeAmount"`
	ExtraFeeAmount          decimal.Decimal  `json:"extraFeeAmount"`
	PayoutMethod            string           `json:"payoutMethod"`
	QuoteExpiresAt          string           `json:"quoteExpiresAt"`
	QuoteExpiredEmailSentAt string           `json:"quoteExpiredEmailSentAt"`
}

// toDomain validates the payload shape. Responses missing the transaction id
// or the deposit address are rejected upfront, the checkout pipeline must
// never run against a partially-parsed detail set.
func (r sellTransactionResponse) toDomain() (*domain.SellTransactionDetails, error) {
	if len(r.Id) <= 0 {
		return nil, fmt.Errorf("missing transaction id")
	}
	if len(r.Status) <= 0 {
		return nil, fmt.Errorf("missing transaction status")
	}
	if len(r.DepositWalletAddress) <= 0 {
		return nil, fmt.Errorf("missing deposit wallet address")
	}

	flow := r.Flow
	if len(flow) <= 0 {
		flow = domain.FlowFixed
	}

	details := &domain.SellTransactionDetails{
		TransactionId:       r.Id,
		ExternalId:          r.ExternalTransactionId,
		Status:              r.Status,
		Flow:                flow,
		DepositAddress:      r.DepositWalletAddress,
		DepositTag:          r.DepositWalletAddressTag,
		BaseCurrencyAmount:  r.BaseCurrencyAmount,
		QuoteCurrencyAmount: r.QuoteCurrencyAmount,
		QuoteCurrency:       r.QuoteCurrencyCode,
		FeeAmount:           r.FeeAmount,
		ExtraFeeAmount:      r.ExtraFeeAmount,
		PayoutMethod:        r.PayoutMethod,
	}

	if len(r.QuoteExpiresAt) > 0 {
		expiresAt, err := time.Parse(time.RFC3339, r.QuoteExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid quote expiry: %s", err)
		}
		details.QuoteExpiresAt = &expiresAt
	}
	if len(r.QuoteExpiredEmailSentAt) > 0 {
		noticeAt, err := time.Parse(time.RFC3339, r.QuoteExpiredEmailSentAt)
		if err != nil {
			return nil, fmt.Errorf("invalid quote expiry notice: %s", err)
		}
		details.QuoteExpiredNoticeAt = &noticeAt
	}
	return details, nil
}

type sellQuoteResponse struct {
	QuoteCurrencyAmount *decimal.Decimal `json:"quoteCurrencyAmount"`
	QuoteCurrencyCode   string           `json:"quoteCurrencyCode"`
	FeeAmount           decimal.Decimal  `json:"feeAmount"`
	ExtraFeeAmount      decimal.Decimal  `json:"extraFeeAmount"`
	PayoutMethod        string           `json:"payoutMethod"`
}

func (r sellQuoteResponse) toDomain() *domain.SellQuote {
	return &domain.SellQuote{
		QuoteCurrencyAmount: r.QuoteCurrencyAmount,
		QuoteCurrency:       r.QuoteCurrencyCode,
		FeeAmount:           r.FeeAmount,
		ExtraFeeAmount:      r.ExtraFeeAmount,
		PayoutMethod:        r.PayoutMethod,
	}
}
