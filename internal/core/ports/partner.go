package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

// SellQuoteRequest is the payload of a floating-flow quote refresh.
type SellQuoteRequest struct {
	CurrencyAbbreviation string
	QuoteCurrencyCode    string
	BaseCurrencyAmount   decimal.Decimal
	PayoutMethod         string
}

// PartnerClient is the boundary towards the exchange partner API. The bearer
// credential is attached by the implementation, never by the core.
type PartnerClient interface {
	// GetSellTransactionDetails fetches the current quote and status of a
	// sell order. Fails with domain.ErrPartnerUnavailable on network/5xx
	// errors and domain.ErrPartnerRejected on 4xx or malformed payloads.
	GetSellTransactionDetails(
		ctx context.Context, transactionId, externalId string,
	) (*domain.SellTransactionDetails, error)
	// GetSellQuote requests a fresh floating-flow quote. A partial failure
	// yields a quote without amount rather than an error, so that callers can
	// fall back to previously known values.
	GetSellQuote(
		ctx context.Context, req SellQuoteRequest,
	) (*domain.SellQuote, error)
}
