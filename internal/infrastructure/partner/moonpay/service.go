package moonpaypartner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

const (
	defaultRequestTimeout = 15 * time.Second
	// maxRequestsPerSecond caps the outgoing call rate towards the partner
	// API to stay within its published limits.
	maxRequestsPerSecond = 4
)

type service struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// NewService returns a PartnerClient backed by the MoonPay sell API. The api
// key is attached to every request, callers never handle credentials.
func NewService(apiURL, apiKey string) (ports.PartnerClient, error) {
	if len(apiURL) <= 0 {
		return nil, fmt.Errorf("missing partner api url")
	}
	if len(apiKey) <= 0 {
		return nil, fmt.Errorf("missing partner api key")
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("invalid partner api url: %s", err)
	}

	return &service{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		cb:         newCircuitBreaker(),
		limiter:    rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1),
	}, nil
}

func (s *service) GetSellTransactionDetails(
	ctx context.Context, transactionId, externalId string,
) (*domain.SellTransactionDetails, error) {
	endpoint := fmt.Sprintf(
		"%s/v3/sell_transactions/%s", s.apiURL, url.PathEscape(transactionId),
	)
	if len(transactionId) <= 0 {
		endpoint = fmt.Sprintf(
			"%s/v3/sell_transactions/ext/%s", s.apiURL, url.PathEscape(externalId),
		)
	}

	body, err := s.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp sellTransactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPartnerRejected, err)
	}
	details, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPartnerRejected, err)
	}
	return details, nil
}

func (s *service) GetSellQuote(
	ctx context.Context, req ports.SellQuoteRequest,
) (*domain.SellQuote, error) {
	query := url.Values{}
	query.Set("quoteCurrencyCode", req.QuoteCurrencyCode)
	query.Set("baseCurrencyAmount", req.BaseCurrencyAmount.String())
	if len(req.PayoutMethod) > 0 {
		query.Set("payoutMethod", req.PayoutMethod)
	}
	endpoint := fmt.Sprintf(
		"%s/v3/currencies/%s/sell_quote?%s",
		s.apiURL, url.PathEscape(req.CurrencyAbbreviation), query.Encode(),
	)

	body, err := s.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp sellQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPartnerRejected, err)
	}
	return resp.toDomain(), nil
}

// doRequest performs a rate-limited GET through the circuit breaker and
// classifies failures: network errors and 5xx responses mean the partner is
// unavailable, 4xx responses mean the request was rejected.
func (s *service) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPartnerUnavailable, err)
	}

	body, err := s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrPartnerRejected, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", s.apiKey))

		res, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrPartnerUnavailable, err)
		}
		defer res.Body.Close()

		buf, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrPartnerUnavailable, err)
		}

		if res.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf(
				"%w: status %d: %s",
				domain.ErrPartnerUnavailable, res.StatusCode, string(buf),
			)
		}
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf(
				"%w: status %d: %s",
				domain.ErrPartnerRejected, res.StatusCode, string(buf),
			)
		}
		return buf, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: %s", domain.ErrPartnerUnavailable, err)
		}
		return nil, err
	}
	return body.([]byte), nil
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "moonpay",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn("partner api seems down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info("checking partner api status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Info("partner api seems ok, restart allowing requests")
			}
		},
	})
}
