package bitcorewallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

const defaultRequestTimeout = 30 * time.Second

// service talks to a bitcore wallet sidecar over its REST interface. Key
// material never leaves the sidecar, the daemon only submits drafts and
// receives signed artifacts back.
type service struct {
	apiURL     string
	httpClient *http.Client

	accountManager *accountManager
	txManager      *txManager
}

func NewService(apiURL string) (ports.WalletService, error) {
	if len(apiURL) <= 0 {
		return nil, fmt.Errorf("missing wallet address")
	}

	svc := &service{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	svc.accountManager = &accountManager{svc}
	svc.txManager = &txManager{svc}

	if err := svc.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return svc, nil
}

func (s *service) Account() ports.Account {
	return s.accountManager
}

func (s *service) Transaction() ports.Transaction {
	return s.txManager
}

func (s *service) Close() {
	s.httpClient.CloseIdleConnections()
}

func (s *service) healthCheck() error {
	status, resp, err := s.get(context.Background(), "/v1/status")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d: %s", status, string(resp))
	}
	return nil
}

func (s *service) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, s.apiURL+path, nil,
	)
	if err != nil {
		return 0, nil, err
	}
	return s.doRequest(req)
}

func (s *service) post(
	ctx context.Context, path string, payload interface{},
) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.apiURL+path, bytes.NewReader(body),
	)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.doRequest(req)
}

func (s *service) doRequest(req *http.Request) (int, []byte, error) {
	res, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return -1, nil, err
	}
	return res.StatusCode, buf, nil
}
