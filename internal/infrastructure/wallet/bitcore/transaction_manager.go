package bitcorewallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// sidecar error codes for the interactive signing flow
const (
	codeInvalidPassword      = "INVALID_PASSWORD"
	codePasswordCanceled     = "PASSWORD_CANCELED"
	codeBiometricCheckFailed = "BIOMETRIC_CHECK_FAILED"
)

type txManager struct {
	svc *service
}

func (m *txManager) CreateProposal(
	ctx context.Context, walletId string, draft *ports.TransactionProposal,
) (*ports.TransactionProposal, error) {
	path := fmt.Sprintf("/v1/wallets/%s/proposals", url.PathEscape(walletId))
	status, resp, err := m.svc.post(ctx, path, draft)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", status, string(resp))
	}

	var proposal ports.TransactionProposal
	if err := json.Unmarshal(resp, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (m *txManager) EncodeTokenTransfer(
	ctx context.Context, chain, tokenAddress, recipient, amount string,
) (string, error) {
	path := fmt.Sprintf("/v1/chains/%s/token-transfers", url.PathEscape(chain))
	status, resp, err := m.svc.post(ctx, path, map[string]string{
		"tokenAddress": tokenAddress,
		"recipient":    recipient,
		"amount":       amount,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", status, string(resp))
	}

	var payload struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return "", err
	}
	if len(payload.Data) <= 0 {
		return "", fmt.Errorf("empty token transfer data for chain %s", chain)
	}
	return payload.Data, nil
}

func (m *txManager) SignAndBroadcast(
	ctx context.Context, walletId string, proposal *ports.TransactionProposal,
) (string, error) {
	path := fmt.Sprintf("/v1/wallets/%s/broadcast", url.PathEscape(walletId))
	status, resp, err := m.svc.post(ctx, path, proposal)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", parseSigningError(status, resp)
	}

	var payload struct {
		Txid string `json:"txid"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return "", err
	}
	if len(payload.Txid) <= 0 {
		return "", fmt.Errorf("wallet returned no txid for broadcast")
	}
	return payload.Txid, nil
}

// parseSigningError maps the sidecar's interactive-signing error codes to
// the sentinel errors the checkout pipeline treats as recoverable.
func parseSigningError(status int, resp []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return fmt.Errorf("status %d: %s", status, string(resp))
	}

	switch payload.Code {
	case codeInvalidPassword:
		return ports.ErrInvalidPassword
	case codePasswordCanceled:
		return ports.ErrPasswordCanceled
	case codeBiometricCheckFailed:
		return ports.ErrBiometricCheckFailed
	}

	if len(payload.Message) > 0 {
		return fmt.Errorf("status %d: %s", status, payload.Message)
	}
	return fmt.Errorf("status %d: %s", status, string(resp))
}
