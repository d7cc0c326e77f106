package bitcorewallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

type accountManager struct {
	svc *service
}

type walletInfo struct {
	Chain        string `json:"chain"`
	Currency     string `json:"coin"`
	Precision    int    `json:"precision"`
	TokenAddress string `json:"tokenAddress"`
}

func (i walletInfo) GetChain() string        { return i.Chain }
func (i walletInfo) GetCurrency() string     { return i.Currency }
func (i walletInfo) GetPrecision() int       { return i.Precision }
func (i walletInfo) GetTokenAddress() string { return i.TokenAddress }
func (i walletInfo) IsToken() bool           { return len(i.TokenAddress) > 0 }

func (m *accountManager) GetWalletInfo(
	ctx context.Context, walletId string,
) (ports.WalletInfo, error) {
	path := fmt.Sprintf("/v1/wallets/%s", url.PathEscape(walletId))
	status, resp, err := m.svc.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", status, string(resp))
	}

	var info walletInfo
	if err := json.Unmarshal(resp, &info); err != nil {
		return nil, err
	}
	if info.Precision <= 0 {
		return nil, fmt.Errorf("wallet %s reported invalid precision", walletId)
	}
	return info, nil
}

func (m *accountManager) NormalizeAddress(
	ctx context.Context, walletId, address string,
) (string, error) {
	path := fmt.Sprintf("/v1/wallets/%s/addresses/normalize", url.PathEscape(walletId))
	status, resp, err := m.svc.post(ctx, path, map[string]string{
		"address": address,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", status, string(resp))
	}

	var payload struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return "", err
	}
	if len(payload.Address) <= 0 {
		return address, nil
	}
	return payload.Address, nil
}
