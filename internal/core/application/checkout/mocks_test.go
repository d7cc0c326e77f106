package checkout

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// **** PartnerClient ****

type mockPartnerClient struct {
	mock.Mock
}

func (m *mockPartnerClient) GetSellTransactionDetails(
	ctx context.Context, transactionId, externalId string,
) (*domain.SellTransactionDetails, error) {
	args := m.Called(ctx, transactionId, externalId)

	var res *domain.SellTransactionDetails
	if a := args.Get(0); a != nil {
		res = a.(*domain.SellTransactionDetails)
	}
	return res, args.Error(1)
}

func (m *mockPartnerClient) GetSellQuote(
	ctx context.Context, req ports.SellQuoteRequest,
) (*domain.SellQuote, error) {
	args := m.Called(ctx, req)

	var res *domain.SellQuote
	if a := args.Get(0); a != nil {
		res = a.(*domain.SellQuote)
	}
	return res, args.Error(1)
}

// **** WalletService ****

type mockWalletService struct {
	mock.Mock
	account *mockAccount
	tx      *mockTransaction
}

func newMockWalletService() *mockWalletService {
	return &mockWalletService{
		account: &mockAccount{},
		tx:      &mockTransaction{},
	}
}

func (m *mockWalletService) Account() ports.Account {
	return m.account
}

func (m *mockWalletService) Transaction() ports.Transaction {
	return m.tx
}

func (m *mockWalletService) Close() {}

type mockAccount struct {
	mock.Mock
}

func (m *mockAccount) GetWalletInfo(
	ctx context.Context, walletId string,
) (ports.WalletInfo, error) {
	args := m.Called(ctx, walletId)

	var res ports.WalletInfo
	if a := args.Get(0); a != nil {
		res = a.(ports.WalletInfo)
	}
	return res, args.Error(1)
}

func (m *mockAccount) NormalizeAddress(
	ctx context.Context, walletId, address string,
) (string, error) {
	args := m.Called(ctx, walletId, address)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

type mockTransaction struct {
	mock.Mock
}

func (m *mockTransaction) CreateProposal(
	ctx context.Context, walletId string, draft *ports.TransactionProposal,
) (*ports.TransactionProposal, error) {
	args := m.Called(ctx, walletId, draft)

	var res *ports.TransactionProposal
	if a := args.Get(0); a != nil {
		res = a.(*ports.TransactionProposal)
	}
	return res, args.Error(1)
}

func (m *mockTransaction) EncodeTokenTransfer(
	ctx context.Context, chain, tokenAddress, recipient, amount string,
) (string, error) {
	args := m.Called(ctx, chain, tokenAddress, recipient, amount)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockTransaction) SignAndBroadcast(
	ctx context.Context, walletId string, proposal *ports.TransactionProposal,
) (string, error) {
	args := m.Called(ctx, walletId, proposal)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

// **** WalletInfo ****

type mockWalletInfo struct {
	chain        string
	currency     string
	precision    int
	tokenAddress string
}

func (m mockWalletInfo) GetChain() string        { return m.chain }
func (m mockWalletInfo) GetCurrency() string     { return m.currency }
func (m mockWalletInfo) GetPrecision() int       { return m.precision }
func (m mockWalletInfo) GetTokenAddress() string { return m.tokenAddress }
func (m mockWalletInfo) IsToken() bool           { return len(m.tokenAddress) > 0 }

// **** SecurePubSub ****

type mockPubSub struct {
	mock.Mock
}

func (m *mockPubSub) Subscribe(topic, endpoint, secret string) (string, error) {
	args := m.Called(topic, endpoint, secret)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockPubSub) Unsubscribe(topic, id string) error {
	args := m.Called(topic, id)
	return args.Error(0)
}

func (m *mockPubSub) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res
}

func (m *mockPubSub) Publish(topic, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}
