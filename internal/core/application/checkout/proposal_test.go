package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

var testPriorityChains = []string{"btc", "eth", "matic"}

func TestBuildProposalWithPriorityFee(t *testing.T) {
	t.Parallel()

	order := newTestOrder(t)
	wallet := newMockWalletService()
	info := mockWalletInfo{chain: "btc", currency: "btc", precision: 8}

	expectedDraft := &ports.TransactionProposal{
		ToAddress: "bc1qtest",
		Amount:    500000,
		Chain:     "btc",
		Coin:      "btc",
		Outputs: []ports.ProposalOutput{{
			ToAddress: "bc1qtest",
			Amount:    500000,
			Message:   "BTC sold on moonpay",
		}},
		Message:                 "BTC sold on moonpay",
		ExcludeUnconfirmedUtxos: true,
		CustomData: map[string]string{
			"externalId": "ext-1",
			"service":    "moonpay",
		},
		FeeLevel: FeeLevelPriority,
	}
	wallet.tx.On("CreateProposal", mock.Anything, "wallet-1", expectedDraft).
		Return(expectedDraft, nil)

	builder := newProposalBuilder(wallet, "moonpay", testPriorityChains)
	proposal, err := builder.build(
		context.Background(), order, info, "bc1qtest", 500000, "", nil,
	)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.True(t, proposal.ExcludeUnconfirmedUtxos)
	require.Equal(t, FeeLevelPriority, proposal.FeeLevel)
	wallet.tx.AssertExpectations(t)
}

func TestBuildProposalForToken(t *testing.T) {
	t.Parallel()

	order := newTestOrder(t)
	wallet := newMockWalletService()
	info := mockWalletInfo{
		chain:        "matic",
		currency:     "usdc",
		precision:    6,
		tokenAddress: "0xtoken",
	}

	// amounts past float precision must survive as exact strings
	amount := uint64(123456789012345678)
	wallet.tx.On(
		"EncodeTokenTransfer",
		mock.Anything, "matic", "0xtoken", "0xrecipient", "123456789012345678",
	).Return("0xdata", nil)
	wallet.tx.On("CreateProposal", mock.Anything, "wallet-1", mock.Anything).
		Return(nil, nil).
		Run(func(args mock.Arguments) {
			draft := args.Get(2).(*ports.TransactionProposal)
			require.Equal(t, "0xtoken", draft.TokenAddress)
			require.Len(t, draft.Outputs, 1)
			require.Equal(t, "123456789012345678", draft.Outputs[0].AmountStr)
			require.Equal(t, "0xdata", draft.Outputs[0].Data)
			require.Equal(t, "USDC sold on moonpay", draft.Message)
			require.Equal(t, FeeLevelPriority, draft.FeeLevel)
		})

	builder := newProposalBuilder(wallet, "moonpay", testPriorityChains)
	_, err := builder.build(
		context.Background(), order, info, "0xrecipient", amount, "", nil,
	)
	require.NoError(t, err)
	wallet.tx.AssertExpectations(t)
}

func TestBuildProposalForTokenWithoutContractAddress(t *testing.T) {
	t.Parallel()

	order := newTestOrder(t)
	wallet := newMockWalletService()
	info := mockWalletInfo{chain: "eth", currency: "usdt", precision: 6}

	builder := newProposalBuilder(wallet, "moonpay", testPriorityChains)
	proposal, err := builder.build(
		context.Background(), order,
		tokenInfoWithoutAddress{info}, "0xrecipient", 1000000, "", nil,
	)
	require.ErrorIs(t, err, ErrProposalBuild)
	require.Nil(t, proposal)
}

// tokenInfoWithoutAddress reports itself as a token but carries no contract
// address.
type tokenInfoWithoutAddress struct {
	mockWalletInfo
}

func (i tokenInfoWithoutAddress) IsToken() bool { return true }

func TestBuildProposalWithSendMax(t *testing.T) {
	t.Parallel()

	order := newTestOrder(t)
	wallet := newMockWalletService()
	info := mockWalletInfo{chain: "btc", currency: "btc", precision: 8}

	sendMaxInfo := &ports.SendMaxInfo{
		Inputs: []ports.ProposalInput{
			{Txid: "in-1", Vout: 0, Value: 300000},
			{Txid: "in-2", Vout: 1, Value: 201000},
		},
		Fee: 1000,
	}

	wallet.tx.On("CreateProposal", mock.Anything, "wallet-1", mock.Anything).
		Return(nil, nil).
		Run(func(args mock.Arguments) {
			draft := args.Get(2).(*ports.TransactionProposal)
			// inputs and fee must be carried over verbatim, no fee level must
			// be set since the fee is already fixed by the max-spend plan
			require.Equal(t, sendMaxInfo.Inputs, draft.Inputs)
			require.Equal(t, uint64(1000), draft.Fee)
			require.Empty(t, draft.FeeLevel)
		})

	builder := newProposalBuilder(wallet, "moonpay", testPriorityChains)
	_, err := builder.build(
		context.Background(), order, info, "bc1qtest", 500000, "", sendMaxInfo,
	)
	require.NoError(t, err)
	wallet.tx.AssertExpectations(t)
}

func TestBuildProposalWithDestinationTag(t *testing.T) {
	t.Parallel()

	order := newTestOrder(t)
	wallet := newMockWalletService()
	info := mockWalletInfo{chain: "xrp", currency: "xrp", precision: 6}

	wallet.tx.On("CreateProposal", mock.Anything, "wallet-1", mock.Anything).
		Return(nil, nil).
		Run(func(args mock.Arguments) {
			draft := args.Get(2).(*ports.TransactionProposal)
			require.Equal(t, "12345", draft.DestinationTag)
			require.Empty(t, draft.FeeLevel)
		})

	builder := newProposalBuilder(wallet, "moonpay", testPriorityChains)
	_, err := builder.build(
		context.Background(), order, info, "rAddress", 5000000, "12345", nil,
	)
	require.NoError(t, err)
	wallet.tx.AssertExpectations(t)
}

func TestAmountToSmallestUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amount    decimal.Decimal
		precision int
		expected  uint64
	}{
		{
			name:      "btc_sats",
			amount:    decimal.NewFromFloat(0.005),
			precision: 8,
			expected:  500000,
		},
		{
			name:      "usdc_units",
			amount:    decimal.NewFromFloat(1.5),
			precision: 6,
			expected:  1500000,
		},
		{
			name:      "rounds_sub_unit_dust",
			amount:    decimal.RequireFromString("0.000000015"),
			precision: 8,
			expected:  2,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(
				t, tt.expected, amountToSmallestUnit(tt.amount, tt.precision),
			)
		})
	}
}

func newTestOrder(t *testing.T) *domain.Order {
	order, err := domain.NewOrder(
		"ext-1", "tx-1", "wallet-1", "bc1qtest",
		"btc", "btc", decimal.NewFromFloat(0.005),
		"USD", decimal.NewFromInt(100), "ach_bank_transfer",
	)
	require.NoError(t, err)
	return order
}
