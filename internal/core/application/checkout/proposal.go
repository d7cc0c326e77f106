package checkout

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// proposalBuilder converts a quoted order and its destination address into a
// chain-specific transaction proposal, delegating the final creation to the
// wallet subsystem.
type proposalBuilder struct {
	wallet         ports.WalletService
	serviceName    string
	priorityChains map[string]struct{}
}

func newProposalBuilder(
	wallet ports.WalletService, serviceName string, priorityChains []string,
) *proposalBuilder {
	chains := make(map[string]struct{}, len(priorityChains))
	for _, c := range priorityChains {
		chains[strings.ToLower(c)] = struct{}{}
	}
	return &proposalBuilder{wallet, serviceName, chains}
}

func (b *proposalBuilder) build(
	ctx context.Context,
	order *domain.Order,
	info ports.WalletInfo,
	toAddress string,
	amount uint64,
	destinationTag string,
	sendMaxInfo *ports.SendMaxInfo,
) (*ports.TransactionProposal, error) {
	message := fmt.Sprintf(
		"%s sold on %s", strings.ToUpper(info.GetCurrency()), b.serviceName,
	)

	draft := &ports.TransactionProposal{
		ToAddress: toAddress,
		Amount:    amount,
		Chain:     info.GetChain(),
		Coin:      info.GetCurrency(),
		Outputs: []ports.ProposalOutput{{
			ToAddress: toAddress,
			Amount:    amount,
			Message:   message,
		}},
		Message: message,
		// spend confirmed funds only, a chain reorg must not be able to
		// invalidate the payment mid-order
		ExcludeUnconfirmedUtxos: true,
		CustomData: map[string]string{
			"externalId": order.ExternalId,
			"service":    b.serviceName,
		},
	}

	if info.IsToken() {
		tokenAddress := info.GetTokenAddress()
		if len(tokenAddress) <= 0 {
			return nil, fmt.Errorf(
				"%w: missing token contract address", ErrProposalBuild,
			)
		}
		draft.TokenAddress = tokenAddress
		for i := range draft.Outputs {
			out := &draft.Outputs[i]
			// decimal-safe string, token amounts can exceed float precision
			amountStr := decimal.NewFromBigInt(
				new(big.Int).SetUint64(out.Amount), 0,
			).String()
			out.AmountStr = amountStr

			data, err := b.wallet.Transaction().EncodeTokenTransfer(
				ctx, draft.Chain, tokenAddress, out.ToAddress, amountStr,
			)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrProposalBuild, err)
			}
			out.Data = data
		}
	}

	if sendMaxInfo != nil {
		// inputs and fee come verbatim from the precomputed max-spend plan
		draft.Inputs = sendMaxInfo.Inputs
		draft.Fee = sendMaxInfo.Fee
	} else if _, ok := b.priorityChains[strings.ToLower(draft.Chain)]; ok {
		// avoid expired orders due to slow tx confirmation
		draft.FeeLevel = FeeLevelPriority
	}

	if len(destinationTag) > 0 {
		draft.DestinationTag = destinationTag
	}

	proposal, err := b.wallet.Transaction().CreateProposal(
		ctx, order.WalletId, draft,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProposalBuild, err)
	}
	return proposal, nil
}

// amountToSmallestUnit converts a wallet-unit amount to the integer smallest
// unit of the asset.
func amountToSmallestUnit(amount decimal.Decimal, precision int) uint64 {
	return amount.Shift(int32(precision)).Round(0).BigInt().Uint64()
}
