package ports

// ProposalOutput is a single output of a transaction proposal. For token
// transfers Amount carries the decimal-safe string representation of the
// amount and Data the encoded transfer call.
type ProposalOutput struct {
	ToAddress string
	Amount    uint64
	AmountStr string
	Message   string
	Data      string
}

// ProposalInput references a spendable input selected for the proposal.
type ProposalInput struct {
	Txid  string
	Vout  uint32
	Value uint64
}

// TransactionProposal is an unsigned, fully-specified description of a
// blockchain transfer ready for signing. Amounts are always expressed in the
// smallest unit of the asset, no fractional units ever cross this boundary.
type TransactionProposal struct {
	ToAddress               string
	Amount                  uint64
	Chain                   string
	Coin                    string
	Outputs                 []ProposalOutput
	Message                 string
	ExcludeUnconfirmedUtxos bool
	CustomData              map[string]string
	TokenAddress            string
	FeeLevel                string
	Fee                     uint64
	Inputs                  []ProposalInput
	DestinationTag          string
	Txid                    string
}

// SendMaxInfo is a precomputed plan spending all the available funds of a
// wallet. When supplied, proposal inputs and fee are taken verbatim from it
// and no fee-level heuristic is applied.
type SendMaxInfo struct {
	Inputs          []ProposalInput
	Fee             uint64
	AmountBelowFee  uint64
	UtxosBelowFee   int
	AmountAboveDust uint64
}
