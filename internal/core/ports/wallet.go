package ports

import (
	"context"
	"errors"
)

var (
	// ErrInvalidPassword is returned by the wallet when signing is attempted
	// with a wrong spending password. Recoverable, the user can retry.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrPasswordCanceled is returned when the user dismisses the password
	// prompt. Recoverable, no error is surfaced.
	ErrPasswordCanceled = errors.New("password canceled")
	// ErrBiometricCheckFailed is returned when the biometric check does not
	// pass. Recoverable, the user can retry.
	ErrBiometricCheckFailed = errors.New("biometric check failed")
)

// WalletService is the capability boundary towards the wallet subsystem. Key
// derivation, co-signing and chain-specific transaction encoding live behind
// it and are never re-implemented by the checkout pipeline.
type WalletService interface {
	Account() Account
	Transaction() Transaction
	Close()
}

type Account interface {
	// GetWalletInfo returns the static info of a wallet: chain, currency,
	// precision and, for tokens, the token contract address.
	GetWalletInfo(ctx context.Context, walletId string) (WalletInfo, error)
	// NormalizeAddress converts an address to the canonical encoding of the
	// wallet's chain (eg. cashaddr for BCH). Identity for most chains.
	NormalizeAddress(ctx context.Context, walletId, address string) (string, error)
}

type Transaction interface {
	// CreateProposal turns a draft into a fully-specified unsigned proposal,
	// selecting inputs and computing the fee when not given explicitly.
	CreateProposal(
		ctx context.Context, walletId string, draft *TransactionProposal,
	) (*TransactionProposal, error)
	// EncodeTokenTransfer encodes a token transfer call for the given chain.
	// The amount is a decimal string in the token's smallest unit, never a
	// float, to avoid precision loss on large amounts.
	EncodeTokenTransfer(
		ctx context.Context, chain, tokenAddress, recipient, amount string,
	) (string, error)
	// SignAndBroadcast signs the proposal with the wallet's key and publishes
	// the resulting transaction, returning its txid.
	SignAndBroadcast(
		ctx context.Context, walletId string, proposal *TransactionProposal,
	) (string, error)
}

type WalletInfo interface {
	GetChain() string
	GetCurrency() string
	GetPrecision() int
	GetTokenAddress() string
	IsToken() bool
}
