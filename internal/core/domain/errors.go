package domain

import "errors"

var (
	// ErrOrderNotFound ...
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists ...
	ErrOrderAlreadyExists = errors.New("order with the same external id already exists")
	// ErrOrderMissingExternalId ...
	ErrOrderMissingExternalId = errors.New("order must have an external id")
	// ErrOrderMissingTransactionId ...
	ErrOrderMissingTransactionId = errors.New("order must have a partner transaction id")
	// ErrOrderMissingWalletId ...
	ErrOrderMissingWalletId = errors.New("order must have a wallet id")
	// ErrOrderMissingAddress ...
	ErrOrderMissingAddress = errors.New("order must have a destination address")
	// ErrOrderMissingTxid ...
	ErrOrderMissingTxid = errors.New("order must have a broadcasted txid to be marked as sent")
	// ErrOrderInvalidAmount ...
	ErrOrderInvalidAmount = errors.New("order amount must be a positive number")
	// ErrOrderInvalidDeadline ...
	ErrOrderInvalidDeadline = errors.New("payment deadline must be a valid timestamp")
	// ErrOrderMustBeQuoted ...
	ErrOrderMustBeQuoted = errors.New("order must be in quoted status")
	// ErrOrderMustBeProposed ...
	ErrOrderMustBeProposed = errors.New("order must be in proposed status")
	// ErrOrderIsTerminal is returned when attempting any transition on an
	// order that already reached a final status.
	ErrOrderIsTerminal = errors.New("order reached a terminal status")

	// ErrPartnerUnavailable is returned for network failures or 5xx responses
	// from the exchange partner.
	ErrPartnerUnavailable = errors.New("exchange partner is unavailable, try again later")
	// ErrPartnerRejected is returned for 4xx responses or malformed payloads
	// from the exchange partner.
	ErrPartnerRejected = errors.New("request rejected by the exchange partner")
)
