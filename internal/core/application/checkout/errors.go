package checkout

import "errors"

var (
	// ErrAddressMismatch is returned when the deposit address expected by the
	// partner does not match the one the order was created against. Security
	// critical, always fatal, never retried automatically.
	ErrAddressMismatch = errors.New("destination address does not match the partner deposit address")
	// ErrProposalBuild wraps any wallet-subsystem failure while building the
	// transaction proposal. Fatal for the current session.
	ErrProposalBuild = errors.New("could not create transaction proposal")
	// ErrSigning wraps recoverable signing failures. The confirmation control
	// is reset and the user can retry within the same session.
	ErrSigning = errors.New("signing failed")
	// ErrBroadcast wraps generic broadcast failures. The session ends failed
	// and funds are not assumed moved.
	ErrBroadcast = errors.New("failed to broadcast transaction")
	// ErrPaymentExpired is returned when a confirm action arrives after the
	// payment window elapsed.
	ErrPaymentExpired = errors.New("time to make the payment expired")
	// ErrNotAwaitingConfirmation is returned when Confirm is called on a
	// session that is not waiting for the user confirmation gesture.
	ErrNotAwaitingConfirmation = errors.New("session is not awaiting confirmation")
	// ErrSessionTornDown is returned when operating on a session that has
	// been torn down.
	ErrSessionTornDown = errors.New("checkout session has been torn down")
	// ErrMissingSendMaxInfo ...
	ErrMissingSendMaxInfo = errors.New("send-max checkout requires the precomputed send-max plan")
)

// Failure reasons attached to the order record and to the failure events
// published for support diagnosis.
const (
	reasonPartnerDetails  = "could not get order details from the exchange partner"
	reasonAddressMismatch = "destination address mismatch"
	reasonCreateTx        = "could not create transaction proposal"
	reasonBroadcast       = "could not sign and broadcast transaction"
	reasonExpired         = "time to make the payment expired"
)
