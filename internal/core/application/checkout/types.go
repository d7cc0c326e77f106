package checkout

import (
	"time"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

// State represents the stage a checkout session is currently in. Sessions
// only move forward, Done, Failed and Expired are final for a session and a
// retry must start fresh from a new session.
type State int

const (
	StateInit State = iota
	StateQuoteFetch
	StateAddressValidate
	StateProposalBuild
	StateAwaitConfirm
	StateSigning
	StateBroadcasting
	StateReconcile
	StateDone
	StateFailed
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateQuoteFetch:
		return "quote_fetch"
	case StateAddressValidate:
		return "address_validate"
	case StateProposalBuild:
		return "proposal_build"
	case StateAwaitConfirm:
		return "await_confirm"
	case StateSigning:
		return "signing"
	case StateBroadcasting:
		return "broadcasting"
	case StateReconcile:
		return "reconcile"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func (s State) isTerminal() bool {
	return s == StateDone || s == StateFailed || s == StateExpired
}

// CheckoutRequest starts a checkout session for an existing sell order,
// referenced by the external id assigned by the exchange partner.
type CheckoutRequest struct {
	ExternalId  string
	UseSendMax  bool
	SendMaxInfo *ports.SendMaxInfo
}

const (
	// FeeLevelPriority is forced on fast-confirming chains so that slow
	// confirmation cannot outlive the short validity window of the quote.
	FeeLevelPriority = "priority"

	// DefaultRequoteWindow is the synthesized payment window used when the
	// partner reports the original quote as already expired, or no quote
	// expiry at all.
	DefaultRequoteWindow = 3 * time.Minute

	// DefaultFiatCurrency is the fallback fiat currency for quote refreshes
	// of orders that carry none.
	DefaultFiatCurrency = "USD"
)

func statusString(code int) string {
	switch code {
	case domain.OrderStatusCodeCreated:
		return "created"
	case domain.OrderStatusCodeQuoted:
		return "quoted"
	case domain.OrderStatusCodeProposed:
		return "proposed"
	case domain.OrderStatusCodeSent:
		return "sent"
	case domain.OrderStatusCodeFailed:
		return "failed"
	case domain.OrderStatusCodeExpired:
		return "expired"
	default:
		return "unknown"
	}
}
