package domain

const (
	// OrderStatusCodeCreated is the status of an order just created from a
	// user sell request, before any partner data has been fetched.
	OrderStatusCodeCreated = iota
	// OrderStatusCodeQuoted is the status of an order whose authoritative
	// amounts have been (re)fetched from the exchange partner.
	OrderStatusCodeQuoted
	// OrderStatusCodeProposed is the status of an order with a transaction
	// proposal built and awaiting user confirmation.
	OrderStatusCodeProposed
	// OrderStatusCodeSent is the status of an order whose payment has been
	// signed and broadcasted.
	OrderStatusCodeSent
	// OrderStatusCodeFailed is the terminal status of an order aborted by any
	// failure branch of the checkout pipeline.
	OrderStatusCodeFailed
	// OrderStatusCodeExpired is the terminal status of an order whose payment
	// window elapsed before the payment was initiated.
	OrderStatusCodeExpired
)

const (
	// FlowFixed identifies quotes whose fiat amounts are locked and
	// authoritative as given.
	FlowFixed = "fixed"
	// FlowFloating identifies quotes whose fiat amounts drift with market
	// price and must be re-derived from a fresh quote on every checkout.
	FlowFloating = "floating"
)
