package payment

import "errors"

// Input and authenticity errors are answered with 400 and never retried.
var (
	ErrAuthenticity        = errors.New("webhook signature verification failed")
	ErrMalformedEvent      = errors.New("malformed event")
	ErrIncompleteOrderData = errors.New("incomplete order data")
	ErrEmptyCart           = errors.New("empty cart")
	ErrMalformedCart       = errors.New("malformed cart")
)

// Fulfillment errors roll back the transaction and are answered with 500 so
// the provider redelivers.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownProduct    = errors.New("unknown product")
)

// Store level results.
var (
	ErrDuplicateTransaction = errors.New("order for transaction already exists")
	ErrOrderNotFound        = errors.New("order not found")
)

// ErrEntitlementGrant marks a failed grant after the order was committed. The
// order stands; the grant is retried out of band.
var ErrEntitlementGrant = errors.New("entitlement grant failed")

// IsInputError reports whether err is caused by the event payload itself.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrIncompleteOrderData) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMalformedCart)
}
