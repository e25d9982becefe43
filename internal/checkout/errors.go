package checkout

import "errors"

var (
	ErrEmptyBasket          = errors.New("basket is empty, nothing to checkout")
	ErrInvalidTimeSlot      = errors.New("delivery time slot is missing or no longer available")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrMissingIdempotency   = errors.New("idempotency key is required")
	ErrCheckoutInProgress   = errors.New("checkout with this idempotency key is already in progress")
	ErrPaymentFailed        = errors.New("payment failed")
	IllegalTransitionError  = errors.New("illegal transition of checkout status")
)
