package checkout

type CheckoutStatus string

const (
	CheckoutStatusInitiated        CheckoutStatus = "INITIATED"
	CheckoutStatusPaymentPending   CheckoutStatus = "PAYMENT_PENDING"
	CheckoutStatusPaymentCompleted CheckoutStatus = "PAYMENT_COMPLETED"
	CheckoutStatusCompleted        CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the checkout may move from one status to
// another. Any non-terminal status may fail.
func CanTransitionTo(from, to CheckoutStatus) bool {
	if to == CheckoutStatusFailed {
		return !from.IsTerminal()
	}

	switch from {
	case CheckoutStatusInitiated:
		return to == CheckoutStatusPaymentPending
	case CheckoutStatusPaymentPending:
		return to == CheckoutStatusPaymentCompleted
	case CheckoutStatusPaymentCompleted:
		return to == CheckoutStatusCompleted
	default:
		return false
	}
}
