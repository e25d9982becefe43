package payment

import "context"

// Method is the shopper-selected payment instrument.
type Method string

const (
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
	MethodGPay Method = "gpay"
	MethodCOD  Method = "cod"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodGPay, MethodCOD:
		return true
	}
	return false
}

type ChargeStatus string

const (
	ChargeStatusSuccess ChargeStatus = "SUCCESS"
	ChargeStatusFailed  ChargeStatus = "FAILED"
)

// Refusal is a known gateway-side decline reason.
type Refusal string

const (
	RefusalUnknown           Refusal = "UNKNOWN"
	RefusalInsufficientFunds Refusal = "INSUFFICIENT_FUNDS"
	RefusalCardDeclined      Refusal = "CARD_DECLINED"
	RefusalCardExpired       Refusal = "CARD_EXPIRED"
	RefusalLimitExceeded     Refusal = "LIMIT_EXCEEDED"
	RefusalNetworkError      Refusal = "NETWORK_ERROR"
)

type ChargeRequest struct {
	OrderID string
	Amount  int64 // paise
	Method  Method
}

// ChargeResult carries the gateway outcome. A declined charge is a FAILED
// result, not an error; errors are reserved for the call itself failing.
type ChargeResult struct {
	Status      ChargeStatus
	PaymentID   string
	Refusal     Refusal
	OtherReason string
}

func (r *ChargeResult) RefusalText() string {
	if r.OtherReason != "" {
		return r.OtherReason
	}
	return string(r.Refusal)
}

// Gateway is the opaque boundary to the external payment processor: submit a
// charge, receive success or failure. Tokenization and signature details stay
// on the processor's side.
type Gateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, paymentID string) error
}
