package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type GetResponseStatus interface {
	GetStatus() (ChargeStatus, Refusal, string)
}

type RandomStatus struct{}

func (r RandomStatus) GetStatus() (ChargeStatus, Refusal, string) {
	randomInt := rand.Intn(101) // 101 because Intn is exclusive of the upper bound
	return calcStatus(randomInt)
}

var knownRefusals = []Refusal{
	RefusalInsufficientFunds,
	RefusalCardDeclined,
	RefusalCardExpired,
	RefusalLimitExceeded,
	RefusalNetworkError,
}

func calcStatus(randomInt int) (ChargeStatus, Refusal, string) {
	if randomInt < 95 {
		return ChargeStatusSuccess, RefusalUnknown, ""
	}
	otherReason := randomInt - 95
	if otherReason == 0 || otherReason > len(knownRefusals) {
		return ChargeStatusFailed, RefusalUnknown, "unknown reason"
	}

	return ChargeStatusFailed, knownRefusals[otherReason-1], ""
}

// SimulatedGateway stands in for the hosted payment processor in local and
// test environments. Cash on delivery always succeeds; there is nothing to
// authorize up front.
type SimulatedGateway struct {
	status GetResponseStatus
}

func NewSimulatedGateway(s GetResponseStatus) *SimulatedGateway {
	return &SimulatedGateway{
		status: s,
	}
}

func (g *SimulatedGateway) Charge(_ context.Context, req *ChargeRequest) (*ChargeResult, error) {
	paymentID := fmt.Sprintf("TXN-%d", time.Now().UnixNano())

	if req.Method == MethodCOD {
		return &ChargeResult{
			Status:    ChargeStatusSuccess,
			PaymentID: paymentID,
		}, nil
	}

	charge, refusalKnown, refusalOther := g.status.GetStatus()
	return &ChargeResult{
		Status:      charge,
		PaymentID:   paymentID,
		Refusal:     refusalKnown,
		OtherReason: refusalOther,
	}, nil
}

// Refund is always success for this implementation.
func (*SimulatedGateway) Refund(context.Context, string) error {
	return nil
}
