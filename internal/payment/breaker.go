package payment

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerGateway wraps a Gateway with a circuit breaker so a failing
// processor is rejected fast instead of tying up checkout requests. Declined
// charges are normal results and do not count as failures; only errors from
// the call itself trip the breaker.
type BreakerGateway struct {
	inner Gateway
	cb    *gobreaker.CircuitBreaker[*ChargeResult]
}

func NewBreakerGateway(inner Gateway) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[*ChargeResult](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &BreakerGateway{
		inner: inner,
		cb:    cb,
	}
}

func (g *BreakerGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	return g.cb.Execute(func() (*ChargeResult, error) {
		return g.inner.Charge(ctx, req)
	})
}

func (g *BreakerGateway) Refund(ctx context.Context, paymentID string) error {
	return g.inner.Refund(ctx, paymentID)
}
