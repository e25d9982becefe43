package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcStatus_SuccessBelow95(t *testing.T) {
	for _, n := range []int{0, 50, 94} {
		status, refusal, other := calcStatus(n)
		assert.Equal(t, ChargeStatusSuccess, status)
		assert.Equal(t, RefusalUnknown, refusal)
		assert.Empty(t, other)
	}
}

func TestCalcStatus_KnownRefusals(t *testing.T) {
	status, refusal, other := calcStatus(96)
	assert.Equal(t, ChargeStatusFailed, status)
	assert.Equal(t, RefusalInsufficientFunds, refusal)
	assert.Empty(t, other)

	status, refusal, other = calcStatus(100)
	assert.Equal(t, ChargeStatusFailed, status)
	assert.Equal(t, RefusalNetworkError, refusal)
	assert.Empty(t, other)
}

func TestCalcStatus_UnknownRefusal(t *testing.T) {
	status, refusal, other := calcStatus(95)
	assert.Equal(t, ChargeStatusFailed, status)
	assert.Equal(t, RefusalUnknown, refusal)
	assert.Equal(t, "unknown reason", other)
}

type fixedStatus struct {
	status ChargeStatus
	reason Refusal
}

func (f fixedStatus) GetStatus() (ChargeStatus, Refusal, string) {
	return f.status, f.reason, ""
}

func TestSimulatedGateway_CODAlwaysSucceeds(t *testing.T) {
	// status source always declines, COD must bypass it
	sut := NewSimulatedGateway(fixedStatus{ChargeStatusFailed, RefusalCardDeclined})

	result, err := sut.Charge(context.Background(), &ChargeRequest{
		OrderID: "order-1",
		Amount:  34800,
		Method:  MethodCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, ChargeStatusSuccess, result.Status)
	assert.NotEmpty(t, result.PaymentID)
}

func TestSimulatedGateway_DeclinedCharge(t *testing.T) {
	sut := NewSimulatedGateway(fixedStatus{ChargeStatusFailed, RefusalInsufficientFunds})

	result, err := sut.Charge(context.Background(), &ChargeRequest{
		OrderID: "order-1",
		Amount:  34800,
		Method:  MethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, ChargeStatusFailed, result.Status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", result.RefusalText())
}

func TestMethod_Valid(t *testing.T) {
	assert.True(t, MethodCard.Valid())
	assert.True(t, MethodUPI.Valid())
	assert.True(t, MethodGPay.Valid())
	assert.True(t, MethodCOD.Valid())
	assert.False(t, Method("bitcoin").Valid())
	assert.False(t, Method("").Valid())
}

type erroringGateway struct {
	calls int
}

func (g *erroringGateway) Charge(context.Context, *ChargeRequest) (*ChargeResult, error) {
	g.calls++
	return nil, errors.New("connection refused")
}

func (g *erroringGateway) Refund(context.Context, string) error { return nil }

func TestBreakerGateway_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &erroringGateway{}
	sut := NewBreakerGateway(inner)
	req := &ChargeRequest{OrderID: "order-1", Amount: 100, Method: MethodCard}

	for i := 0; i < 5; i++ {
		_, err := sut.Charge(context.Background(), req)
		require.ErrorContains(t, err, "connection refused")
	}

	_, err := sut.Charge(context.Background(), req)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, inner.calls, "open breaker must not reach the gateway")
}

func TestBreakerGateway_DeclinesDoNotTrip(t *testing.T) {
	sut := NewBreakerGateway(NewSimulatedGateway(fixedStatus{ChargeStatusFailed, RefusalCardDeclined}))
	req := &ChargeRequest{OrderID: "order-1", Amount: 100, Method: MethodCard}

	for i := 0; i < 10; i++ {
		result, err := sut.Charge(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, ChargeStatusFailed, result.Status)
	}
}
