package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/notfawkes/FitMeat/internal/checkout"
	"github.com/notfawkes/FitMeat/internal/identity"
	"github.com/notfawkes/FitMeat/internal/orders"
)

type checkoutMock struct {
	result  *checkout.PlaceOrderResult
	err     error
	lastReq *checkout.PlaceOrderRequest
}

func (m *checkoutMock) PlaceOrder(ctx context.Context, request *checkout.PlaceOrderRequest) (*checkout.PlaceOrderResult, error) {
	m.lastReq = request
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func authedCheckoutRequest(body []byte) *http.Request {
	request := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	ctx := context.WithValue(request.Context(), "session_id", "sess-1")
	ctx = context.WithValue(ctx, "user", &identity.User{ID: "user-123", Email: "shopper@example.com"})
	return request.WithContext(ctx)
}

func placedOrder() *orders.Order {
	return &orders.Order{
		ID:          uuid.New(),
		UserID:      "user-123",
		Subtotal:    94700,
		DeliveryFee: 4900,
		TotalAmount: 99600,
		Currency:    "INR",
		Status:      orders.OrderStatusConfirmed,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	mock := &checkoutMock{result: &checkout.PlaceOrderResult{Order: placedOrder()}}
	handler := NewCheckoutHandler(mock, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{
		TimeSlot:       "Today, Sat, Aug 30 - 5:00 PM",
		PaymentMethod:  "card",
		IdempotencyKey: "idem-1",
	})
	recorder := httptest.NewRecorder()

	handler.PlaceOrder(recorder, authedCheckoutRequest(body))

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	if mock.lastReq == nil {
		t.Fatal("Expected PlaceOrder to be called")
	}
	if mock.lastReq.UserID != "user-123" {
		t.Errorf("Expected user from context, got %q", mock.lastReq.UserID)
	}
	if mock.lastReq.SessionID != "sess-1" {
		t.Errorf("Expected session from context, got %q", mock.lastReq.SessionID)
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.TotalAmount != 99600 {
		t.Errorf("Expected total_amount 99600, got %d", response.TotalAmount)
	}
}

func TestPlaceOrder_IdempotentReplayReturns200(t *testing.T) {
	mock := &checkoutMock{result: &checkout.PlaceOrderResult{Order: placedOrder(), AlreadyPlaced: true}}
	handler := NewCheckoutHandler(mock, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{
		TimeSlot:       "Today, Sat, Aug 30 - 5:00 PM",
		PaymentMethod:  "card",
		IdempotencyKey: "idem-1",
	})
	recorder := httptest.NewRecorder()

	handler.PlaceOrder(recorder, authedCheckoutRequest(body))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestPlaceOrder_Unauthorized(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/", nil)
	// No user in context

	handler.PlaceOrder(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestPlaceOrder_MissingIdempotencyKey(t *testing.T) {
	mock := &checkoutMock{}
	handler := NewCheckoutHandler(mock, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{
		TimeSlot:      "Today, Sat, Aug 30 - 5:00 PM",
		PaymentMethod: "card",
	})
	recorder := httptest.NewRecorder()

	handler.PlaceOrder(recorder, authedCheckoutRequest(body))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if mock.lastReq != nil {
		t.Error("Expected service not to be called without an idempotency key")
	}
}

func TestPlaceOrder_EmptyBasket(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutMock{err: checkout.ErrEmptyBasket}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{
		TimeSlot:       "Today, Sat, Aug 30 - 5:00 PM",
		PaymentMethod:  "card",
		IdempotencyKey: "idem-1",
	})
	recorder := httptest.NewRecorder()

	handler.PlaceOrder(recorder, authedCheckoutRequest(body))

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}
}

func TestPlaceOrder_PaymentDeclined(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutMock{err: checkout.ErrPaymentFailed}, 5*time.Second)

	body, _ := json.Marshal(PlaceOrderRequestDTO{
		TimeSlot:       "Today, Sat, Aug 30 - 5:00 PM",
		PaymentMethod:  "card",
		IdempotencyKey: "idem-1",
	})
	recorder := httptest.NewRecorder()

	handler.PlaceOrder(recorder, authedCheckoutRequest(body))

	if recorder.Code != http.StatusPaymentRequired {
		t.Errorf("Expected status code %d, got %d", http.StatusPaymentRequired, recorder.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Code != "payment_declined" {
		t.Errorf("Expected code payment_declined, got %q", response.Code)
	}
}

func TestGetTimeSlots(t *testing.T) {
	handler := NewCheckoutHandler(&checkoutMock{}, 5*time.Second)
	handler.now = func() time.Time {
		return time.Date(2026, time.August, 30, 15, 0, 0, 0, time.Local)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	handler.GetTimeSlots(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response TimeSlotsResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Slots) == 0 {
		t.Fatal("Expected at least one slot")
	}
	if response.Slots[0] != checkout.Slots(handler.now())[0] {
		t.Errorf("Expected slots derived from the handler clock, got %q", response.Slots[0])
	}
}
