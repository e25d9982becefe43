package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/notfawkes/FitMeat/internal/checkout"
	"github.com/notfawkes/FitMeat/internal/orders"
	"github.com/notfawkes/FitMeat/internal/payment"
)

// CheckoutService runs the checkout flow for a session's basket.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, request *checkout.PlaceOrderRequest) (*checkout.PlaceOrderResult, error)
}

type CheckoutHandler struct {
	service CheckoutService
	timeout time.Duration
	now     func() time.Time
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
		now:     time.Now,
	}
}

type PlaceOrderRequestDTO struct {
	TimeSlot       string `json:"time_slot"`
	PaymentMethod  string `json:"payment_method"`
	IdempotencyKey string `json:"idempotency_key"`
}

type TimeSlotsResponse struct {
	Slots []string `json:"slots"`
}

// GET /api/v1/checkout/timeslots
func (h *CheckoutHandler) GetTimeSlots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &TimeSlotsResponse{Slots: checkout.Slots(h.now())})
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing session cookie")
		return
	}

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key",
			"idempotency_key is required")
		return
	}

	result, err := h.service.PlaceOrder(ctx, &checkout.PlaceOrderRequest{
		SessionID:      sessionID,
		UserID:         user.ID,
		TimeSlot:       req.TimeSlot,
		PaymentMethod:  payment.Method(req.PaymentMethod),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyPlaced {
		status = http.StatusOK
	}
	respondJSON(w, status, orderResponse(result.Order))
}

type OrderResponseDTO struct {
	OrderID       string             `json:"order_id"`
	Items         []orders.OrderItem `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	DeliveryFee   int64              `json:"delivery_fee"`
	TotalAmount   int64              `json:"total_amount"`
	Currency      string             `json:"currency"`
	TimeSlot      string             `json:"time_slot"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

func orderResponse(order *orders.Order) *OrderResponseDTO {
	return &OrderResponseDTO{
		OrderID:       order.ID.String(),
		Items:         order.Items,
		Subtotal:      order.Subtotal,
		DeliveryFee:   order.DeliveryFee,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		TimeSlot:      order.TimeSlot,
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}
}
