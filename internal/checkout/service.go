package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notfawkes/FitMeat/internal/basket"
	"github.com/notfawkes/FitMeat/internal/events"
	"github.com/notfawkes/FitMeat/internal/orders"
	"github.com/notfawkes/FitMeat/internal/payment"
)

// DeliveryFee is the flat per-order delivery surcharge in paise. It is added
// here at checkout; the basket itself knows nothing about it.
const DeliveryFee int64 = 4900

const Currency = "INR"

// BasketProvider resolves the live basket for a session. Implemented by
// session.Manager.
type BasketProvider interface {
	Basket(ctx context.Context, sessionID string) (*basket.Basket, error)
}

// EventPublisher emits the order-completed event. Publishing is best-effort;
// a publish failure never fails the checkout.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, event *events.OrderCompletedEvent) error
}

type PlaceOrderRequest struct {
	SessionID      string
	UserID         string
	TimeSlot       string
	PaymentMethod  payment.Method
	IdempotencyKey string
}

type PlaceOrderResult struct {
	Order *orders.Order
	// AlreadyPlaced is true when the idempotency key matched a previously
	// completed checkout and Order is that earlier order.
	AlreadyPlaced bool
}

type Service struct {
	baskets   BasketProvider
	repo      orders.OrderRepository
	gateway   payment.Gateway
	publisher EventPublisher // nil disables events

	mu       sync.Mutex
	inflight map[string]CheckoutStatus // by idempotency key

	now func() time.Time
}

func NewService(baskets BasketProvider, repo orders.OrderRepository, gateway payment.Gateway, publisher EventPublisher) *Service {
	return &Service{
		baskets:   baskets,
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		inflight:  make(map[string]CheckoutStatus),
		now:       time.Now,
	}
}

// PlaceOrder runs the whole checkout: snapshot the basket, add the delivery
// fee, charge the gateway, persist the order, publish the event, clear the
// basket. On any failure the basket is left untouched so the shopper can
// retry without re-adding items.
func (s *Service) PlaceOrder(ctx context.Context, request *PlaceOrderRequest) (*PlaceOrderResult, error) {
	if !request.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if request.IdempotencyKey == "" {
		return nil, ErrMissingIdempotency
	}

	if err := s.begin(request.IdempotencyKey); err != nil {
		return nil, err
	}
	defer s.finish(request.IdempotencyKey)

	// Duplicate request? Return the cached result instead of charging twice.
	// Checked after begin so the lookup cannot race a checkout that is about
	// to record this key.
	existing, err := s.repo.GetOrderByIdempotencyKey(ctx, request.IdempotencyKey)
	if err != nil && !errors.Is(err, orders.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		log.Printf("Duplicate checkout detected idempotency_key = %v with order_id = %v", request.IdempotencyKey, existing.ID)
		return &PlaceOrderResult{Order: existing, AlreadyPlaced: true}, nil
	}

	b, err := s.baskets.Basket(ctx, request.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	items := b.Items()
	if len(items) == 0 {
		return nil, ErrEmptyBasket
	}

	now := s.now()
	if err := ValidateSlot(now, request.TimeSlot); err != nil {
		return nil, err
	}

	order := buildOrder(request, items, now)

	if err := s.transition(request.IdempotencyKey, CheckoutStatusPaymentPending); err != nil {
		return nil, err
	}
	result, err := s.gateway.Charge(ctx, &payment.ChargeRequest{
		OrderID: order.ID.String(),
		Amount:  order.TotalAmount,
		Method:  request.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}
	if result.Status != payment.ChargeStatusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, result.RefusalText())
	}
	order.PaymentID = result.PaymentID

	if err := s.transition(request.IdempotencyKey, CheckoutStatusPaymentCompleted); err != nil {
		return nil, err
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		// The charge went through but the order did not stick. Refund and
		// leave the basket alone.
		if refundErr := s.gateway.Refund(ctx, result.PaymentID); refundErr != nil {
			log.Printf("refund after failed order insert also failed payment_id = %v: %v", result.PaymentID, refundErr)
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.publishCompleted(ctx, order)

	// The order is durable; only now is it safe to empty the basket.
	b.Clear()

	if err := s.transition(request.IdempotencyKey, CheckoutStatusCompleted); err != nil {
		return nil, err
	}
	return &PlaceOrderResult{Order: order}, nil
}

func buildOrder(request *PlaceOrderRequest, items []basket.LineItem, now time.Time) *orders.Order {
	orderItems := make([]orders.OrderItem, len(items))
	var subtotal int64
	for i, item := range items {
		orderItems[i] = orders.OrderItem{
			ProductID: item.ID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	return &orders.Order{
		ID:             uuid.New(),
		UserID:         request.UserID,
		IdempotencyKey: request.IdempotencyKey,
		Items:          orderItems,
		Subtotal:       subtotal,
		DeliveryFee:    DeliveryFee,
		TotalAmount:    subtotal + DeliveryFee,
		Currency:       Currency,
		TimeSlot:       request.TimeSlot,
		PaymentMethod:  string(request.PaymentMethod),
		Status:         orders.OrderStatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *Service) publishCompleted(ctx context.Context, order *orders.Order) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishOrderCompleted(ctx, &events.OrderCompletedEvent{
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		TimeSlot:    order.TimeSlot,
		CompletedAt: s.now(),
	})
	if err != nil {
		log.Printf("failed to publish order completed event order_id = %v: %v", order.ID, err)
	}
}

// begin registers the in-flight checkout so a concurrent retry with the same
// key is rejected instead of double-charging.
func (s *Service) begin(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[key]; ok {
		return ErrCheckoutInProgress
	}
	s.inflight[key] = CheckoutStatusInitiated
	return nil
}

func (s *Service) transition(key string, to CheckoutStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.inflight[key]
	if !CanTransitionTo(from, to) {
		return IllegalTransitionError
	}
	s.inflight[key] = to
	return nil
}

func (s *Service) finish(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
