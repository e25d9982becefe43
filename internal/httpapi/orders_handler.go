package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/notfawkes/FitMeat/internal/orders"
)

type OrdersHandler struct {
	repo    orders.OrderRepository
	timeout time.Duration
}

func NewOrdersHandler(repo orders.OrderRepository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		repo:    repo,
		timeout: timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.repo.ListOrders(ctx, user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	dtos := make([]*OrderResponseDTO, 0, len(list))
	for _, o := range list {
		dtos = append(dtos, orderResponse(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.repo.GetOrder(ctx, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// Another user's order looks the same as a missing one.
	if order.UserID != user.ID {
		respondError(w, http.StatusNotFound, "order_not_found", orders.ErrOrderNotFound.Error())
		return
	}

	respondJSON(w, http.StatusOK, orderResponse(order))
}
