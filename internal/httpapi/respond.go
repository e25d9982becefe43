package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/notfawkes/FitMeat/internal/catalog"
	"github.com/notfawkes/FitMeat/internal/checkout"
	"github.com/notfawkes/FitMeat/internal/identity"
	"github.com/notfawkes/FitMeat/internal/orders"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError maps service sentinel errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, catalog.ErrMealNotFound):
		httpStatus = http.StatusNotFound
		code = "meal_not_found"
	case errors.Is(err, orders.ErrOrderNotFound):
		httpStatus = http.StatusNotFound
		code = "order_not_found"
	case errors.Is(err, identity.ErrInvalidSession):
		httpStatus = http.StatusUnauthorized
		code = "unauthorized"
	case errors.Is(err, checkout.ErrEmptyBasket):
		httpStatus = http.StatusConflict
		code = "empty_basket"
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		httpStatus = http.StatusConflict
		code = "checkout_in_progress"
	case errors.Is(err, checkout.ErrInvalidTimeSlot):
		httpStatus = http.StatusBadRequest
		code = "invalid_time_slot"
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		httpStatus = http.StatusBadRequest
		code = "invalid_payment_method"
	case errors.Is(err, checkout.ErrMissingIdempotency):
		httpStatus = http.StatusBadRequest
		code = "missing_idempotency_key"
	case errors.Is(err, checkout.ErrPaymentFailed):
		httpStatus = http.StatusPaymentRequired
		code = "payment_declined"
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
