package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notfawkes/FitMeat/internal/basket"
	"github.com/notfawkes/FitMeat/internal/catalog"
)

// BasketSource resolves a session ID to its live basket.
type BasketSource interface {
	Basket(ctx context.Context, sessionID string) (*basket.Basket, error)
}

type BasketHandler struct {
	baskets BasketSource
	catalog catalog.RepoInterface
	timeout time.Duration
}

func NewBasketHandler(baskets BasketSource, repo catalog.RepoInterface, timeout time.Duration) *BasketHandler {
	return &BasketHandler{
		baskets: baskets,
		catalog: repo,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	MealID   int64 `json:"meal_id"`
	Quantity int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type BasketResponseDTO struct {
	Items      []basket.LineItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice int64             `json:"total_price"`
}

func basketResponse(b *basket.Basket) *BasketResponseDTO {
	return &BasketResponseDTO{
		Items:      b.Items(),
		TotalItems: b.TotalItemCount(),
		TotalPrice: b.TotalPrice(),
	}
}

func (h *BasketHandler) sessionBasket(w http.ResponseWriter, r *http.Request) (*basket.Basket, bool) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing session cookie")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	b, err := h.baskets.Basket(ctx, sessionID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return b, true
}

func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sessionBasket(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, basketResponse(b))
}

func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.MealID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_meal_id", "meal_id must be positive")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	meal, err := h.catalog.GetMeal(ctx, req.MealID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	b, ok := h.sessionBasket(w, r)
	if !ok {
		return
	}

	b.AddItem(basket.Product{
		ID:          meal.ID,
		Title:       meal.Title,
		UnitPrice:   meal.Price,
		Image:       meal.ImageURL,
		Description: meal.Description,
		Tag:         meal.Category,
	}, req.Quantity)

	respondJSON(w, http.StatusCreated, basketResponse(b))
}

func (h *BasketHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	mealID, ok := mealIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	b, ok := h.sessionBasket(w, r)
	if !ok {
		return
	}

	// Zero (or below) removes the line instead of keeping a dead entry.
	b.UpdateQuantity(mealID, req.Quantity)

	respondJSON(w, http.StatusOK, basketResponse(b))
}

func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mealID, ok := mealIDParam(w, r)
	if !ok {
		return
	}

	b, ok := h.sessionBasket(w, r)
	if !ok {
		return
	}

	b.RemoveItem(mealID)

	respondJSON(w, http.StatusOK, basketResponse(b))
}

func (h *BasketHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sessionBasket(w, r)
	if !ok {
		return
	}

	b.Clear()

	respondJSON(w, http.StatusOK, basketResponse(b))
}

func mealIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	mealIDStr := chi.URLParam(r, "meal_id")
	mealID, err := strconv.ParseInt(mealIDStr, 10, 64)
	if err != nil || mealID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_meal_id", "meal_id must be a positive integer")
		return 0, false
	}
	return mealID, true
}
